package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/pkozlov/bucketeer/internal/model"
)

// Header names recognized for each field, checked in order.
var (
	dateHeaders        = []string{"date", "transaction date", "posted date"}
	amountHeaders      = []string{"amount", "debit", "value"}
	descriptionHeaders = []string{"description", "memo", "payee", "name"}
)

// ParseCSV reads a header-driven CSV export. Every record is preserved in
// Raw under its original header names; the recognized date/amount/description
// columns are lifted onto the row.
func ParseCSV(r io.Reader) ([]model.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	dateCol := findColumn(header, dateHeaders)
	amountCol := findColumn(header, amountHeaders)
	descCol := findColumn(header, descriptionHeaders)

	var rows []model.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record %d: %w", len(rows)+1, err)
		}

		raw := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				raw[name] = strings.TrimSpace(record[i])
			}
		}

		row := model.Row{
			Index:       len(rows),
			Date:        columnValue(record, dateCol),
			Amount:      columnValue(record, amountCol),
			Description: columnValue(record, descCol),
			Raw:         raw,
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func findColumn(header []string, names []string) int {
	for _, name := range names {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
	}
	return -1
}

func columnValue(record []string, col int) string {
	if col < 0 || col >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[col])
}
