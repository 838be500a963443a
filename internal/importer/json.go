package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkozlov/bucketeer/internal/model"
)

// ParseJSON reads an array of flat objects. Non-string scalar values are
// stringified; nested values are rejected.
func ParseJSON(r io.Reader) ([]model.Row, error) {
	var records []map[string]any
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to parse JSON upload: %w", err)
	}

	rows := make([]model.Row, 0, len(records))
	for i, record := range records {
		raw := make(map[string]string, len(record))
		for k, v := range record {
			s, err := stringify(v)
			if err != nil {
				return nil, fmt.Errorf("record %d, field %q: %w", i, k, err)
			}
			raw[k] = s
		}

		rows = append(rows, model.Row{
			Index:       i,
			Date:        firstField(raw, "date", "Date", "Transaction Date"),
			Amount:      firstField(raw, "amount", "Amount"),
			Description: firstField(raw, "description", "Description", "Memo"),
			Raw:         raw,
		})
	}

	return rows, nil
}

func stringify(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(t), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

func firstField(data map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := data[k]; v != "" {
			return v
		}
	}
	return ""
}
