package importer

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/pkozlov/bucketeer/internal/model"
)

var (
	severityRe = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// SGML-style OFX files sometimes drop the closing bracket on a tag that
	// ends a line.
	tagFixRe = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocessOFX fixes common formatting issues seen in bank exports.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRe.ReplaceAllStringFunc(content, strings.ToUpper)
	content = tagFixRe.ReplaceAllString(content, "$1>")
	return content
}

// ParseOFX reads an OFX/QFX statement and flattens bank and credit card
// transactions into rows.
func ParseOFX(r io.Reader) ([]model.Row, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var rows []model.Row

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			for _, tx := range stmt.BankTranList.Transactions {
				rows = append(rows, convertOFX(tx, len(rows)))
			}
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			for _, tx := range stmt.BankTranList.Transactions {
				rows = append(rows, convertOFX(tx, len(rows)))
			}
		}
	}

	return rows, nil
}

func convertOFX(tx ofxgo.Transaction, index int) model.Row {
	description := string(tx.Name)
	if tx.Payee != nil && tx.Payee.Name != "" {
		description = string(tx.Payee.Name)
	}
	if description == "" {
		description = string(tx.Memo)
	}

	date := tx.DtPosted.Time.Format("2006-01-02")
	amountFloat, _ := tx.TrnAmt.Float64()
	amount := strconv.FormatFloat(amountFloat, 'f', 2, 64)

	raw := map[string]string{
		"date":        date,
		"amount":      amount,
		"description": description,
		"type":        fmt.Sprintf("%v", tx.TrnType),
	}
	if tx.Memo != "" {
		raw["memo"] = string(tx.Memo)
	}
	if tx.FiTID != "" {
		raw["fitid"] = string(tx.FiTID)
	}

	return model.Row{
		Index:       index,
		Date:        date,
		Amount:      amount,
		Description: strings.TrimSpace(description),
		Raw:         raw,
	}
}
