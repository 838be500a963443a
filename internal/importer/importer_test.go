package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
		wantErr  bool
	}{
		{filename: "transactions.csv", want: FormatCSV},
		{filename: "Transactions.CSV", want: FormatCSV},
		{filename: "export.json", want: FormatJSON},
		{filename: "statement.ofx", want: FormatOFX},
		{filename: "statement.qfx", want: FormatOFX},
		{filename: "report.xlsx", wantErr: true},
		{filename: "noextension", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := DetectFormat(tt.filename)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCSV(t *testing.T) {
	input := `Date,Amount,Description,Balance
2024-01-05,75.00,CVS Pharmacy,1000.00
2024-01-06,32.45,Chipotle Mexican Grill,967.55
`
	rows, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 0, rows[0].Index)
	assert.Equal(t, "2024-01-05", rows[0].Date)
	assert.Equal(t, "75.00", rows[0].Amount)
	assert.Equal(t, "CVS Pharmacy", rows[0].Description)
	assert.Equal(t, "1000.00", rows[0].Raw["Balance"])
	assert.True(t, rows[0].Eligible())
}

func TestParseCSVAlternateHeaders(t *testing.T) {
	input := `Transaction Date,Memo,Amount
01/05/2024,SHELL OIL,120.50
`
	rows, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "01/05/2024", rows[0].Date)
	assert.Equal(t, "SHELL OIL", rows[0].Description)
	assert.Equal(t, "120.50", rows[0].Amount)
}

func TestParseCSVMissingColumns(t *testing.T) {
	input := `Date,Amount
2024-01-05,75.00
`
	rows, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Eligible())
}

func TestParseCSVEmpty(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseJSON(t *testing.T) {
	input := `[
		{"date": "2024-01-05", "amount": 75.5, "description": "CVS Pharmacy"},
		{"Date": "2024-01-06", "Amount": "32.45", "Description": "Chipotle"}
	]`
	rows, err := ParseJSON(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "75.5", rows[0].Amount)
	assert.Equal(t, "CVS Pharmacy", rows[0].Description)
	assert.Equal(t, "2024-01-06", rows[1].Date)
	assert.Equal(t, "32.45", rows[1].Amount)
}

func TestParseJSONRejectsNested(t *testing.T) {
	input := `[{"date": "2024-01-05", "meta": {"a": 1}}]`
	_, err := ParseJSON(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported value type")
}

func TestParseJSONInvalid(t *testing.T) {
	_, err := ParseJSON(strings.NewReader(`{"not": "an array"}`))
	require.Error(t, err)
}

const sampleOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240110120000
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>000001
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000
<DTEND>20240110120000
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240105120000
<TRNAMT>-75.00
<FITID>TXN-1
<NAME>CVS PHARMACY
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240106120000
<TRNAMT>-32.45
<FITID>TXN-2
<NAME>CHIPOTLE
<MEMO>LUNCH
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>892.55
<DTASOF>20240110120000
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>
`

func TestParseOFX(t *testing.T) {
	rows, err := ParseOFX(strings.NewReader(sampleOFX))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "2024-01-05", rows[0].Date)
	assert.Equal(t, "-75.00", rows[0].Amount)
	assert.Equal(t, "CVS PHARMACY", rows[0].Description)
	assert.Equal(t, "TXN-1", rows[0].Raw["fitid"])
	assert.True(t, rows[0].Eligible())

	assert.Equal(t, "CHIPOTLE", rows[1].Description)
	assert.Equal(t, "LUNCH", rows[1].Raw["memo"])
}

func TestParseOFXGarbage(t *testing.T) {
	_, err := ParseOFX(strings.NewReader("definitely not ofx"))
	require.Error(t, err)
}

func TestPreprocessOFX(t *testing.T) {
	in := "\n  OFXHEADER:100\n<SEVERITY>Info</SEVERITY>\n<BANKID\n"
	got := preprocessOFX(in)

	assert.True(t, strings.HasPrefix(got, "OFXHEADER"))
	assert.Contains(t, got, "<SEVERITY>INFO</SEVERITY>")
	assert.Contains(t, got, "<BANKID>")
}
