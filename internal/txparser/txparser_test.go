package txparser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ledgerline/bankfeed/internal/llm"
	"ledgerline/bankfeed/internal/logging"
	"ledgerline/bankfeed/internal/parsererror"
)

const englishStatement = `Transaction Date,Effective Date,Description,Amount,Balance
2024-01-01,2024-01-02,Coffee Shop,-4.50,995.50
2024-01-03,2024-01-03,Grocery Store,-82.10,913.40
`

func headerResponse(header string) string {
	return `{"headers": "` + header + `"}`
}

func newTestParser(contents ...string) (*Parser, *llm.MockClient) {
	client := llm.NewMockClient(contents...)
	return New(client, &logging.MockLogger{}), client
}

func TestParseFile(t *testing.T) {
	parser, client := newTestParser(headerResponse("Transaction Date,Effective Date,Description,Amount,Balance"))

	transactions, err := parser.ParseFiles(context.Background(), []SourceFile{
		{Name: "statement.csv", Data: []byte(englishStatement)},
	})

	assert.NoError(t, err)
	assert.Len(t, transactions, 2)
	assert.Equal(t, 1, client.CallCount())

	first := transactions[0]
	assert.Equal(t, "Coffee Shop", first.Merchant)
	assert.Equal(t, "-4.5", first.Amount.String())
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), first.TransactionDate)
	if assert.NotNil(t, first.EffectiveDate) {
		assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), *first.EffectiveDate)
	}
	if assert.NotNil(t, first.Balance) {
		assert.Equal(t, "995.5", first.Balance.String())
	}
	assert.False(t, first.IsCategorized())
}

func TestParseFileWithPreamble(t *testing.T) {
	data := `Acme Bank
Account 123-456, January 2024

Fecha Valor;Concepto;Importe;Saldo
15/01/2024;SUPERMERCADO DIA;-23,45;1.976,55
`
	parser, _ := newTestParser(headerResponse("Fecha Valor;Concepto;Importe;Saldo"))

	transactions, err := parser.ParseFiles(context.Background(), []SourceFile{
		{Name: "es.csv", Data: []byte(data)},
	})

	assert.NoError(t, err)
	assert.Len(t, transactions, 1)
	assert.Equal(t, "SUPERMERCADO DIA", transactions[0].Merchant)
	assert.Equal(t, "-23.45", transactions[0].Amount.String())
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), transactions[0].TransactionDate)
	if assert.NotNil(t, transactions[0].Balance) {
		assert.Equal(t, "1976.55", transactions[0].Balance.String())
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "10.00", want: "10"},
		{input: "-23,45", want: "-23.45"},
		{input: "1.976,55", want: "1976.55"},
		{input: "1,234.56", want: "1234.56"},
		{input: "1'000.50", want: "1000.5"},
		{input: "1 234,56", want: "1234.56"},
		{input: "1,234,567", want: "1234567"},
		{input: " 42 ", want: "42"},
		{input: "N/A", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseDecimal(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseFilesSharedLayoutCostsOneInferenceCall(t *testing.T) {
	parser, client := newTestParser(headerResponse("Transaction Date,Effective Date,Description,Amount,Balance"))

	second := `Transaction Date,Effective Date,Description,Amount,Balance
2024-02-01,2024-02-01,Book Store,-15.00,898.40
`
	transactions, err := parser.ParseFiles(context.Background(), []SourceFile{
		{Name: "january.csv", Data: []byte(englishStatement)},
		{Name: "february.csv", Data: []byte(second)},
	})

	assert.NoError(t, err)
	assert.Len(t, transactions, 3)
	assert.Equal(t, 1, client.CallCount())
}

func TestParseFilesDistinctLayouts(t *testing.T) {
	parser, client := newTestParser(
		headerResponse("Transaction Date,Effective Date,Description,Amount,Balance"),
		headerResponse("Date Valeur;Libellé;Montant"),
	)

	french := `Date Valeur;Libellé;Montant
15/01/2024;BOULANGERIE MARTIN;-6,80
`
	transactions, err := parser.ParseFiles(context.Background(), []SourceFile{
		{Name: "en.csv", Data: []byte(englishStatement)},
		{Name: "fr.csv", Data: []byte(french)},
	})

	assert.NoError(t, err)
	assert.Len(t, transactions, 3)
	assert.Equal(t, 2, client.CallCount())
}

func TestParseFileSkipsBadRows(t *testing.T) {
	data := `Transaction Date,Description,Amount
2024-01-01,Coffee Shop,-4.50
2024-01-02,,12.00
not-a-date,Grocery Store,-80.00
2024-01-04,Book Store,broken
2024-01-05,Pharmacy,-9.99
`
	parser, _ := newTestParser(headerResponse("Transaction Date,Description,Amount"))

	transactions, err := parser.ParseFiles(context.Background(), []SourceFile{
		{Name: "messy.csv", Data: []byte(data)},
	})

	assert.NoError(t, err)
	assert.Len(t, transactions, 2)
	assert.Equal(t, "Coffee Shop", transactions[0].Merchant)
	assert.Equal(t, "Pharmacy", transactions[1].Merchant)
}

func TestParseFileUnparseableBalanceDegradesToNil(t *testing.T) {
	data := `Transaction Date,Description,Amount,Balance
2024-01-01,Coffee Shop,-4.50,n/a
`
	parser, _ := newTestParser(headerResponse("Transaction Date,Description,Amount,Balance"))

	transactions, err := parser.ParseFiles(context.Background(), []SourceFile{
		{Name: "statement.csv", Data: []byte(data)},
	})

	assert.NoError(t, err)
	assert.Len(t, transactions, 1)
	assert.Nil(t, transactions[0].Balance)
}

func TestParseFileTooShort(t *testing.T) {
	parser, client := newTestParser()

	_, err := parser.ParseFiles(context.Background(), []SourceFile{
		{Name: "tiny.csv", Data: []byte("just one line\n")},
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "CSV file must have at least 2 lines")
	assert.Equal(t, 0, client.CallCount())
}

func TestParseFileNotCSV(t *testing.T) {
	parser, _ := newTestParser(`{"error": "not_csv"}`)

	_, err := parser.ParseFiles(context.Background(), []SourceFile{
		{Name: "page.html", Data: []byte("<html>\n<body>hello</body>\n</html>\n")},
	})

	assert.Error(t, err)
	var notCSV *parsererror.NotCSVError
	assert.True(t, errors.As(err, &notCSV))
	assert.Contains(t, err.Error(), "page.html")
}

func TestParseFilesFailedFileDoesNotStopOthers(t *testing.T) {
	parser, _ := newTestParser(
		`{"error": "not_csv"}`,
		headerResponse("Transaction Date,Effective Date,Description,Amount,Balance"),
	)

	transactions, err := parser.ParseFiles(context.Background(), []SourceFile{
		{Name: "bad.html", Data: []byte("<html>\n<body>x</body>\n</html>\n")},
		{Name: "good.csv", Data: []byte(englishStatement)},
	})

	assert.Error(t, err)
	assert.Len(t, transactions, 2)
}

func TestParseFileMissingRequiredColumn(t *testing.T) {
	data := `Transaction Date,Description
2024-01-01,Coffee Shop
`
	parser, _ := newTestParser(headerResponse("Transaction Date,Description"))

	_, err := parser.ParseFiles(context.Background(), []SourceFile{
		{Name: "noamount.csv", Data: []byte(data)},
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Missing required column: AMOUNT")

	var missing *parsererror.MissingColumnError
	assert.True(t, errors.As(err, &missing))
}
