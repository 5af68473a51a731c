// Package ingest handles parsing and categorizing bank CSV exports
package ingest

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"ledgerline/bankfeed/cmd/root"
	"ledgerline/bankfeed/internal/dateutils"
	"ledgerline/bankfeed/internal/logging"
	"ledgerline/bankfeed/internal/models"
	"ledgerline/bankfeed/internal/txparser"
)

var skipCategorization bool

// Cmd represents the ingest command
var Cmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Parse and categorize one or more bank CSV exports",
	Long: `Parse bank CSV exports with any column layout or language, categorize
every transaction by merchant and write the normalized result as CSV.`,
	Args: cobra.MinimumNArgs(1),
	RunE: ingestFunc,
}

func init() {
	Cmd.Flags().BoolVar(&skipCategorization, "skip-categorization", false, "Parse only, leave transactions uncategorized")
}

// exportRow is the normalized output schema.
type exportRow struct {
	TransactionDate string `csv:"Transaction Date"`
	EffectiveDate   string `csv:"Effective Date"`
	Merchant        string `csv:"Merchant"`
	Amount          string `csv:"Amount"`
	Balance         string `csv:"Balance"`
	Category        string `csv:"Category"`
	Confidence      string `csv:"Confidence"`
	Method          string `csv:"Method"`
}

func ingestFunc(cmd *cobra.Command, args []string) error {
	logger := root.Deps.GetLogger()

	files := make([]txparser.SourceFile, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		files = append(files, txparser.SourceFile{Name: path, Data: data})
	}

	transactions, err := root.Deps.GetParser().ParseFiles(cmd.Context(), files)
	if err != nil {
		logger.WithError(err).Warn("Some files could not be parsed")
	}
	if len(transactions) == 0 {
		if err != nil {
			return err
		}
		return fmt.Errorf("no transactions found in input")
	}

	if !skipCategorization {
		transactions = root.Deps.GetCategorizer().BulkCategorize(cmd.Context(), transactions)
	}

	logger.Info("Ingestion complete",
		logging.Field{Key: logging.FieldCount, Value: len(transactions)})

	return writeOutput(transactions, root.SharedFlags.Output)
}

func writeOutput(transactions []models.Transaction, output string) error {
	rows := make([]exportRow, 0, len(transactions))
	for _, tx := range transactions {
		row := exportRow{
			TransactionDate: tx.TransactionDate.Format(dateutils.DateLayoutISO),
			Merchant:        tx.Merchant,
			Amount:          tx.Amount.String(),
			Category:        tx.Category,
			Method:          string(tx.Method),
		}
		if tx.EffectiveDate != nil {
			row.EffectiveDate = tx.EffectiveDate.Format(dateutils.DateLayoutISO)
		}
		if tx.Balance != nil {
			row.Balance = tx.Balance.String()
		}
		if tx.IsCategorized() {
			row.Confidence = strconv.FormatFloat(tx.Confidence, 'f', 2, 64)
		}
		rows = append(rows, row)
	}

	if output == "" {
		return gocsv.Marshal(&rows, os.Stdout)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	return gocsv.Marshal(&rows, f)
}
