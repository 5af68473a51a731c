// Package txparser converts raw bank-statement text into normalized
// transactions. It orchestrates delimiter/header detection and column
// mapping, handles locale number and date formats, and recovers from bad
// rows by skipping them rather than rejecting the file.
package txparser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"ledgerline/bankfeed/internal/columnmap"
	"ledgerline/bankfeed/internal/dateutils"
	"ledgerline/bankfeed/internal/headerdetect"
	"ledgerline/bankfeed/internal/llm"
	"ledgerline/bankfeed/internal/logging"
	"ledgerline/bankfeed/internal/models"
	"ledgerline/bankfeed/internal/parsererror"
)

// headerScanLimit bounds how many leading non-blank lines are considered
// when looking for the header row, both for the known-signature scan and the
// AI extraction call.
const headerScanLimit = 5

// SourceFile is one uploaded statement: the file name (for error reporting)
// and its full text.
type SourceFile struct {
	Name string
	Data []byte
}

// Parser turns uploaded CSV-like files into Transactions. The mapping cache
// is process-wide state: files carrying a header row already seen skip the
// AI header-extraction call entirely.
type Parser struct {
	detector *headerdetect.Detector
	cache    *columnmap.Cache
	logger   logging.Logger
}

// New creates a Parser using the given inference client for header
// extraction.
func New(client llm.Client, logger logging.Logger) *Parser {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Parser{
		detector: headerdetect.NewDetector(client, logger),
		cache:    columnmap.NewCache(),
		logger:   logger,
	}
}

// ParseFiles parses every file into an ordered sequence of uncategorized
// transactions. A file that fails structurally (not a CSV, missing required
// column, too few lines) is rejected wholesale but does not stop the
// remaining files: its error is logged, collected, and joined into the
// returned error alongside the partial results.
func (p *Parser) ParseFiles(ctx context.Context, files []SourceFile) ([]models.Transaction, error) {
	var all []models.Transaction
	var errs []error

	for _, file := range files {
		transactions, err := p.parseFile(ctx, file)
		if err != nil {
			p.logger.WithError(err).WithField(logging.FieldFile, file.Name).Error("Failed to parse file")
			errs = append(errs, err)
			continue
		}
		all = append(all, transactions...)
	}

	return all, errors.Join(errs...)
}

func (p *Parser) parseFile(ctx context.Context, file SourceFile) ([]models.Transaction, error) {
	lines := nonBlankLines(string(file.Data))
	if len(lines) < 2 {
		return nil, parsererror.NewParseError(file.Name, "CSV file must have at least 2 lines")
	}

	headerLine, mapping, err := p.resolveMapping(ctx, file.Name, lines)
	if err != nil {
		return nil, err
	}

	headers := splitFields(headerLine, mapping.Delimiter)
	columnIndex := make(map[string]int, len(headers))
	for i, header := range headers {
		columnIndex[columnmap.StandardizeHeader(header)] = i
	}

	// Rows above the header line are preamble and skipped.
	headerLineIndex := 0
	for i, line := range lines {
		if strings.Contains(line, headerLine) {
			headerLineIndex = i
			break
		}
	}

	var transactions []models.Transaction
	for i := headerLineIndex + 1; i < len(lines); i++ {
		tx, err := parseRow(lines[i], mapping, columnIndex)
		if err != nil {
			p.logger.WithError(err).WithFields(
				logging.Field{Key: logging.FieldFile, Value: file.Name},
				logging.Field{Key: logging.FieldLine, Value: i + 1},
			).Warn("Skipping unparseable row")
			continue
		}
		transactions = append(transactions, tx)
	}

	p.logger.WithFields(
		logging.Field{Key: logging.FieldFile, Value: file.Name},
		logging.Field{Key: logging.FieldCount, Value: len(transactions)},
	).Info("Parsed transactions from file")

	return transactions, nil
}

// resolveMapping finds the file's header line and column mapping. Lines with
// a header signature already in the cache are recognized without AI; only
// unseen layouts cost an inference call.
func (p *Parser) resolveMapping(ctx context.Context, fileName string, lines []string) (string, models.CSVMapping, error) {
	leading := lines
	if len(leading) > headerScanLimit {
		leading = leading[:headerScanLimit]
	}

	for _, line := range leading {
		delimiter := headerdetect.DetectDelimiter(line)
		if mapping, ok := p.cache.Get(splitFields(line, delimiter)); ok {
			p.logger.WithField(logging.FieldFile, fileName).Debug("Header signature found in mapping cache")
			return line, mapping, nil
		}
	}

	headerLine, err := p.detector.ExtractHeaderLine(ctx, leading)
	if err != nil {
		return "", models.CSVMapping{}, tagFile(err, fileName)
	}

	delimiter := headerdetect.DetectDelimiter(headerLine)
	mapping, err := p.cache.GetOrBuild(splitFields(headerLine, delimiter), delimiter)
	if err != nil {
		return "", models.CSVMapping{}, tagFile(err, fileName)
	}

	p.logger.WithFields(
		logging.Field{Key: logging.FieldFile, Value: fileName},
		logging.Field{Key: logging.FieldDelimiter, Value: string(delimiter)},
	).Debug("Built column mapping for new header layout")

	return headerLine, mapping, nil
}

// parseRow extracts one transaction from a data row. Any failure is a
// per-row error: the caller logs and skips.
func parseRow(line string, mapping models.CSVMapping, columnIndex map[string]int) (models.Transaction, error) {
	fields := splitFields(line, mapping.Delimiter)

	merchant, err := fieldAt(fields, columnIndex, mapping.Merchant)
	if err != nil {
		return models.Transaction{}, err
	}
	if merchant == "" {
		return models.Transaction{}, fmt.Errorf("empty merchant field")
	}

	amountStr, err := fieldAt(fields, columnIndex, mapping.Amount)
	if err != nil {
		return models.Transaction{}, err
	}
	amount, err := parseDecimal(amountStr)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("parsing amount: %w", err)
	}

	dateStr, err := fieldAt(fields, columnIndex, mapping.TransactionDate)
	if err != nil {
		return models.Transaction{}, err
	}
	transactionDate, _, err := dateutils.ParseDate(dateStr)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("parsing transaction date: %w", err)
	}

	raw := models.RawTransaction{
		Merchant:        merchant,
		Amount:          amount,
		TransactionDate: transactionDate,
	}

	// Balance is optional; an unparseable balance degrades to nil rather
	// than losing the row.
	if mapping.Balance != "" {
		if s, err := fieldAt(fields, columnIndex, mapping.Balance); err == nil && s != "" {
			if balance, err := parseDecimal(s); err == nil {
				raw.Balance = &balance
			}
		}
	}

	if mapping.EffectiveDate != "" {
		s, err := fieldAt(fields, columnIndex, mapping.EffectiveDate)
		if err == nil && s != "" {
			effectiveDate, _, err := dateutils.ParseDate(s)
			if err != nil {
				return models.Transaction{}, fmt.Errorf("parsing effective date: %w", err)
			}
			raw.EffectiveDate = &effectiveDate
		}
	}

	return models.NewTransaction(raw), nil
}

// fieldAt returns the trimmed value of the mapped column in a row.
func fieldAt(fields []string, columnIndex map[string]int, column string) (string, error) {
	idx, ok := columnIndex[column]
	if !ok {
		return "", fmt.Errorf("column %s not present in header", column)
	}
	if idx >= len(fields) {
		return "", fmt.Errorf("row has no field for column %s", column)
	}
	return fields[idx], nil
}

// parseDecimal parses a monetary value accepting European and US formats:
// comma or dot as the decimal separator, with optional dot, comma, space or
// apostrophe digit grouping ("1.976,55", "1,234.56", "1'000.50").
func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "'", "")

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		// Both present. The later one is the decimal separator and the
		// other is digit grouping.
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Count(s, ",") > 1:
		// Multiple commas can only be digit grouping.
		s = strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}

	return decimal.NewFromString(s)
}

// splitFields splits a line on the delimiter and trims each field.
func splitFields(line string, delimiter rune) []string {
	fields := strings.Split(line, string(delimiter))
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

// nonBlankLines splits text into trimmed-of-CR lines, dropping blank ones.
func nonBlankLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// tagFile attaches the file name to a structural parse error so the
// user-visible message names the offending file.
func tagFile(err error, fileName string) error {
	var pe *parsererror.ParseError
	if errors.As(err, &pe) && pe.File == "" {
		pe.File = fileName
	}
	return err
}
