// Package columnmap translates arbitrary, locale-specific CSV header names
// into canonical transaction fields and builds the column mapping a file is
// parsed with. Mappings are cached by header signature so files with
// identical headers never repeat the AI header-extraction call.
package columnmap

import (
	"strings"
	"sync"

	"ledgerline/bankfeed/internal/models"
	"ledgerline/bankfeed/internal/parsererror"
)

// Canonical field names, the normalized targets of header translation.
const (
	FieldAmount          = "AMOUNT"
	FieldDescription     = "DESCRIPTION"
	FieldTransactionDate = "TRANSACTION DATE"
	FieldEffectiveDate   = "EFFECTIVE DATE"
	FieldBalance         = "BALANCE"
)

// synonyms maps standardized header names to canonical fields. It covers
// English, Spanish, Catalan, French, German and Greek bank-export variants.
var synonyms = map[string]string{
	"EFFECTIVE DATE":        FieldEffectiveDate,
	"DATA COMPTABLE":        FieldEffectiveDate,
	"FECHA CONTABLE":        FieldEffectiveDate,
	"DATE COMPTABLE":        FieldEffectiveDate,
	"BUCHUNGSDATUM":         FieldEffectiveDate,
	"ΗΜΕΡΟΜΗΝΙΑ ΛΟΓΙΣΤΙΚΗΣ": FieldEffectiveDate,

	"TRANSACTION DATE":      FieldTransactionDate,
	"FECHA VALOR":           FieldTransactionDate,
	"DATA VALOR":            FieldTransactionDate,
	"DATE VALEUR":           FieldTransactionDate,
	"WERTSTELLUNG":          FieldTransactionDate,
	"ΗΜΕΡΟΜΗΝΙΑ ΑΞΙΑΣ":      FieldTransactionDate,
	"DATA OPERACIÓ":         FieldTransactionDate,
	"DATA TRANSACCIÓ":       FieldTransactionDate,
	"FECHA OPERACIÓN":       FieldTransactionDate,
	"FECHA TRANSACCIÓN":     FieldTransactionDate,
	"DATE OPÉRATION":        FieldTransactionDate,
	"DATE DE TRANSACTION":   FieldTransactionDate,
	"TRANSAKTIONSDATUM":     FieldTransactionDate,
	"ΗΜΕΡΟΜΗΝΙΑ ΣΥΝΑΛΛΑΓΗΣ": FieldTransactionDate,
	"ΗΜΕΡΟΜΗΝΙΑ ΠΡΑΞΗΣ":     FieldTransactionDate,

	"DESCRIPCION":      FieldDescription,
	"DESCRIPCIÓ":       FieldDescription,
	"DESCRIPCIO":       FieldDescription,
	"CONCEPTE":         FieldDescription,
	"CONCEPTO":         FieldDescription,
	"LIBELLÉ":          FieldDescription,
	"DESCRIPTION":      FieldDescription,
	"BESCHREIBUNG":     FieldDescription,
	"VERWENDUNGSZWECK": FieldDescription,
	"BUCHUNGSTEXT":     FieldDescription,
	"ΠΕΡΙΓΡΑΦΗ":        FieldDescription,
	"ΑΙΤΙΟΛΟΓΙΑ":       FieldDescription,

	"AMOUNT":    FieldAmount,
	"IMPORT":    FieldAmount,
	"IMPORTE":   FieldAmount,
	"MONTANT":   FieldAmount,
	"BETRAG":    FieldAmount,
	"ΠΟΣΟ":      FieldAmount,
	"QUANTITAT": FieldAmount,
	"CANTIDAD":  FieldAmount,
	"SOMME":     FieldAmount,
	"SUMME":     FieldAmount,
	"ΠΟΣΟΝ":     FieldAmount,

	"BALANCE":             FieldBalance,
	"SALDO":               FieldBalance,
	"SOLDE":               FieldBalance,
	"KONTOSTAND":          FieldBalance,
	"ΥΠΟΛΟΙΠΟ":            FieldBalance,
	"SALDO DISPONIBLE":    FieldBalance,
	"SOLDE DISPONIBLE":    FieldBalance,
	"VERFÜGBARER BETRAG":  FieldBalance,
	"ΔΙΑΘΕΣΙΜΟ ΥΠΟΛΟΙΠΟ":  FieldBalance,
}

// StandardizeHeader normalizes a raw header name: uppercase, with dashes and
// underscores collapsed to spaces.
func StandardizeHeader(header string) string {
	standardized := strings.ToUpper(strings.TrimSpace(header))
	standardized = strings.ReplaceAll(standardized, "-", " ")
	standardized = strings.ReplaceAll(standardized, "_", " ")
	return standardized
}

// TranslateHeaders maps each raw header to its canonical field. The result
// maps canonical field -> standardized header name, for the headers the
// synonym table recognizes; unrecognized headers are dropped silently.
func TranslateHeaders(headers []string) map[string]string {
	translated := make(map[string]string)
	for _, header := range headers {
		standardized := StandardizeHeader(header)
		if field, ok := synonyms[standardized]; ok {
			translated[field] = standardized
		}
	}
	return translated
}

// BuildMapping constructs a CSVMapping from translated headers. Amount and
// description columns are required; a file without a transaction date column
// falls back to the effective date column, and fails when neither exists.
func BuildMapping(translated map[string]string, delimiter rune) (models.CSVMapping, error) {
	for _, required := range []string{FieldAmount, FieldDescription} {
		if translated[required] == "" {
			return models.CSVMapping{}, missingColumn(required)
		}
	}

	transactionDate := translated[FieldTransactionDate]
	if transactionDate == "" {
		transactionDate = translated[FieldEffectiveDate]
	}
	if transactionDate == "" {
		return models.CSVMapping{}, missingColumn(FieldTransactionDate)
	}

	return models.CSVMapping{
		Delimiter:       delimiter,
		Merchant:        translated[FieldDescription],
		Amount:          translated[FieldAmount],
		Balance:         translated[FieldBalance],
		TransactionDate: transactionDate,
		EffectiveDate:   translated[FieldEffectiveDate],
	}, nil
}

// missingColumn wraps a MissingColumnError in a ParseError so callers can
// match either type while the message keeps the exact column name.
func missingColumn(field string) error {
	inner := &parsererror.MissingColumnError{Column: field}
	return &parsererror.ParseError{Msg: inner.Error(), Err: inner}
}

// Cache holds built mappings keyed by the canonical header signature. It is
// process-wide and safe for concurrent readers; overlapping writers of the
// same key race benignly (last write wins, both writes are equivalent).
type Cache struct {
	mu       sync.RWMutex
	mappings map[string]models.CSVMapping
}

// NewCache creates an empty mapping cache.
func NewCache() *Cache {
	return &Cache{mappings: make(map[string]models.CSVMapping)}
}

// Get returns the cached mapping for the given raw headers, if any.
func (c *Cache) Get(headers []string) (models.CSVMapping, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	mapping, ok := c.mappings[models.MappingKey(headers)]
	return mapping, ok
}

// Put stores a mapping under the headers' signature.
func (c *Cache) Put(headers []string, mapping models.CSVMapping) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mappings[models.MappingKey(headers)] = mapping
}

// GetOrBuild returns the cached mapping for the headers or translates and
// builds one, caching it on success.
func (c *Cache) GetOrBuild(headers []string, delimiter rune) (models.CSVMapping, error) {
	if mapping, ok := c.Get(headers); ok {
		return mapping, nil
	}

	mapping, err := BuildMapping(TranslateHeaders(headers), delimiter)
	if err != nil {
		return models.CSVMapping{}, err
	}

	c.Put(headers, mapping)
	return mapping, nil
}
