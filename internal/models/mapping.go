package models

import "strings"

// CSVMapping associates canonical transaction fields with the standardized
// header names of one CSV layout. Merchant and Amount are always non-empty
// after successful construction; Balance and EffectiveDate may be empty when
// the file has no such column.
type CSVMapping struct {
	Delimiter       rune   `yaml:"delimiter"`
	Merchant        string `yaml:"merchant"`
	Amount          string `yaml:"amount"`
	Balance         string `yaml:"balance"`
	TransactionDate string `yaml:"transaction_date"`
	EffectiveDate   string `yaml:"effective_date"`
}

// MappingKey builds the canonical cache signature of a raw header row:
// lowercased and pipe-joined. Files carrying byte-identical headers share one
// mapping and one AI header-extraction call.
func MappingKey(headers []string) string {
	return strings.ToLower(strings.Join(headers, "|"))
}

// MerchantMapping is a learned or manually curated merchant-to-category
// association. At most one mapping exists per merchant; re-import overwrites
// in place.
type MerchantMapping struct {
	Merchant   string   `yaml:"merchant"`
	Category   string   `yaml:"category"`
	Confidence float64  `yaml:"confidence"`
	IsManual   bool     `yaml:"is_manual,omitempty"`
	Aliases    []string `yaml:"aliases,omitempty"`
}

// TransactionPattern matches merchants by literal substring or regular
// expression. Patterns are evaluated in insertion order; the first match wins.
type TransactionPattern struct {
	Pattern    string  `yaml:"pattern"`
	Category   string  `yaml:"category"`
	Confidence float64 `yaml:"confidence"`
	IsRegex    bool    `yaml:"is_regex,omitempty"`
}

// SimilarityMatch is one fuzzy-match candidate with its similarity score in
// [0,1].
type SimilarityMatch struct {
	Merchant string  `yaml:"merchant"`
	Score    float64 `yaml:"score"`
}

// SimilarityCache maps a queried merchant name to its fuzzy-match candidates,
// descending by score and capped at five entries. Populated lazily and
// persisted across runs.
type SimilarityCache map[string][]SimilarityMatch
