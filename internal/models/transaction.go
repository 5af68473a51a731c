// Package models provides the data structures used throughout the application.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategorizationMethod records which resolution tier assigned a transaction's
// category. It is the provenance tag used for auditability.
type CategorizationMethod string

const (
	MethodStored       CategorizationMethod = "stored"
	MethodPattern      CategorizationMethod = "pattern"
	MethodFuzzy        CategorizationMethod = "fuzzy"
	MethodAIBatch      CategorizationMethod = "ai_batch"
	MethodAIBatchError CategorizationMethod = "ai_batch_error"
)

// RawTransaction is the normalized record produced by parsing one CSV data
// row. Merchant, Amount and TransactionDate are always present; Balance and
// EffectiveDate are nil when the source file carries no such column.
type RawTransaction struct {
	Merchant        string           `json:"merchant" yaml:"merchant"`
	Amount          decimal.Decimal  `json:"amount" yaml:"amount"`
	Balance         *decimal.Decimal `json:"balance,omitempty" yaml:"balance,omitempty"`
	TransactionDate time.Time        `json:"transaction_date" yaml:"transaction_date"`
	EffectiveDate   *time.Time       `json:"effective_date,omitempty" yaml:"effective_date,omitempty"`
}

// Transaction extends RawTransaction with categorization state. A Transaction
// is a value: categorization does not mutate it, it returns a new value with
// Category, Confidence and Method set together.
type Transaction struct {
	RawTransaction

	Category   string               `json:"category,omitempty" yaml:"category,omitempty"`
	Confidence float64              `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	Method     CategorizationMethod `json:"categorization_method,omitempty" yaml:"categorization_method,omitempty"`
}

// NewTransaction creates an uncategorized Transaction from a raw record.
func NewTransaction(raw RawTransaction) Transaction {
	return Transaction{RawTransaction: raw}
}

// Categorize returns a copy of the transaction with category, confidence and
// method set as a single atomic update. The receiver is never partially
// categorized.
func (t Transaction) Categorize(category string, confidence float64, method CategorizationMethod) Transaction {
	t.Category = category
	t.Confidence = confidence
	t.Method = method
	return t
}

// IsCategorized reports whether a categorization pass has assigned this
// transaction a category.
func (t Transaction) IsCategorized() bool {
	return t.Method != ""
}
