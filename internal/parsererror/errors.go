// Package parsererror defines the error taxonomy for the ingestion pipeline.
// Structural failures are typed so callers can branch on them with errors.As,
// while per-line and per-merchant degradations never surface as errors at all.
package parsererror

import "fmt"

// ParseError represents a structural parsing failure: too few lines, a
// missing required column, or an AI header response that could not be
// decoded. A ParseError rejects the affected file wholesale.
type ParseError struct {
	File string
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, e.Msg)
	}
	return e.Msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a ParseError with the given message.
func NewParseError(file, msg string) *ParseError {
	return &ParseError{File: file, Msg: msg}
}

// NotCSVError indicates the AI collaborator determined the uploaded content
// is not a CSV table. It is a subtype of ParseError: errors.As against
// *ParseError matches it through Unwrap.
type NotCSVError struct {
	ParseError
}

// Unwrap exposes the embedded ParseError so errors.As(err, **ParseError)
// matches a NotCSVError as well.
func (e *NotCSVError) Unwrap() error {
	return &e.ParseError
}

// NewNotCSVError creates a NotCSVError for the given file.
func NewNotCSVError(file string) *NotCSVError {
	return &NotCSVError{ParseError{File: file, Msg: "AI determined the content is not a CSV file"}}
}

// MissingColumnError reports a required canonical column that could not be
// resolved from the translated headers. Its message carries the exact column
// name so the failure is actionable for the end user.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("Missing required column: %s", e.Column)
}

// CategorizationError represents a categorization failure for a specific
// merchant. The categorizer recovers from these internally; the type exists
// for logging and for the storage write-back path.
type CategorizationError struct {
	Merchant string
	Err      error
}

func (e *CategorizationError) Error() string {
	return fmt.Sprintf("categorization failed for %s: %v", e.Merchant, e.Err)
}

func (e *CategorizationError) Unwrap() error {
	return e.Err
}
