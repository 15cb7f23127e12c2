package billing

import (
	"errors"
	"fmt"
)

// Common billing pipeline errors
var (
	// ErrInvalidReferenceFormat is returned when an invoice reference does not
	// match the AD-<Mon><YY> pattern.
	ErrInvalidReferenceFormat = errors.New("invalid invoice reference format")

	// ErrUnknownMonthAbbreviation is returned when a reference's month token is
	// not one of the twelve recognized abbreviations.
	ErrUnknownMonthAbbreviation = errors.New("unknown month abbreviation in invoice reference")

	// ErrHeaderMismatch is returned when the source ledger's header row does
	// not match the expected fixed column set.
	ErrHeaderMismatch = errors.New("source ledger header mismatch")

	// ErrNoRecords is returned when the source ledger contains no data rows.
	ErrNoRecords = errors.New("source ledger contains no records")
)

// FieldError describes a single malformed field in a source row. Rows with
// field errors are collected before classification rather than raised
// mid-pipeline.
type FieldError struct {
	Row     int
	Field   string
	Value   string
	Message string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("row %d: field %q: %s (value: %q)", e.Row, e.Field, e.Message, e.Value)
}
