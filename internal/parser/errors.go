package parser

import (
	"fmt"

	"github.com/finautomation/reconciliation-engine/internal/domain"
)

// ValidationCode identifies why a file was rejected before parsing
type ValidationCode string

// Validation error codes
const (
	ValidationEmptyFile         ValidationCode = "empty_file"
	ValidationFileTooLarge      ValidationCode = "file_too_large"
	ValidationUnsupportedFormat ValidationCode = "unsupported_format"
)

// ValidationError rejects a file before parsing starts. It is user-visible
// and means the batch never ran.
type ValidationError struct {
	Code    ValidationCode
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("statement validation failed (%s): %s", e.Code, e.Message)
}

// ParseError means the format was detected but the content is malformed.
// It is a whole-file failure: no partial report is produced.
type ParseError struct {
	Format domain.StatementFormat
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s statement: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
