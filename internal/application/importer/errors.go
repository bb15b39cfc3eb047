package importer

import (
	"errors"
	"fmt"
)

// Fatal errors abort a run and are returned to the caller.
var (
	ErrInvalidSource      = errors.New("invalid or unreadable source file")
	ErrEmptyOrUngroupable = errors.New("no invoice groups found in source data")
)

// Group-scoped errors fail one invoice group and are recorded in the result.
var (
	ErrInvalidDate = errors.New("invalid invoice date")
	ErrValidation  = errors.New("validation failed")
	ErrStorage     = errors.New("storage failure")
)

// GroupError reports the failure of a single invoice group
type GroupError struct {
	InvoiceNumber int64
	Line          int // 1-based source line, 0 when unknown
	Err           error
}

func (e *GroupError) Error() string {
	return fmt.Sprintf("Invoice %d processing failed: %v", e.InvoiceNumber, e.Err)
}

func (e *GroupError) Unwrap() error {
	return e.Err
}
