package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidStatus       = errors.New("invalid status")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotFound            = errors.New("not found")
	ErrOperationInProgress = errors.New("operation in progress")
)

// ValidationError reports a missing or malformed required field. It is raised
// before any backend call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

type IncompleteQuoteError struct {
	Missing []string
}

func (e *IncompleteQuoteError) Error() string {
	return "incomplete quote: missing " + strings.Join(e.Missing, ", ")
}

type UnsupportedFormatError struct {
	Ext     string
	Allowed []string
}

func (e *UnsupportedFormatError) Error() string {
	ext := e.Ext
	if ext == "" {
		ext = "(none)"
	}
	return fmt.Sprintf("unsupported file format %s, expected one of %s", ext, strings.Join(e.Allowed, ", "))
}

// RemoteOperationError is a generic failure of a backend call. Status is the
// HTTP status when the transport has one, zero otherwise.
type RemoteOperationError struct {
	Op     string
	Status int
	Err    error
}

func (e *RemoteOperationError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: remote returned %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteOperationError) Unwrap() error { return e.Err }

func Remote(op string, status int, err error) error {
	if err == nil {
		err = errors.New("request failed")
	}
	return &RemoteOperationError{Op: op, Status: status, Err: err}
}

// IsValidation is true for every error a caller can fix by changing input.
func IsValidation(err error) bool {
	var ve *ValidationError
	var iq *IncompleteQuoteError
	return errors.As(err, &ve) || errors.As(err, &iq) || errors.Is(err, ErrInvalidStatus)
}
