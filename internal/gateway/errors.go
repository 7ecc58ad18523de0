package gateway

import (
	"errors"
	"fmt"
)

// Code classifies gateway failures. Callers branch on codes, never on
// error message content.
type Code string

const (
	CodeNotFound     Code = "not_found"
	CodeTableMissing Code = "table_missing"
	CodeConflict     Code = "conflict"
	CodeBadRequest   Code = "bad_request"
	CodeUnavailable  Code = "unavailable"
)

// Error is a typed gateway failure.
type Error struct {
	Code  Code
	Table string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("gateway: %s: %s (%s)", e.Table, e.Msg, e.Code)
	}
	return fmt.Sprintf("gateway: %s (%s)", e.Msg, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a typed gateway error.
func NewError(code Code, table, msg string) *Error {
	return &Error{Code: code, Table: table, Msg: msg}
}

// WrapError attaches a code and table to an underlying error.
func WrapError(code Code, table string, err error) *Error {
	return &Error{Code: code, Table: table, Msg: err.Error(), Err: err}
}

// IsCode reports whether err carries the given gateway code.
func IsCode(err error, code Code) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Code == code
}

// IsNotFound reports whether err is a missing-record failure.
func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound)
}

// IsTableMissing reports whether err means the table is not provisioned.
// Optional features treat this as an empty result rather than a failure.
func IsTableMissing(err error) bool {
	return IsCode(err, CodeTableMissing)
}
