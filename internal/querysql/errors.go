package querysql

import (
	"errors"
	"fmt"
)

// CompileError reports why a query could not be compiled. No partial query
// is ever returned alongside a CompileError.
type CompileError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Property names the offending property, when known.
	Property string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes compile errors.
type ErrorCode string

const (
	// ErrCodeUnknownProperty indicates a property index with no schema entry.
	ErrCodeUnknownProperty ErrorCode = "UNKNOWN_PROPERTY"

	// ErrCodeUnknownCollection indicates a builder without a collection.
	ErrCodeUnknownCollection ErrorCode = "UNKNOWN_COLLECTION"

	// ErrCodeMalformedOperand indicates operands that do not fit the operator
	// or the property type.
	ErrCodeMalformedOperand ErrorCode = "MALFORMED_OPERAND"

	// ErrCodeInvalidFilter indicates a structurally invalid filter tree.
	ErrCodeInvalidFilter ErrorCode = "INVALID_FILTER"

	// ErrCodeBuilderConsumed indicates Build was called on a spent builder.
	ErrCodeBuilderConsumed ErrorCode = "BUILDER_CONSUMED"
)

// Error implements the error interface.
func (e *CompileError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *CompileError) Unwrap() error {
	return e.Err
}

// IsSchemaError reports whether err is a schema-resolution failure.
// Uses errors.As to handle wrapped errors.
func IsSchemaError(err error) bool {
	return hasCode(err, ErrCodeUnknownProperty) || hasCode(err, ErrCodeUnknownCollection)
}

// IsOperandError reports whether err is a malformed operand failure.
func IsOperandError(err error) bool {
	return hasCode(err, ErrCodeMalformedOperand)
}

func hasCode(err error, code ErrorCode) bool {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}
