package vending

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrorCode is a stable domain error code reported by core operations.
type ErrorCode string

const (
	// ErrorUnknownCode indicates the requested item code is not in the catalog.
	ErrorUnknownCode ErrorCode = "0001"
	// ErrorOutOfStock indicates the item has no remaining stock.
	ErrorOutOfStock ErrorCode = "0002"
	// ErrorInvalidAmount indicates a malformed or negative payment amount.
	ErrorInvalidAmount ErrorCode = "0003"
	// ErrorInvalidQuantity indicates a non-positive restock quantity.
	ErrorInvalidQuantity ErrorCode = "0004"
	// ErrorUnauthorized indicates the admin secret did not match.
	ErrorUnauthorized ErrorCode = "0005"
	// ErrorInvalidStateTransition indicates an operation was invoked in a
	// session state that does not accept it.
	ErrorInvalidStateTransition ErrorCode = "0006"
	// ErrorInvalidSeed indicates catalog seed data failed validation.
	ErrorInvalidSeed ErrorCode = "0007"
)

// DomainError represents a structured, recoverable domain validation error.
type DomainError struct {
	Code    ErrorCode
	Field   string
	Message string
}

// Error returns the formatted domain error string.
func (e DomainError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}

	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Field)
}

// NewDomainError creates a domain error with code, field, and message.
func NewDomainError(code ErrorCode, field, message string) error {
	return DomainError{Code: code, Field: field, Message: message}
}

// CodeOf extracts the ErrorCode from err, or "" when err is not a DomainError.
func CodeOf(err error) ErrorCode {
	var domainErr DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}

	return ""
}

// IsCode reports whether err is a DomainError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// ParseAmount parses a currency amount typed by the buyer. Malformed text and
// negative values both map to ErrorInvalidAmount so the driver can re-prompt
// without distinguishing the two.
func ParseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, NewDomainError(ErrorInvalidAmount, "amount", "amount is not a valid currency value")
	}

	if amount.IsNegative() {
		return decimal.Zero, NewDomainError(ErrorInvalidAmount, "amount", "amount must not be negative")
	}

	return amount, nil
}
