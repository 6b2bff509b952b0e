package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNoPendingSettlements is returned when a settle-up action selects no
// settlement in the state it acts on.
var ErrNoPendingSettlements = errors.New("no pending settlements found")

// FieldError names one invalid input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every invalid field of a request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Add records a field problem.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Err returns e when it holds at least one field, nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func invalid(field, message string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return "not authorized: " + e.Reason
}

func forbidden(format string, args ...any) error {
	return &AuthorizationError{Reason: fmt.Sprintf(format, args...)}
}

type InsufficientBalanceError struct {
	AccountID string
	Balance   decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance in account %s: have %s, need %s",
		e.AccountID, e.Balance.StringFixed(2), e.Requested.StringFixed(2))
}

// ConsistencyError reports stored state that does not agree with a request,
// such as settlement totals that no longer reconcile with the amount.
type ConsistencyError struct {
	Reason   string
	Expected decimal.Decimal
	Actual   decimal.Decimal
}

func (e *ConsistencyError) Error() string {
	if e.Expected.IsZero() && e.Actual.IsZero() {
		return "inconsistent state: " + e.Reason
	}
	return fmt.Sprintf("inconsistent state: %s (expected %s, got %s)",
		e.Reason, e.Expected.StringFixed(2), e.Actual.StringFixed(2))
}
