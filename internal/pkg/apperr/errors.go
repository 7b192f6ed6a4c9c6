// Package apperr holds the typed errors shared by the billing services and
// their HTTP status mapping.
package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies a service error for status mapping and retry decisions.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindConflict
	KindInsufficientBudget
	KindInternal
)

// BudgetContext carries the numbers a caller needs to decide whether to retry
// an insufficient-budget rejection with a smaller amount.
type BudgetContext struct {
	BudgetAmount    float64 `json:"budget_amount"`
	RequestedAmount float64 `json:"requested_amount"`
	CurrentSum      float64 `json:"current_sum"`
}

// Error is the error type returned by the service layer.
type Error struct {
	Kind    Kind
	Message string
	Budget  *BudgetContext
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Validation reports a malformed or contradictory request.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing account, fee or percentage row.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports an integrity violation such as duplicate ledger rows or an
// already existing fee schedule.
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// InsufficientBudget reports a budget rejection with its numeric context.
func InsufficientBudget(message string, budget, requested, currentSum float64) *Error {
	return &Error{
		Kind:    KindInsufficientBudget,
		Message: message,
		Budget: &BudgetContext{
			BudgetAmount:    budget,
			RequestedAmount: requested,
			CurrentSum:      currentSum,
		},
	}
}

// Internal wraps an unexpected low-level failure without leaking it.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", cause: cause}
}

// KindOf returns the kind of a service error, or KindInternal for anything
// the service layer did not classify.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// BudgetOf returns the budget context of an insufficient-budget error, if any.
func BudgetOf(err error) *BudgetContext {
	var e *Error
	if errors.As(err, &e) {
		return e.Budget
	}
	return nil
}

// StatusCode maps a service error to the HTTP status the resource layer
// should respond with.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindValidation, KindInsufficientBudget:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
