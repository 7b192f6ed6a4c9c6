package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: Validation("bad input"), want: fiber.StatusBadRequest},
		{err: NotFound("gone"), want: fiber.StatusNotFound},
		{err: Conflict("duplicate"), want: fiber.StatusConflict},
		{err: InsufficientBudget("no budget", 100, 50, 60), want: fiber.StatusBadRequest},
		{err: Internal(errors.New("db down")), want: fiber.StatusInternalServerError},
		{err: errors.New("unclassified"), want: fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusCode(tt.err))
	}
}

func TestInsufficientBudgetContext(t *testing.T) {
	err := InsufficientBudget("no budget", 100.00, 41.00, 60.00)

	budget := BudgetOf(err)
	assert.NotNil(t, budget)
	assert.Equal(t, 100.00, budget.BudgetAmount)
	assert.Equal(t, 41.00, budget.RequestedAmount)
	assert.Equal(t, 60.00, budget.CurrentSum)

	assert.Nil(t, BudgetOf(NotFound("gone")))
}

func TestInternalHidesCauseKindButKeepsChain(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal(cause)

	assert.Equal(t, KindInternal, KindOf(err))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "internal server error")
}

func TestWrappedErrorKeepsKind(t *testing.T) {
	err := fmt.Errorf("lock amount: %w", NotFound("no account"))
	assert.Equal(t, KindNotFound, KindOf(err))
}
