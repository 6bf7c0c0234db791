package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type testStatus string

func (s testStatus) String() string { return string(s) }

func TestDomainError_Is(t *testing.T) {
	t.Run("matches by code", func(t *testing.T) {
		err := NewInsufficientStockError(decimal.NewFromInt(3), decimal.NewFromInt(5))
		assert.True(t, errors.Is(err, ErrInsufficientStock))
		assert.False(t, errors.Is(err, ErrNotFound))
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		err := fmt.Errorf("reserve: %w", NewNotFoundError("stock", "abc"))
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.Equal(t, CodeNotFound, ErrorCode(err))
	})

	t.Run("non domain error has empty code", func(t *testing.T) {
		assert.Equal(t, "", ErrorCode(errors.New("boom")))
	})
}

func TestDomainError_Messages(t *testing.T) {
	err := NewInsufficientStockError(decimal.NewFromInt(3), decimal.NewFromInt(5))
	assert.Equal(t, "Insufficient stock: only 3 units available, but 5 requested", err.Error())

	tr := NewInvalidTransitionError(testStatus("DELIVERED"), testStatus("CANCELLED"))
	assert.Equal(t, CodeInvalidTransition, tr.Code)
	assert.Equal(t, "Cannot transition from DELIVERED to CANCELLED", tr.Error())
}

func TestDomainError_WithCause(t *testing.T) {
	cause := errors.New("row locked")
	err := ErrConcurrencyConflict.WithCause(cause)
	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrConcurrencyConflict))
	assert.Contains(t, err.Error(), "row locked")
}
