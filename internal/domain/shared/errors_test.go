package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorIs(t *testing.T) {
	t.Run("matches by code across instances", func(t *testing.T) {
		err := NewDomainError("INVALID_STATE", "A paid work record cannot be unpaid")
		assert.True(t, errors.Is(err, ErrInvalidState))
	})

	t.Run("different codes do not match", func(t *testing.T) {
		err := NewDomainError("ALREADY_EXISTS", "duplicate")
		assert.False(t, errors.Is(err, ErrInvalidState))
		assert.False(t, errors.Is(ErrNotFound, ErrOperationFailed))
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		err := fmt.Errorf("insert: %w", ErrConstraintViolation)
		assert.True(t, errors.Is(err, ErrConstraintViolation))
		assert.False(t, errors.Is(err, ErrOperationFailed))
	})

	t.Run("non-domain targets do not match", func(t *testing.T) {
		assert.False(t, errors.Is(ErrNotFound, errors.New("NOT_FOUND")))
	})
}
