package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesKindAndCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(ErrNotFound, "post not found", cause)

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, "post not found: connection reset", err.Error())
}

func TestWrappedErrorStillMatches(t *testing.T) {
	err := fmt.Errorf("placing order: %w", New(ErrInsufficientStock, "Not enough stock for Notebook"))

	assert.True(t, IsInsufficientStock(err))
	assert.Equal(t, "Not enough stock for Notebook", MessageOf(err, "Server error"))
}

func TestMessageOfHidesInternalDetail(t *testing.T) {
	err := Internal("Failed to load order", errors.New("pq: relation \"orders\" does not exist"))

	assert.Equal(t, "Server error", MessageOf(err, "Server error"))
	assert.Equal(t, "Server error", MessageOf(errors.New("raw"), "Server error"))
}

func TestFieldsOf(t *testing.T) {
	err := InvalidFields("Validation failed", map[string]string{"reason": "Reason required"})

	assert.True(t, IsInvalid(err))
	assert.Equal(t, "Reason required", FieldsOf(err)["reason"])
	assert.Nil(t, FieldsOf(errors.New("plain")))
}
