package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	assert.False(t, IsNotFoundError(nil))
	assert.True(t, IsNotFoundError(ErrNotFound))
	assert.True(t, IsNotFoundError(fmt.Errorf("starboard message not found: %w", ErrNotFound)))
	assert.False(t, IsNotFoundError(errors.New("connection refused")))
}

func TestIsInvalidArgumentAndForbidden(t *testing.T) {
	wrappedInvalid := fmt.Errorf("threshold must be positive: %w", ErrInvalidArgument)
	wrappedForbidden := fmt.Errorf("user does not administer guild: %w", ErrForbidden)

	assert.True(t, IsInvalidArgumentError(wrappedInvalid))
	assert.False(t, IsInvalidArgumentError(wrappedForbidden))
	assert.True(t, IsForbiddenError(wrappedForbidden))
	assert.False(t, IsForbiddenError(nil))
}
