package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_AreDistinct(t *testing.T) {
	all := []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrUnsupportedFormat,
		ErrLLMUnavailable,
		ErrGenerationFailed,
		ErrEmptyResponse,
		ErrRateLimited,
	}

	for i, a := range all {
		for j, b := range all {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}

func TestErrors_Wrapping(t *testing.T) {
	wrapped := fmt.Errorf("%w: upstream returned 500", ErrGenerationFailed)

	assert.ErrorIs(t, wrapped, ErrGenerationFailed)
	assert.Contains(t, wrapped.Error(), "generation failed")
}
