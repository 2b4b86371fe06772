package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseErrorWrapsUnderlying(t *testing.T) {
	t.Parallel()

	underlying := fmt.Errorf("unexpected token")
	err := NewParseError("instance.yaml", 12, underlying)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "instance.yaml", parseErr.Path)
	require.Equal(t, 12, parseErr.Line)
	require.True(t, stdErrors.Is(err, underlying))
	require.Contains(t, err.Error(), "instance.yaml")
}

func TestValidationErrorAggregatesFields(t *testing.T) {
	t.Parallel()

	err := NewValidationError("state", "must be one of started, stopped, restarted, absent, frozen", nil)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "state", validationErr.Field)
	require.Contains(t, validationErr.Message, "started")
}

func TestExecutionErrorIncludesActionContext(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("instance is busy")
	err := NewExecutionError("freeze", underlying)

	var executionErr *ExecutionError
	require.ErrorAs(t, err, &executionErr)
	require.Equal(t, "freeze", executionErr.Action)
	require.True(t, stdErrors.Is(err, underlying))
	require.Contains(t, err.Error(), "freeze")
}
