package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	sentinel := errors.New("not found")

	assert.NoError(t, Wrap("op", nil))
	assert.Same(t, sentinel, Wrap("op", sentinel, sentinel))

	driverErr := errors.New("connection refused")
	err := Wrap("get identity", driverErr)
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "get identity", pe.Op)
	assert.ErrorIs(t, err, driverErr)

	again := Wrap("outer", fmt.Errorf("ctx: %w", err))
	require.ErrorAs(t, again, &pe)
	assert.Equal(t, "get identity", pe.Op)
}

func TestWrap_TimeoutIsPersistenceError(t *testing.T) {
	err := Wrap("list schedules", context.DeadlineExceeded)
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.True(t, IsTimeout(err))
}
