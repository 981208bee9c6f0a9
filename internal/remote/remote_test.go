package remote

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOperationError(t *testing.T) {
	assert.NoError(t, NewOperationError(OpCopy, "abc", nil))

	cause := errors.New("permission denied")
	err := NewOperationError(OpCopy, "abc", cause)
	require.Error(t, err)
	assert.Equal(t, "copy abc: permission denied", err.Error())
	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("failed to copy: %w", err)
	var opErr *OperationError
	require.ErrorAs(t, wrapped, &opErr)
	assert.Equal(t, OpCopy, opErr.Op)
	assert.Equal(t, "abc", opErr.ItemID)
}
