package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerops/backend/internal/domain/shared"
)

func TestNewInventory(t *testing.T) {
	inv, err := NewInventory(uuid.New(), 10)
	require.NoError(t, err)
	assert.Equal(t, 10, inv.Quantity)

	_, err = NewInventory(uuid.Nil, 10)
	assert.Error(t, err)

	_, err = NewInventory(uuid.New(), -1)
	assert.Error(t, err)
}

func TestInventory_Apply(t *testing.T) {
	inv, err := NewInventory(uuid.New(), 10)
	require.NoError(t, err)

	require.NoError(t, inv.Apply(-4))
	assert.Equal(t, 6, inv.Quantity)

	require.NoError(t, inv.Apply(4))
	assert.Equal(t, 10, inv.Quantity)
}

func TestInventory_ApplyRejectsNegativeResult(t *testing.T) {
	inv, err := NewInventory(uuid.New(), 3)
	require.NoError(t, err)

	err = inv.Apply(-5)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	// quantity untouched on rejection
	assert.Equal(t, 3, inv.Quantity)
}

func TestInventory_ApplyDrainsToZero(t *testing.T) {
	inv, err := NewInventory(uuid.New(), 3)
	require.NoError(t, err)

	require.NoError(t, inv.Apply(-3))
	assert.Equal(t, 0, inv.Quantity)
}

func TestNewInventoryLog(t *testing.T) {
	log, err := NewInventoryLog(uuid.New(), -2, ReasonOrderPlaced)
	require.NoError(t, err)
	assert.Equal(t, -2, log.Delta)
	assert.Equal(t, "Order placed", log.Reason)
	assert.False(t, log.IsCredit())

	credit, err := NewInventoryLog(uuid.New(), 2, ReasonOrderCancelled)
	require.NoError(t, err)
	assert.True(t, credit.IsCredit())
}

func TestNewInventoryLog_Validation(t *testing.T) {
	_, err := NewInventoryLog(uuid.Nil, 1, ReasonOrderPlaced)
	assert.Error(t, err)

	_, err = NewInventoryLog(uuid.New(), 0, ReasonOrderPlaced)
	assert.Error(t, err)

	_, err = NewInventoryLog(uuid.New(), 1, "")
	assert.Error(t, err)
}
