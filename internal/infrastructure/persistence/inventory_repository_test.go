package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sellerops/backend/internal/domain/inventory"
	"github.com/sellerops/backend/internal/domain/shared"
)

func TestGormInventoryRepository_FindByProduct(t *testing.T) {
	t.Run("finds inventory record", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInventoryRepository(db)

		inventoryID := uuid.New()
		productID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "product_id", "quantity"}).
			AddRow(inventoryID, productID, 12)

		mock.ExpectQuery(`SELECT \* FROM "inventories" WHERE product_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(productID, 1).
			WillReturnRows(rows)

		inv, err := repo.FindByProduct(context.Background(), productID)

		assert.NoError(t, err)
		require.NotNil(t, inv)
		assert.Equal(t, 12, inv.Quantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing record", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInventoryRepository(db)

		productID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "inventories" WHERE product_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(productID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		inv, err := repo.FindByProduct(context.Background(), productID)

		assert.Nil(t, inv)
		assert.Equal(t, shared.ErrNotFound, err)
	})
}

func TestGormInventoryRepository_FindByProductForUpdate(t *testing.T) {
	t.Run("issues a row-locking read", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInventoryRepository(db)

		productID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "product_id", "quantity"}).
			AddRow(uuid.New(), productID, 4)

		mock.ExpectQuery(`SELECT \* FROM "inventories" WHERE product_id = \$1 ORDER BY .* LIMIT .* FOR UPDATE`).
			WithArgs(productID, 1).
			WillReturnRows(rows)

		inv, err := repo.FindByProductForUpdate(context.Background(), productID)

		assert.NoError(t, err)
		require.NotNil(t, inv)
		assert.Equal(t, 4, inv.Quantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInventoryLogRepository_Append(t *testing.T) {
	t.Run("inserts a ledger entry", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInventoryLogRepository(db)

		entry, err := inventory.NewInventoryLog(uuid.New(), -2, inventory.ReasonOrderPlaced)
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO "inventory_logs"`).
			WithArgs(entry.ID, entry.InventoryID, entry.Delta, entry.Reason, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Append(context.Background(), entry)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInventoryLogRepository_FindByInventory(t *testing.T) {
	t.Run("returns entries in chronological order", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInventoryLogRepository(db)

		inventoryID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "inventory_id", "delta", "reason"}).
			AddRow(uuid.New(), inventoryID, -2, "Order placed").
			AddRow(uuid.New(), inventoryID, 2, "Order cancelled")

		mock.ExpectQuery(`SELECT \* FROM "inventory_logs" WHERE inventory_id = \$1 ORDER BY created_at`).
			WithArgs(inventoryID).
			WillReturnRows(rows)

		entries, err := repo.FindByInventory(context.Background(), inventoryID)

		assert.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, -2, entries[0].Delta)
		assert.Equal(t, 2, entries[1].Delta)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInventoryLogRepository_SumDeltas(t *testing.T) {
	t.Run("sums all deltas", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInventoryLogRepository(db)

		inventoryID := uuid.New()

		mock.ExpectQuery(`SELECT SUM\(delta\) FROM "inventory_logs" WHERE inventory_id = \$1`).
			WithArgs(inventoryID).
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(-3))

		sum, err := repo.SumDeltas(context.Background(), inventoryID)

		assert.NoError(t, err)
		assert.Equal(t, -3, sum)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns zero when no entries exist", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInventoryLogRepository(db)

		inventoryID := uuid.New()

		mock.ExpectQuery(`SELECT SUM\(delta\) FROM "inventory_logs" WHERE inventory_id = \$1`).
			WithArgs(inventoryID).
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(nil))

		sum, err := repo.SumDeltas(context.Background(), inventoryID)

		assert.NoError(t, err)
		assert.Equal(t, 0, sum)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
