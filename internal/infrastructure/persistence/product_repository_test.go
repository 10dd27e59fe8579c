package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sellerops/backend/internal/domain/shared"
)

// newMockDB creates a GORM connection backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func productColumns() []string {
	return []string{"id", "shop_id", "external_id", "sku", "name", "price", "cost", "stock"}
}

func TestGormProductRepository_FindByID(t *testing.T) {
	t.Run("finds existing product", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormProductRepository(db)

		productID := uuid.New()
		shopID := uuid.New()

		rows := sqlmock.NewRows(productColumns()).
			AddRow(productID, shopID, "ext-1", "SKU-1", "Widget", decimal.NewFromInt(10), decimal.NewFromInt(5), 8)

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(productID, 1).
			WillReturnRows(rows)

		product, err := repo.FindByID(context.Background(), productID)

		assert.NoError(t, err)
		require.NotNil(t, product)
		assert.Equal(t, productID, product.ID)
		assert.Equal(t, 8, product.Stock)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing product", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormProductRepository(db)

		productID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(productID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		product, err := repo.FindByID(context.Background(), productID)

		assert.Nil(t, product)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_FindByIDForUpdate(t *testing.T) {
	t.Run("issues a row-locking read", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormProductRepository(db)

		productID := uuid.New()
		shopID := uuid.New()

		rows := sqlmock.NewRows(productColumns()).
			AddRow(productID, shopID, nil, "SKU-1", "Widget", decimal.NewFromInt(10), decimal.NewFromInt(5), 3)

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 ORDER BY .* LIMIT .* FOR UPDATE`).
			WithArgs(productID, 1).
			WillReturnRows(rows)

		product, err := repo.FindByIDForUpdate(context.Background(), productID)

		assert.NoError(t, err)
		require.NotNil(t, product)
		assert.Equal(t, 3, product.Stock)
		assert.Nil(t, product.ExternalID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_FindByExternalID(t *testing.T) {
	t.Run("finds product by marketplace id", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormProductRepository(db)

		productID := uuid.New()
		shopID := uuid.New()

		rows := sqlmock.NewRows(productColumns()).
			AddRow(productID, shopID, "mkt-42", "SKU-1", "Widget", decimal.NewFromInt(10), decimal.NewFromInt(5), 8)

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE external_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("mkt-42", 1).
			WillReturnRows(rows)

		product, err := repo.FindByExternalID(context.Background(), "mkt-42")

		assert.NoError(t, err)
		require.NotNil(t, product)
		require.NotNil(t, product.ExternalID)
		assert.Equal(t, "mkt-42", *product.ExternalID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for unknown marketplace id", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormProductRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE external_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("mkt-missing", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		product, err := repo.FindByExternalID(context.Background(), "mkt-missing")

		assert.Nil(t, product)
		assert.Equal(t, shared.ErrNotFound, err)
	})
}

func TestGormProductRepository_FindByShop(t *testing.T) {
	t.Run("lists shop products ordered by sku", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormProductRepository(db)

		shopID := uuid.New()

		rows := sqlmock.NewRows(productColumns()).
			AddRow(uuid.New(), shopID, nil, "SKU-A", "Alpha", decimal.NewFromInt(10), decimal.NewFromInt(5), 8).
			AddRow(uuid.New(), shopID, nil, "SKU-B", "Beta", decimal.NewFromInt(12), decimal.NewFromInt(6), 3)

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE shop_id = \$1 ORDER BY sku`).
			WithArgs(shopID).
			WillReturnRows(rows)

		products, err := repo.FindByShop(context.Background(), shopID)

		assert.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "SKU-A", products[0].SKU)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
