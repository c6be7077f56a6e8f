package products

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/azulretail/pos-backend/pkg/db/models"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	categories := `
CREATE TABLE IF NOT EXISTS categories (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  emoji TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	products := `
CREATE TABLE IF NOT EXISTS products (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  code TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  description TEXT,
  category_id INTEGER NOT NULL,
  purchase_price NUMERIC NOT NULL,
  sale_price NUMERIC NOT NULL,
  stock INTEGER NOT NULL,
  min_stock INTEGER NOT NULL DEFAULT 5,
  discount_percent INTEGER NOT NULL DEFAULT 0,
  condition TEXT NOT NULL DEFAULT 'good',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	counter := `
CREATE TABLE IF NOT EXISTS product_code_counter (
  id INTEGER PRIMARY KEY,
  last_number INTEGER NOT NULL
);`
	require.NoError(t, db.Exec(categories).Error)
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(counter).Error)

	require.NoError(t, db.Exec("DELETE FROM products").Error)
	require.NoError(t, db.Exec("DELETE FROM categories").Error)
	require.NoError(t, db.Exec("DELETE FROM product_code_counter").Error)
	require.NoError(t, db.Exec("INSERT INTO product_code_counter (id, last_number) VALUES (1, 0)").Error)

	return db
}

func seedCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, IsActive: true}
	require.NoError(t, db.Create(category).Error)
	return category
}

func seedProduct(t *testing.T, db *gorm.DB, categoryID int64, code, name string, stock, minStock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Code:          code,
		Name:          name,
		CategoryID:    categoryID,
		PurchasePrice: decimal.NewFromInt(4),
		SalePrice:     decimal.NewFromInt(10),
		Stock:         stock,
		MinStock:      minStock,
		Condition:     "good",
		IsActive:      true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestNextCodeNumberIncrements(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	first, err := repo.NextCodeNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)

	second, err := repo.NextCodeNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second)
}

func TestDecrementStockGuardsAvailability(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	category := seedCategory(t, db, "Kitchen")
	product := seedProduct(t, db, category.ID, "J0001", "Blue Mug", 3, 5)

	ok, err := repo.DecrementStock(ctx, product.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	// Only one unit left, asking for two must leave the row untouched.
	ok, err = repo.DecrementStock(ctx, product.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Stock)

	require.NoError(t, repo.RestoreStock(ctx, product.ID, 2))
	stored, err = repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Stock)
}

func TestListFiltersLowStock(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	category := seedCategory(t, db, "Kitchen")
	seedProduct(t, db, category.ID, "J0001", "Blue Mug", 2, 5)
	seedProduct(t, db, category.ID, "J0002", "Red Plate", 9, 5)
	seedProduct(t, db, category.ID, "J0003", "Green Bowl", 0, 5)

	rows, err := repo.List(ctx, ListFilters{LowStock: true})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Blue Mug", rows[0].Name)
}

func TestListSearchMatchesNameOrCode(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	category := seedCategory(t, db, "Kitchen")
	seedProduct(t, db, category.ID, "J0001", "Blue Mug", 2, 5)
	seedProduct(t, db, category.ID, "J0002", "Red Plate", 9, 5)

	rows, err := repo.List(ctx, ListFilters{Search: "J0002"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Red Plate", rows[0].Name)

	rows, err = repo.List(ctx, ListFilters{Search: "Mug"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "J0001", rows[0].Code)
}

func TestInventoryStats(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	kitchen := seedCategory(t, db, "Kitchen")
	garden := seedCategory(t, db, "Garden")
	seedProduct(t, db, kitchen.ID, "J0001", "Blue Mug", 2, 5)
	seedProduct(t, db, kitchen.ID, "J0002", "Red Plate", 10, 5)
	seedProduct(t, db, garden.ID, "J0003", "Shovel", 0, 5)

	inactive := seedProduct(t, db, garden.ID, "J0004", "Old Rake", 7, 5)
	inactive.IsActive = false
	require.NoError(t, db.Save(inactive).Error)

	stats, err := repo.InventoryStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.ActiveProducts)
	assert.Equal(t, int64(1), stats.LowStockCount)
	assert.Equal(t, int64(1), stats.OutOfStock)
	// 2*4 + 10*4 + 0*4 at a purchase price of 4 each.
	assert.Equal(t, "48.00", stats.InventoryValue.StringFixed(2))

	require.Len(t, stats.ByCategory, 2)
	assert.Equal(t, "Garden", stats.ByCategory[0].CategoryName)
	assert.Equal(t, "Kitchen", stats.ByCategory[1].CategoryName)
	assert.Equal(t, int64(2), stats.ByCategory[1].ProductCount)
}
