package products

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/azulretail/pos-backend/pkg/db/models"
	"github.com/azulretail/pos-backend/pkg/enums"
)

// ListFilters narrows the product read side.
type ListFilters struct {
	CategoryID *int64
	Active     *bool
	Condition  *enums.ProductCondition
	LowStock   bool
	Search     string
}

// InventoryStats mirrors the inventory aggregate rows.
type InventoryStats struct {
	ActiveProducts int64
	InventoryValue decimal.Decimal
	LowStockCount  int64
	OutOfStock     int64
	ByCategory     []CategoryValueRow
}

// CategoryValueRow is one per-category aggregate row.
type CategoryValueRow struct {
	CategoryID   int64
	CategoryName string
	ProductCount int64
	Value        decimal.Decimal
}

// Repository manages persistence for products and their code sequence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	NextCodeNumber(ctx context.Context) (int64, error)
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	FindByCode(ctx context.Context, code string) (*models.Product, error)
	List(ctx context.Context, filters ListFilters) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	DecrementStock(ctx context.Context, productID int64, quantity int) (bool, error)
	RestoreStock(ctx context.Context, productID int64, quantity int) error
	InventoryStats(ctx context.Context) (*InventoryStats, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a products repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// NextCodeNumber advances the single-row counter atomically. Concurrent
// callers serialize on the row lock, so codes never repeat.
func (r *repository) NextCodeNumber(ctx context.Context) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).
		Raw("UPDATE product_code_counter SET last_number = last_number + 1 WHERE id = 1 RETURNING last_number").
		Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (r *repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Preload("Category").
		First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Preload("Category").
		First(&product, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]models.Product, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Preload("Category")

	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.Active != nil {
		query = query.Where("is_active = ?", *filters.Active)
	}
	if filters.Condition != nil {
		query = query.Where("condition = ?", *filters.Condition)
	}
	if filters.LowStock {
		query = query.Where("stock > 0 AND stock < min_stock")
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.Where("name LIKE ? OR code LIKE ?", pattern, pattern)
	}

	var products []models.Product
	if err := query.Order("name ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// DecrementStock subtracts quantity only when enough stock remains. A false
// return means the guard rejected the write.
func (r *repository) DecrementStock(ctx context.Context, productID int64, quantity int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) RestoreStock(ctx context.Context, productID int64, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity)).Error
}

func (r *repository) InventoryStats(ctx context.Context) (*InventoryStats, error) {
	stats := &InventoryStats{InventoryValue: decimal.Zero}

	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Product{}).Where("is_active")
	}

	if err := base().Count(&stats.ActiveProducts).Error; err != nil {
		return nil, err
	}

	var totalValue struct {
		Value decimal.Decimal
	}
	if err := base().
		Select("COALESCE(SUM(purchase_price * stock), 0) AS value").
		Scan(&totalValue).Error; err != nil {
		return nil, err
	}
	stats.InventoryValue = totalValue.Value

	if err := base().Where("stock > 0 AND stock < min_stock").Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}
	if err := base().Where("stock = 0").Count(&stats.OutOfStock).Error; err != nil {
		return nil, err
	}

	rows := []struct {
		CategoryID   int64
		CategoryName string
		ProductCount int64
		Value        decimal.Decimal
	}{}
	if err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("products.category_id AS category_id, categories.name AS category_name, COUNT(*) AS product_count, COALESCE(SUM(products.purchase_price * products.stock), 0) AS value").
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("products.is_active").
		Group("products.category_id, categories.name").
		Order("categories.name ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByCategory = append(stats.ByCategory, CategoryValueRow(row))
	}

	return stats, nil
}
