package sales

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/azulretail/pos-backend/pkg/db/models"
	"github.com/azulretail/pos-backend/pkg/enums"
)

// ListFilters narrows the sales read side.
type ListFilters struct {
	DateFrom      *time.Time
	DateTo        *time.Time
	EmployeeID    *int64
	PaymentMethod *enums.PaymentMethod
	Canceled      *bool
}

// Totals mirrors the headline aggregate row.
type Totals struct {
	Total         decimal.Decimal
	SalesCount    int64
	CashTotal     decimal.Decimal
	TransferTotal decimal.Decimal
}

// TopProductRow is one row of the best-sellers ranking.
type TopProductRow struct {
	ProductID   int64
	ProductName string
	ProductCode string
	Quantity    int64
	Total       decimal.Decimal
}

// EmployeeTotalRow is one row of the per-employee breakdown.
type EmployeeTotalRow struct {
	EmployeeID   int64
	EmployeeName string
	SalesCount   int64
	Total        decimal.Decimal
}

// EmployeeStats mirrors one employee's ledger summary.
type EmployeeStats struct {
	TodayCount      int64
	TodayTotal      decimal.Decimal
	HistoricalTotal decimal.Decimal
	LastSaleAt      *time.Time
}

// Repository manages persistence for the sales ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, sale *models.Sale) error
	FindByID(ctx context.Context, id int64) (*models.Sale, error)
	List(ctx context.Context, filters ListFilters) ([]models.Sale, error)
	Update(ctx context.Context, sale *models.Sale) error
	Totals(ctx context.Context, from, to *time.Time) (*Totals, error)
	TopProducts(ctx context.Context, from, to *time.Time, limit int) ([]TopProductRow, error)
	TotalsByEmployee(ctx context.Context, from, to *time.Time) ([]EmployeeTotalRow, error)
	CountByEmployee(ctx context.Context, employeeID int64) (int64, error)
	EmployeeStats(ctx context.Context, employeeID int64, now time.Time) (*EmployeeStats, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a sales repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Sale, error) {
	var sale models.Sale
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Lines.Product").
		Preload("Employee").
		First(&sale, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]models.Sale, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Preload("Lines").
		Preload("Lines.Product").
		Preload("Employee")

	if filters.DateFrom != nil {
		query = query.Where("sale_date >= ?", filters.DateFrom.Format("2006-01-02"))
	}
	if filters.DateTo != nil {
		query = query.Where("sale_date <= ?", filters.DateTo.Format("2006-01-02"))
	}
	if filters.EmployeeID != nil {
		query = query.Where("employee_id = ?", *filters.EmployeeID)
	}
	if filters.PaymentMethod != nil {
		query = query.Where("payment_method = ?", *filters.PaymentMethod)
	}
	if filters.Canceled != nil {
		query = query.Where("canceled = ?", *filters.Canceled)
	}

	var sales []models.Sale
	if err := query.Order("created_at DESC").Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *repository) Update(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Omit("Lines", "Employee").Save(sale).Error
}

func (r *repository) rangeQuery(ctx context.Context, from, to *time.Time) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("NOT canceled")
	if from != nil {
		query = query.Where("sale_date >= ?", from.Format("2006-01-02"))
	}
	if to != nil {
		query = query.Where("sale_date <= ?", to.Format("2006-01-02"))
	}
	return query
}

func (r *repository) Totals(ctx context.Context, from, to *time.Time) (*Totals, error) {
	var row struct {
		Total         decimal.Decimal
		SalesCount    int64
		CashTotal     decimal.Decimal
		TransferTotal decimal.Decimal
	}
	err := r.rangeQuery(ctx, from, to).
		Select(
			"COALESCE(SUM(total), 0) AS total, "+
				"COUNT(*) AS sales_count, "+
				"COALESCE(SUM(CASE WHEN payment_method = ? THEN total ELSE 0 END), 0) AS cash_total, "+
				"COALESCE(SUM(CASE WHEN payment_method = ? THEN total ELSE 0 END), 0) AS transfer_total",
			enums.PaymentMethodCash, enums.PaymentMethodTransfer,
		).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	totals := Totals(row)
	return &totals, nil
}

func (r *repository) TopProducts(ctx context.Context, from, to *time.Time, limit int) ([]TopProductRow, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SaleLine{}).
		Select(
			"sale_lines.product_id AS product_id, " +
				"products.name AS product_name, " +
				"products.code AS product_code, " +
				"SUM(sale_lines.quantity) AS quantity, " +
				"COALESCE(SUM(sale_lines.subtotal), 0) AS total",
		).
		Joins("JOIN sales ON sales.id = sale_lines.sale_id").
		Joins("JOIN products ON products.id = sale_lines.product_id").
		Where("NOT sales.canceled")
	if from != nil {
		query = query.Where("sales.sale_date >= ?", from.Format("2006-01-02"))
	}
	if to != nil {
		query = query.Where("sales.sale_date <= ?", to.Format("2006-01-02"))
	}

	var rows []TopProductRow
	if err := query.
		Group("sale_lines.product_id, products.name, products.code").
		Order("quantity DESC, products.name ASC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) TotalsByEmployee(ctx context.Context, from, to *time.Time) ([]EmployeeTotalRow, error) {
	var rows []EmployeeTotalRow
	err := r.rangeQuery(ctx, from, to).
		Select(
			"sales.employee_id AS employee_id, " +
				"users.first_name || ' ' || users.last_name AS employee_name, " +
				"COUNT(*) AS sales_count, " +
				"COALESCE(SUM(sales.total), 0) AS total",
		).
		Joins("JOIN users ON users.id = sales.employee_id").
		Group("sales.employee_id, users.first_name, users.last_name").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CountByEmployee(ctx context.Context, employeeID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("employee_id = ?", employeeID).
		Count(&count).Error
	return count, err
}

func (r *repository) EmployeeStats(ctx context.Context, employeeID int64, now time.Time) (*EmployeeStats, error) {
	today := now.Format("2006-01-02")

	var todayRow struct {
		TodayCount int64
		TodayTotal decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("employee_id = ? AND NOT canceled AND sale_date = ?", employeeID, today).
		Select("COUNT(*) AS today_count, COALESCE(SUM(total), 0) AS today_total").
		Scan(&todayRow).Error; err != nil {
		return nil, err
	}

	var historical struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("employee_id = ? AND NOT canceled", employeeID).
		Select("COALESCE(SUM(total), 0) AS total").
		Scan(&historical).Error; err != nil {
		return nil, err
	}

	stats := &EmployeeStats{
		TodayCount:      todayRow.TodayCount,
		TodayTotal:      todayRow.TodayTotal,
		HistoricalTotal: historical.Total,
	}

	var lastSale models.Sale
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND NOT canceled", employeeID).
		Order("created_at DESC").
		First(&lastSale).Error
	if err == nil {
		stats.LastSaleAt = &lastSale.CreatedAt
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return stats, nil
}
