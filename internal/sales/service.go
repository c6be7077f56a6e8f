package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/azulretail/pos-backend/internal/history"
	"github.com/azulretail/pos-backend/internal/products"
	"github.com/azulretail/pos-backend/pkg/db/models"
	"github.com/azulretail/pos-backend/pkg/enums"
	pkgerrors "github.com/azulretail/pos-backend/pkg/errors"
	"github.com/azulretail/pos-backend/pkg/metrics"
	"github.com/azulretail/pos-backend/pkg/types"
)

// CancelWindowDays is how many calendar days a sale stays cancelable.
const CancelWindowDays = 7

const topProductsLimit = 5

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type auditRecorder interface {
	Record(ctx context.Context, input history.RecordInput) error
	RecordTx(ctx context.Context, tx *gorm.DB, input history.RecordInput) error
}

// RegisterLine is one requested sale position.
type RegisterLine struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// RegisterInput captures a sale registration request.
type RegisterInput struct {
	Lines         []RegisterLine
	PaymentMethod enums.PaymentMethod
}

// Service exposes the sales ledger.
type Service interface {
	Register(ctx context.Context, employeeID int64, input RegisterInput, meta types.RequestMeta) (*SaleDTO, error)
	List(ctx context.Context, filters ListFilters) ([]SaleDTO, error)
	GetByID(ctx context.Context, id int64) (*SaleDTO, error)
	Cancel(ctx context.Context, actorID, saleID int64, reason string, meta types.RequestMeta) (*SaleDTO, error)
	Statistics(ctx context.Context, from, to *time.Time) (*StatisticsDTO, error)
	EmployeeStatistics(ctx context.Context, employeeID int64) (*EmployeeStatsDTO, error)
}

type service struct {
	repo     Repository
	products products.Repository
	history  auditRecorder
	tx       txRunner
	metrics  *metrics.SalesMetrics
	now      func() time.Time
}

// NewService builds a sales service with the provided dependencies.
func NewService(repo Repository, productsRepo products.Repository, recorder auditRecorder, tx txRunner, salesMetrics *metrics.SalesMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if productsRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     repo,
		products: productsRepo,
		history:  recorder,
		tx:       tx,
		metrics:  salesMetrics,
		now:      time.Now,
	}, nil
}

func (s *service) Register(ctx context.Context, employeeID int64, input RegisterInput, meta types.RequestMeta) (*SaleDTO, error) {
	if employeeID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "employee is required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.PaymentMethod))
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a sale requires at least one line")
	}

	// Pre-flight validation outside the transaction, first failure wins.
	// The stock check repeats inside the transaction as a conditional
	// decrement, so a concurrent sale cannot oversell.
	total := decimal.Zero
	lines := make([]models.SaleLine, 0, len(input.Lines))
	for _, line := range input.Lines {
		product, err := s.products.FindByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %d does not exist", line.ProductID))
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find product")
		}
		if !product.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %q is not active", product.Name))
		}
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity for product %q must be positive", product.Name))
		}
		if product.Stock < line.Quantity {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("insufficient stock for product %q: %d available", product.Name, product.Stock))
		}
		if line.UnitPrice.LessThanOrEqual(decimal.Zero) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unit price for product %q must be positive", product.Name))
		}

		subtotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(subtotal)
		lines = append(lines, models.SaleLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  subtotal,
		})
	}

	now := s.now()
	sale := &models.Sale{
		EmployeeID:    employeeID,
		Total:         total,
		PaymentMethod: input.PaymentMethod,
		SaleDate:      time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
		SaleTime:      now.Format("15:04:05"),
		Lines:         lines,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txProducts := s.products.WithTx(tx)
		for _, line := range sale.Lines {
			ok, err := txProducts.DecrementStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("insufficient stock for product %d", line.ProductID))
			}
		}

		if err := s.repo.WithTx(tx).Create(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sale")
		}

		return s.history.RecordTx(ctx, tx, history.RecordInput{
			UserID: employeeID,
			Action: enums.AuditActionSale,
			Description: fmt.Sprintf("Registered sale #%d: %d items, total %s, paid by %s",
				sale.ID, len(sale.Lines), sale.Total.StringFixed(2), sale.PaymentMethod),
			Meta: meta,
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncRegistered()

	return s.GetByID(ctx, sale.ID)
}

func (s *service) List(ctx context.Context, filters ListFilters) ([]SaleDTO, error) {
	salesRows, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}

	result := make([]SaleDTO, 0, len(salesRows))
	for _, sale := range salesRows {
		result = append(result, toSaleDTO(sale))
	}
	return result, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*SaleDTO, error) {
	sale, err := s.findSale(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toSaleDTO(*sale)
	return &dto, nil
}

func (s *service) Cancel(ctx context.Context, actorID, saleID int64, reason string, meta types.RequestMeta) (*SaleDTO, error) {
	sale, err := s.findSale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale.Canceled {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale is already canceled")
	}

	now := s.now()
	if calendarDaysBetween(sale.CreatedAt, now) > CancelWindowDays {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("sales can only be canceled within %d days", CancelWindowDays))
	}
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a cancellation reason is required")
	}

	sale.Canceled = true
	sale.CancelReason = &reason
	sale.CanceledByID = &actorID
	sale.CanceledAt = &now

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark sale canceled")
		}

		txProducts := s.products.WithTx(tx)
		for _, line := range sale.Lines {
			if err := txProducts.RestoreStock(ctx, line.ProductID, line.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
			}
		}

		return s.history.RecordTx(ctx, tx, history.RecordInput{
			UserID:      actorID,
			Action:      enums.AuditActionSaleCanceled,
			Description: fmt.Sprintf("Canceled sale #%d: %s", sale.ID, reason),
			Meta:        meta,
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncCanceled()

	dto := toSaleDTO(*sale)
	return &dto, nil
}

func (s *service) Statistics(ctx context.Context, from, to *time.Time) (*StatisticsDTO, error) {
	totals, err := s.repo.Totals(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate sales totals")
	}

	stats := &StatisticsDTO{
		Total:              totals.Total,
		SalesCount:         totals.SalesCount,
		AverageSale:        decimal.Zero,
		CashTotal:          totals.CashTotal,
		TransferTotal:      totals.TransferTotal,
		CashPercentage:     decimal.Zero,
		TransferPercentage: decimal.Zero,
	}

	if totals.SalesCount > 0 {
		stats.AverageSale = totals.Total.DivRound(decimal.NewFromInt(totals.SalesCount), 2)
	}
	if totals.Total.IsPositive() {
		hundred := decimal.NewFromInt(100)
		stats.CashPercentage = totals.CashTotal.Mul(hundred).DivRound(totals.Total, 2)
		stats.TransferPercentage = totals.TransferTotal.Mul(hundred).DivRound(totals.Total, 2)
	}

	topProducts, err := s.repo.TopProducts(ctx, from, to, topProductsLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rank top products")
	}
	stats.TopProducts = make([]TopProductDTO, 0, len(topProducts))
	for _, row := range topProducts {
		stats.TopProducts = append(stats.TopProducts, TopProductDTO(row))
	}

	byEmployee, err := s.repo.TotalsByEmployee(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate employee totals")
	}
	stats.ByEmployee = make([]EmployeeTotalDTO, 0, len(byEmployee))
	for _, row := range byEmployee {
		stats.ByEmployee = append(stats.ByEmployee, EmployeeTotalDTO(row))
	}

	return stats, nil
}

func (s *service) EmployeeStatistics(ctx context.Context, employeeID int64) (*EmployeeStatsDTO, error) {
	stats, err := s.repo.EmployeeStats(ctx, employeeID, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate employee sales")
	}
	return &EmployeeStatsDTO{
		TodayCount:      stats.TodayCount,
		TodayTotal:      stats.TodayTotal,
		HistoricalTotal: stats.HistoricalTotal,
		LastSaleAt:      stats.LastSaleAt,
	}, nil
}

func (s *service) findSale(ctx context.Context, id int64) (*models.Sale, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find sale")
	}
	return sale, nil
}

// calendarDaysBetween compares local calendar days, not 24h periods, so a
// sale from late evening still counts a full day the next morning. Both
// dates are re-anchored in UTC before subtracting, otherwise a daylight
// saving transition inside the span shortens it and drops a day.
func calendarDaysBetween(from, to time.Time) int {
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toDay.Sub(fromDay) / (24 * time.Hour))
}
