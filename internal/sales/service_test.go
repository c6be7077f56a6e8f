package sales

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/azulretail/pos-backend/internal/history"
	"github.com/azulretail/pos-backend/internal/products"
	"github.com/azulretail/pos-backend/pkg/db/models"
	"github.com/azulretail/pos-backend/pkg/enums"
	pkgerrors "github.com/azulretail/pos-backend/pkg/errors"
	"github.com/azulretail/pos-backend/pkg/types"
)

type stubSalesRepo struct {
	sale    *models.Sale
	created *models.Sale
	updated *models.Sale
	totals  Totals
	findErr error
}

func (r *stubSalesRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubSalesRepo) Create(ctx context.Context, sale *models.Sale) error {
	sale.ID = 1
	r.created = sale
	r.sale = sale
	return nil
}

func (r *stubSalesRepo) FindByID(ctx context.Context, id int64) (*models.Sale, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if r.sale == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.sale, nil
}

func (r *stubSalesRepo) List(ctx context.Context, filters ListFilters) ([]models.Sale, error) {
	if r.sale == nil {
		return nil, nil
	}
	return []models.Sale{*r.sale}, nil
}

func (r *stubSalesRepo) Update(ctx context.Context, sale *models.Sale) error {
	r.updated = sale
	return nil
}

func (r *stubSalesRepo) Totals(ctx context.Context, from, to *time.Time) (*Totals, error) {
	totals := r.totals
	return &totals, nil
}

func (r *stubSalesRepo) TopProducts(ctx context.Context, from, to *time.Time, limit int) ([]TopProductRow, error) {
	return nil, nil
}

func (r *stubSalesRepo) TotalsByEmployee(ctx context.Context, from, to *time.Time) ([]EmployeeTotalRow, error) {
	return nil, nil
}

func (r *stubSalesRepo) CountByEmployee(ctx context.Context, employeeID int64) (int64, error) {
	return 0, nil
}

func (r *stubSalesRepo) EmployeeStats(ctx context.Context, employeeID int64, now time.Time) (*EmployeeStats, error) {
	return &EmployeeStats{}, nil
}

type stubProductsRepo struct {
	products map[int64]*models.Product
}

func (r *stubProductsRepo) WithTx(tx *gorm.DB) products.Repository { return r }

func (r *stubProductsRepo) NextCodeNumber(ctx context.Context) (int64, error) { return 0, nil }

func (r *stubProductsRepo) Create(ctx context.Context, product *models.Product) error { return nil }

func (r *stubProductsRepo) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

func (r *stubProductsRepo) FindByCode(ctx context.Context, code string) (*models.Product, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductsRepo) List(ctx context.Context, filters products.ListFilters) ([]models.Product, error) {
	return nil, nil
}

func (r *stubProductsRepo) Update(ctx context.Context, product *models.Product) error { return nil }

func (r *stubProductsRepo) DecrementStock(ctx context.Context, productID int64, quantity int) (bool, error) {
	product, ok := r.products[productID]
	if !ok || product.Stock < quantity {
		return false, nil
	}
	product.Stock -= quantity
	return true, nil
}

func (r *stubProductsRepo) RestoreStock(ctx context.Context, productID int64, quantity int) error {
	if product, ok := r.products[productID]; ok {
		product.Stock += quantity
	}
	return nil
}

func (r *stubProductsRepo) InventoryStats(ctx context.Context) (*products.InventoryStats, error) {
	return &products.InventoryStats{}, nil
}

type stubRecorder struct {
	entries []history.RecordInput
}

func (r *stubRecorder) Record(ctx context.Context, input history.RecordInput) error {
	r.entries = append(r.entries, input)
	return nil
}

func (r *stubRecorder) RecordTx(ctx context.Context, tx *gorm.DB, input history.RecordInput) error {
	r.entries = append(r.entries, input)
	return nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

func testProduct(id int64, name string, stock int) *models.Product {
	return &models.Product{
		ID:        id,
		Code:      "J0001",
		Name:      name,
		Stock:     stock,
		SalePrice: decimal.NewFromInt(10),
		IsActive:  true,
	}
}

func newTestService(t *testing.T, repo *stubSalesRepo, productsRepo *stubProductsRepo, recorder *stubRecorder) *service {
	t.Helper()
	svc, err := NewService(repo, productsRepo, recorder, stubTx{}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc.(*service)
}

func TestRegisterComputesTotalAndDecrementsStock(t *testing.T) {
	repo := &stubSalesRepo{}
	productsRepo := &stubProductsRepo{products: map[int64]*models.Product{
		1: testProduct(1, "Blue Mug", 10),
		2: testProduct(2, "Red Plate", 4),
	}}
	recorder := &stubRecorder{}
	svc := newTestService(t, repo, productsRepo, recorder)

	sale, err := svc.Register(context.Background(), 7, RegisterInput{
		PaymentMethod: enums.PaymentMethodCash,
		Lines: []RegisterLine{
			{ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
			{ProductID: 2, Quantity: 1, UnitPrice: decimal.NewFromInt(15)},
		},
	}, types.RequestMeta{})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if sale.Total.StringFixed(2) != "35.00" {
		t.Fatalf("expected total 35.00 got %s", sale.Total)
	}
	if len(sale.Lines) != 2 {
		t.Fatalf("expected 2 lines got %d", len(sale.Lines))
	}
	if repo.created.Lines[0].Subtotal.StringFixed(2) != "20.00" {
		t.Fatalf("expected first subtotal 20.00 got %s", repo.created.Lines[0].Subtotal)
	}
	if productsRepo.products[1].Stock != 8 {
		t.Fatalf("expected stock 8 got %d", productsRepo.products[1].Stock)
	}
	if productsRepo.products[2].Stock != 3 {
		t.Fatalf("expected stock 3 got %d", productsRepo.products[2].Stock)
	}
	if len(recorder.entries) != 1 || recorder.entries[0].Action != enums.AuditActionSale {
		t.Fatalf("expected one sale audit entry, got %+v", recorder.entries)
	}
}

func TestRegisterRejectsUnknownProduct(t *testing.T) {
	svc := newTestService(t, &stubSalesRepo{}, &stubProductsRepo{products: map[int64]*models.Product{}}, &stubRecorder{})

	_, err := svc.Register(context.Background(), 7, RegisterInput{
		PaymentMethod: enums.PaymentMethodCash,
		Lines:         []RegisterLine{{ProductID: 99, Quantity: 1, UnitPrice: decimal.NewFromInt(5)}},
	}, types.RequestMeta{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegisterRejectsInactiveProduct(t *testing.T) {
	product := testProduct(1, "Blue Mug", 10)
	product.IsActive = false
	svc := newTestService(t, &stubSalesRepo{}, &stubProductsRepo{products: map[int64]*models.Product{1: product}}, &stubRecorder{})

	_, err := svc.Register(context.Background(), 7, RegisterInput{
		PaymentMethod: enums.PaymentMethodCash,
		Lines:         []RegisterLine{{ProductID: 1, Quantity: 1, UnitPrice: decimal.NewFromInt(5)}},
	}, types.RequestMeta{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegisterRejectsInsufficientStock(t *testing.T) {
	productsRepo := &stubProductsRepo{products: map[int64]*models.Product{1: testProduct(1, "Blue Mug", 1)}}
	svc := newTestService(t, &stubSalesRepo{}, productsRepo, &stubRecorder{})

	_, err := svc.Register(context.Background(), 7, RegisterInput{
		PaymentMethod: enums.PaymentMethodCash,
		Lines:         []RegisterLine{{ProductID: 1, Quantity: 3, UnitPrice: decimal.NewFromInt(5)}},
	}, types.RequestMeta{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if productsRepo.products[1].Stock != 1 {
		t.Fatalf("stock should be untouched, got %d", productsRepo.products[1].Stock)
	}
}

func TestRegisterRejectsNonPositiveQuantity(t *testing.T) {
	svc := newTestService(t, &stubSalesRepo{}, &stubProductsRepo{products: map[int64]*models.Product{1: testProduct(1, "Blue Mug", 10)}}, &stubRecorder{})

	_, err := svc.Register(context.Background(), 7, RegisterInput{
		PaymentMethod: enums.PaymentMethodCash,
		Lines:         []RegisterLine{{ProductID: 1, Quantity: 0, UnitPrice: decimal.NewFromInt(5)}},
	}, types.RequestMeta{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegisterRejectsEmptyLines(t *testing.T) {
	svc := newTestService(t, &stubSalesRepo{}, &stubProductsRepo{}, &stubRecorder{})

	_, err := svc.Register(context.Background(), 7, RegisterInput{PaymentMethod: enums.PaymentMethodCash}, types.RequestMeta{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegisterRejectsInvalidPaymentMethod(t *testing.T) {
	svc := newTestService(t, &stubSalesRepo{}, &stubProductsRepo{}, &stubRecorder{})

	_, err := svc.Register(context.Background(), 7, RegisterInput{
		PaymentMethod: enums.PaymentMethod("crypto"),
		Lines:         []RegisterLine{{ProductID: 1, Quantity: 1, UnitPrice: decimal.NewFromInt(5)}},
	}, types.RequestMeta{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func canceledSaleFixture(createdAt time.Time) *models.Sale {
	return &models.Sale{
		ID:            4,
		EmployeeID:    7,
		Total:         decimal.NewFromInt(35),
		PaymentMethod: enums.PaymentMethodCash,
		SaleDate:      createdAt,
		SaleTime:      "10:00:00",
		Lines: []models.SaleLine{
			{ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(10), Subtotal: decimal.NewFromInt(20)},
		},
		CreatedAt: createdAt,
	}
}

func TestCancelRestoresStock(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	repo := &stubSalesRepo{sale: canceledSaleFixture(now.AddDate(0, 0, -3))}
	productsRepo := &stubProductsRepo{products: map[int64]*models.Product{1: testProduct(1, "Blue Mug", 8)}}
	recorder := &stubRecorder{}
	svc := newTestService(t, repo, productsRepo, recorder)
	svc.now = func() time.Time { return now }

	sale, err := svc.Cancel(context.Background(), 2, 4, "wrong item", types.RequestMeta{})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if !sale.Canceled {
		t.Fatal("expected sale marked canceled")
	}
	if sale.CancelReason == nil || *sale.CancelReason != "wrong item" {
		t.Fatalf("expected reason recorded, got %v", sale.CancelReason)
	}
	if productsRepo.products[1].Stock != 10 {
		t.Fatalf("expected stock restored to 10, got %d", productsRepo.products[1].Stock)
	}
	if len(recorder.entries) != 1 || recorder.entries[0].Action != enums.AuditActionSaleCanceled {
		t.Fatalf("expected cancel audit entry, got %+v", recorder.entries)
	}
}

func TestCancelRejectsExpiredWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	repo := &stubSalesRepo{sale: canceledSaleFixture(now.AddDate(0, 0, -8))}
	svc := newTestService(t, repo, &stubProductsRepo{}, &stubRecorder{})
	svc.now = func() time.Time { return now }

	_, err := svc.Cancel(context.Background(), 2, 4, "too late", types.RequestMeta{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCancelAllowsSeventhCalendarDay(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	repo := &stubSalesRepo{sale: canceledSaleFixture(now.AddDate(0, 0, -7))}
	productsRepo := &stubProductsRepo{products: map[int64]*models.Product{1: testProduct(1, "Blue Mug", 8)}}
	svc := newTestService(t, repo, productsRepo, &stubRecorder{})
	svc.now = func() time.Time { return now }

	if _, err := svc.Cancel(context.Background(), 2, 4, "still in window", types.RequestMeta{}); err != nil {
		t.Fatalf("cancel on day seven: %v", err)
	}
}

func TestCancelRejectsAlreadyCanceled(t *testing.T) {
	sale := canceledSaleFixture(time.Now())
	sale.Canceled = true
	svc := newTestService(t, &stubSalesRepo{sale: sale}, &stubProductsRepo{}, &stubRecorder{})

	_, err := svc.Cancel(context.Background(), 2, 4, "again", types.RequestMeta{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCancelRequiresReason(t *testing.T) {
	svc := newTestService(t, &stubSalesRepo{sale: canceledSaleFixture(time.Now())}, &stubProductsRepo{}, &stubRecorder{})

	_, err := svc.Cancel(context.Background(), 2, 4, "", types.RequestMeta{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCancelNotFound(t *testing.T) {
	svc := newTestService(t, &stubSalesRepo{}, &stubProductsRepo{}, &stubRecorder{})

	_, err := svc.Cancel(context.Background(), 2, 4, "missing", types.RequestMeta{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestStatisticsZeroGuard(t *testing.T) {
	svc := newTestService(t, &stubSalesRepo{}, &stubProductsRepo{}, &stubRecorder{})

	stats, err := svc.Statistics(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if !stats.AverageSale.IsZero() {
		t.Fatalf("expected zero average, got %s", stats.AverageSale)
	}
	if !stats.CashPercentage.IsZero() || !stats.TransferPercentage.IsZero() {
		t.Fatalf("expected zero percentages, got %s / %s", stats.CashPercentage, stats.TransferPercentage)
	}
}

func TestStatisticsSplitsPaymentShares(t *testing.T) {
	repo := &stubSalesRepo{totals: Totals{
		Total:         decimal.NewFromInt(200),
		SalesCount:    4,
		CashTotal:     decimal.NewFromInt(150),
		TransferTotal: decimal.NewFromInt(50),
	}}
	svc := newTestService(t, repo, &stubProductsRepo{}, &stubRecorder{})

	stats, err := svc.Statistics(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.AverageSale.StringFixed(2) != "50.00" {
		t.Fatalf("expected average 50.00, got %s", stats.AverageSale)
	}
	if stats.CashPercentage.StringFixed(2) != "75.00" {
		t.Fatalf("expected cash share 75.00, got %s", stats.CashPercentage)
	}
	if stats.TransferPercentage.StringFixed(2) != "25.00" {
		t.Fatalf("expected transfer share 25.00, got %s", stats.TransferPercentage)
	}
}

func TestCalendarDaysBetween(t *testing.T) {
	evening := time.Date(2026, 3, 9, 23, 50, 0, 0, time.Local)
	morning := time.Date(2026, 3, 10, 0, 10, 0, 0, time.Local)
	if got := calendarDaysBetween(evening, morning); got != 1 {
		t.Fatalf("expected 1 calendar day, got %d", got)
	}
	if got := calendarDaysBetween(morning, morning); got != 0 {
		t.Fatalf("expected 0 calendar days, got %d", got)
	}
}

func TestCalendarDaysBetweenSpansSpringForward(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// March 8 2026 has only 23 hours in this zone; the count must not
	// lose a day to the missing hour.
	from := time.Date(2026, 3, 5, 14, 30, 0, 0, loc)
	to := time.Date(2026, 3, 13, 9, 0, 0, 0, loc)
	if got := calendarDaysBetween(from, to); got != 8 {
		t.Fatalf("expected 8 calendar days, got %d", got)
	}
}

func TestCancelRejectsEighthDayAcrossSpringForward(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	now := time.Date(2026, 3, 13, 9, 0, 0, 0, loc)
	repo := &stubSalesRepo{sale: canceledSaleFixture(time.Date(2026, 3, 5, 14, 30, 0, 0, loc))}
	svc := newTestService(t, repo, &stubProductsRepo{}, &stubRecorder{})
	svc.now = func() time.Time { return now }

	_, gotErr := svc.Cancel(context.Background(), 2, 4, "too late", types.RequestMeta{})
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", gotErr)
	}
}
