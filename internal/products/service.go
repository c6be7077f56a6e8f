package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/azulretail/pos-backend/internal/history"
	"github.com/azulretail/pos-backend/pkg/db/models"
	"github.com/azulretail/pos-backend/pkg/enums"
	pkgerrors "github.com/azulretail/pos-backend/pkg/errors"
	"github.com/azulretail/pos-backend/pkg/types"
)

const (
	codePrefix      = "J"
	defaultMinStock = 5
)

type auditRecorder interface {
	Record(ctx context.Context, input history.RecordInput) error
}

type categoryFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Category, error)
}

// CreateProductInput captures the fields accepted at creation.
type CreateProductInput struct {
	Name            string
	Description     *string
	CategoryID      int64
	PurchasePrice   decimal.Decimal
	SalePrice       decimal.Decimal
	Stock           int
	MinStock        *int
	DiscountPercent *int
	Condition       *enums.ProductCondition
}

// UpdateProductInput captures the allowed partial update.
type UpdateProductInput struct {
	Name            *string
	Description     *string
	CategoryID      *int64
	PurchasePrice   *decimal.Decimal
	SalePrice       *decimal.Decimal
	Stock           *int
	MinStock        *int
	DiscountPercent *int
	Condition       *enums.ProductCondition
	IsActive        *bool
}

// Service exposes catalog operations.
type Service interface {
	Create(ctx context.Context, actorID int64, input CreateProductInput, meta types.RequestMeta) (*ProductDTO, error)
	List(ctx context.Context, filters ListFilters) ([]ProductDTO, error)
	GetByID(ctx context.Context, id int64) (*ProductDTO, error)
	GetByCode(ctx context.Context, code string) (*ProductDTO, error)
	Update(ctx context.Context, actorID, id int64, input UpdateProductInput, meta types.RequestMeta) (*ProductDTO, error)
	Delete(ctx context.Context, actorID, id int64, meta types.RequestMeta) error
	InventoryStatistics(ctx context.Context) (*InventoryStatsDTO, error)
}

type service struct {
	repo       Repository
	categories categoryFinder
	history    auditRecorder
}

// NewService builds a product service with the provided dependencies.
func NewService(repo Repository, categories categoryFinder, recorder auditRecorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if categories == nil {
		return nil, fmt.Errorf("categories repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{repo: repo, categories: categories, history: recorder}, nil
}

func (s *service) Create(ctx context.Context, actorID int64, input CreateProductInput, meta types.RequestMeta) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.PurchasePrice.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase price must be positive")
	}
	if input.SalePrice.LessThanOrEqual(input.PurchasePrice) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale price must be greater than purchase price")
	}
	if input.Stock < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial stock must be at least 1")
	}

	minStock := defaultMinStock
	if input.MinStock != nil {
		if *input.MinStock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum stock cannot be negative")
		}
		minStock = *input.MinStock
	}

	discount := 0
	if input.DiscountPercent != nil {
		if *input.DiscountPercent < 0 || *input.DiscountPercent > 100 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount must be between 0 and 100")
		}
		discount = *input.DiscountPercent
	}

	condition := enums.ProductConditionGood
	if input.Condition != nil {
		if !input.Condition.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid condition %q", *input.Condition))
		}
		condition = *input.Condition
	}

	if err := s.ensureCategoryUsable(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	code, err := s.nextCode(ctx)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Code:            code,
		Name:            name,
		Description:     input.Description,
		CategoryID:      input.CategoryID,
		PurchasePrice:   input.PurchasePrice,
		SalePrice:       input.SalePrice,
		Stock:           input.Stock,
		MinStock:        minStock,
		DiscountPercent: discount,
		Condition:       condition,
		IsActive:        true,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	if err := s.history.Record(ctx, history.RecordInput{
		UserID:      actorID,
		Action:      enums.AuditActionProductCreate,
		Description: fmt.Sprintf("Created product %s %q", product.Code, product.Name),
		Meta:        meta,
	}); err != nil {
		return nil, err
	}

	dto := toProductDTO(*product)
	return &dto, nil
}

func (s *service) List(ctx context.Context, filters ListFilters) ([]ProductDTO, error) {
	products, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	result := make([]ProductDTO, 0, len(products))
	for _, product := range products {
		result = append(result, toProductDTO(product))
	}
	return result, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*ProductDTO, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toProductDTO(*product)
	return &dto, nil
}

func (s *service) GetByCode(ctx context.Context, code string) (*ProductDTO, error) {
	product, err := s.repo.FindByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find product by code")
	}
	dto := toProductDTO(*product)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, actorID, id int64, input UpdateProductInput, meta types.RequestMeta) (*ProductDTO, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = input.Description
	}

	// Price ordering is checked against the persisted counterpart when only
	// one side changes.
	purchase := product.PurchasePrice
	sale := product.SalePrice
	if input.PurchasePrice != nil {
		purchase = *input.PurchasePrice
	}
	if input.SalePrice != nil {
		sale = *input.SalePrice
	}
	if input.PurchasePrice != nil || input.SalePrice != nil {
		if purchase.LessThanOrEqual(decimal.Zero) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase price must be positive")
		}
		if sale.LessThanOrEqual(purchase) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale price must be greater than purchase price")
		}
		product.PurchasePrice = purchase
		product.SalePrice = sale
	}

	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		product.Stock = *input.Stock
	}
	if input.MinStock != nil {
		if *input.MinStock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum stock cannot be negative")
		}
		product.MinStock = *input.MinStock
	}
	if input.DiscountPercent != nil {
		if *input.DiscountPercent < 0 || *input.DiscountPercent > 100 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount must be between 0 and 100")
		}
		product.DiscountPercent = *input.DiscountPercent
	}
	if input.Condition != nil {
		if !input.Condition.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid condition %q", *input.Condition))
		}
		product.Condition = *input.Condition
	}
	if input.CategoryID != nil && *input.CategoryID != product.CategoryID {
		if err := s.ensureCategoryUsable(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *input.CategoryID
		product.Category = nil
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	if err := s.history.Record(ctx, history.RecordInput{
		UserID:      actorID,
		Action:      enums.AuditActionProductUpdate,
		Description: fmt.Sprintf("Updated product %s %q", product.Code, product.Name),
		Meta:        meta,
	}); err != nil {
		return nil, err
	}

	dto := toProductDTO(*product)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, actorID, id int64, meta types.RequestMeta) error {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return err
	}
	if !product.IsActive {
		return pkgerrors.New(pkgerrors.CodeValidation, "product is already inactive")
	}

	product.IsActive = false
	if err := s.repo.Update(ctx, product); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate product")
	}

	return s.history.Record(ctx, history.RecordInput{
		UserID:      actorID,
		Action:      enums.AuditActionProductDelete,
		Description: fmt.Sprintf("Deleted product %s %q", product.Code, product.Name),
		Meta:        meta,
	})
}

func (s *service) InventoryStatistics(ctx context.Context) (*InventoryStatsDTO, error) {
	stats, err := s.repo.InventoryStats(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate inventory")
	}

	dto := &InventoryStatsDTO{
		ActiveProducts: stats.ActiveProducts,
		InventoryValue: stats.InventoryValue,
		LowStockCount:  stats.LowStockCount,
		OutOfStock:     stats.OutOfStock,
		ByCategory:     make([]CategoryValueDTO, 0, len(stats.ByCategory)),
	}
	for _, row := range stats.ByCategory {
		dto.ByCategory = append(dto.ByCategory, CategoryValueDTO(row))
	}
	return dto, nil
}

func (s *service) nextCode(ctx context.Context) (string, error) {
	next, err := s.repo.NextCodeNumber(ctx)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance product code counter")
	}
	return fmt.Sprintf("%s%04d", codePrefix, next), nil
}

func (s *service) findProduct(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find product")
	}
	return product, nil
}

func (s *service) ensureCategoryUsable(ctx context.Context, categoryID int64) error {
	category, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find category")
	}
	if !category.IsActive {
		return pkgerrors.New(pkgerrors.CodeValidation, "category is inactive")
	}
	return nil
}
