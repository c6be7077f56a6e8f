package products

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/azulretail/pos-backend/pkg/db/models"
	"github.com/azulretail/pos-backend/pkg/enums"
)

// ProductDTO is the API shape of a catalog item.
type ProductDTO struct {
	ID              int64                  `json:"id"`
	Code            string                 `json:"code"`
	Name            string                 `json:"name"`
	Description     *string                `json:"description,omitempty"`
	CategoryID      int64                  `json:"category_id"`
	CategoryName    string                 `json:"category_name,omitempty"`
	PurchasePrice   decimal.Decimal        `json:"purchase_price"`
	SalePrice       decimal.Decimal        `json:"sale_price"`
	Stock           int                    `json:"stock"`
	MinStock        int                    `json:"min_stock"`
	DiscountPercent int                    `json:"discount_percent"`
	Condition       enums.ProductCondition `json:"condition"`
	IsActive        bool                   `json:"is_active"`
	LowStock        bool                   `json:"low_stock"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// CategoryValueDTO is one per-category row of the inventory aggregate.
type CategoryValueDTO struct {
	CategoryID   int64           `json:"category_id"`
	CategoryName string          `json:"category_name"`
	ProductCount int64           `json:"product_count"`
	Value        decimal.Decimal `json:"value"`
}

// InventoryStatsDTO aggregates the active catalog.
type InventoryStatsDTO struct {
	ActiveProducts int64              `json:"active_products"`
	InventoryValue decimal.Decimal    `json:"inventory_value"`
	LowStockCount  int64              `json:"low_stock_count"`
	OutOfStock     int64              `json:"out_of_stock"`
	ByCategory     []CategoryValueDTO `json:"by_category"`
}

func toProductDTO(product models.Product) ProductDTO {
	dto := ProductDTO{
		ID:              product.ID,
		Code:            product.Code,
		Name:            product.Name,
		Description:     product.Description,
		CategoryID:      product.CategoryID,
		PurchasePrice:   product.PurchasePrice,
		SalePrice:       product.SalePrice,
		Stock:           product.Stock,
		MinStock:        product.MinStock,
		DiscountPercent: product.DiscountPercent,
		Condition:       product.Condition,
		IsActive:        product.IsActive,
		LowStock:        product.Stock > 0 && product.Stock < product.MinStock,
		CreatedAt:       product.CreatedAt,
		UpdatedAt:       product.UpdatedAt,
	}
	if product.Category != nil {
		dto.CategoryName = product.Category.Name
	}
	return dto
}
