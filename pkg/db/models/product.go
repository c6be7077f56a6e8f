package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/azulretail/pos-backend/pkg/enums"
)

// Product is a stocked catalog item.
type Product struct {
	ID              int64                  `gorm:"column:id;primaryKey;autoIncrement"`
	Code            string                 `gorm:"column:code;not null;uniqueIndex"`
	Name            string                 `gorm:"column:name;not null"`
	Description     *string                `gorm:"column:description"`
	CategoryID      int64                  `gorm:"column:category_id;not null"`
	Category        *Category              `gorm:"foreignKey:CategoryID"`
	PurchasePrice   decimal.Decimal        `gorm:"column:purchase_price;type:numeric(10,2);not null"`
	SalePrice       decimal.Decimal        `gorm:"column:sale_price;type:numeric(10,2);not null"`
	Stock           int                    `gorm:"column:stock;not null"`
	MinStock        int                    `gorm:"column:min_stock;not null;default:5"`
	DiscountPercent int                    `gorm:"column:discount_percent;not null;default:0"`
	Condition       enums.ProductCondition `gorm:"column:condition;not null;default:good"`
	IsActive        bool                   `gorm:"column:is_active;not null;default:true"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default pluralization.
func (Product) TableName() string { return "products" }

// ProductCodeCounter is the single-row sequence behind generated product codes.
type ProductCodeCounter struct {
	ID         int64 `gorm:"column:id;primaryKey"`
	LastNumber int64 `gorm:"column:last_number;not null"`
}

// TableName overrides the default pluralization.
func (ProductCodeCounter) TableName() string { return "product_code_counter" }
