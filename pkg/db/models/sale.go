package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/azulretail/pos-backend/pkg/enums"
)

// Sale is one completed register transaction.
type Sale struct {
	ID            int64               `gorm:"column:id;primaryKey;autoIncrement"`
	EmployeeID    int64               `gorm:"column:employee_id;not null"`
	Employee      *User               `gorm:"foreignKey:EmployeeID"`
	Total         decimal.Decimal     `gorm:"column:total;type:numeric(10,2);not null"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;not null"`
	SaleDate      time.Time           `gorm:"column:sale_date;type:date;not null"`
	SaleTime      string              `gorm:"column:sale_time;not null"`
	Canceled      bool                `gorm:"column:canceled;not null;default:false"`
	CancelReason  *string             `gorm:"column:cancel_reason"`
	CanceledByID  *int64              `gorm:"column:canceled_by_id"`
	CanceledAt    *time.Time          `gorm:"column:canceled_at"`
	Lines         []SaleLine          `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default pluralization.
func (Sale) TableName() string { return "sales" }

// SaleLine is one product position inside a sale.
type SaleLine struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement"`
	SaleID    int64           `gorm:"column:sale_id;not null"`
	ProductID int64           `gorm:"column:product_id;not null"`
	Product   *Product        `gorm:"foreignKey:ProductID"`
	Quantity  int             `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	Subtotal  decimal.Decimal `gorm:"column:subtotal;type:numeric(10,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// TableName overrides the default pluralization.
func (SaleLine) TableName() string { return "sale_lines" }
