package sales

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/azulretail/pos-backend/pkg/db/models"
	"github.com/azulretail/pos-backend/pkg/enums"
)

// SaleLineDTO is one product position of a sale.
type SaleLineDTO struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	ProductCode string          `json:"product_code,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleDTO is the API shape of a register transaction.
type SaleDTO struct {
	ID            int64               `json:"id"`
	EmployeeID    int64               `json:"employee_id"`
	EmployeeName  string              `json:"employee_name,omitempty"`
	Total         decimal.Decimal     `json:"total"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	SaleDate      string              `json:"sale_date"`
	SaleTime      string              `json:"sale_time"`
	Canceled      bool                `json:"canceled"`
	CancelReason  *string             `json:"cancel_reason,omitempty"`
	CanceledAt    *time.Time          `json:"canceled_at,omitempty"`
	Lines         []SaleLineDTO       `json:"lines"`
	CreatedAt     time.Time           `json:"created_at"`
}

// TopProductDTO is one row of the best-sellers ranking.
type TopProductDTO struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductCode string          `json:"product_code"`
	Quantity    int64           `json:"quantity"`
	Total       decimal.Decimal `json:"total"`
}

// EmployeeTotalDTO is one row of the per-employee breakdown.
type EmployeeTotalDTO struct {
	EmployeeID   int64           `json:"employee_id"`
	EmployeeName string          `json:"employee_name"`
	SalesCount   int64           `json:"sales_count"`
	Total        decimal.Decimal `json:"total"`
}

// StatisticsDTO aggregates non-canceled sales over a date range.
type StatisticsDTO struct {
	Total              decimal.Decimal    `json:"total"`
	SalesCount         int64              `json:"sales_count"`
	AverageSale        decimal.Decimal    `json:"average_sale"`
	CashTotal          decimal.Decimal    `json:"cash_total"`
	TransferTotal      decimal.Decimal    `json:"transfer_total"`
	CashPercentage     decimal.Decimal    `json:"cash_percentage"`
	TransferPercentage decimal.Decimal    `json:"transfer_percentage"`
	TopProducts        []TopProductDTO    `json:"top_products"`
	ByEmployee         []EmployeeTotalDTO `json:"by_employee"`
}

// EmployeeStatsDTO summarizes one employee's ledger activity.
type EmployeeStatsDTO struct {
	TodayCount      int64           `json:"today_count"`
	TodayTotal      decimal.Decimal `json:"today_total"`
	HistoricalTotal decimal.Decimal `json:"historical_total"`
	LastSaleAt      *time.Time      `json:"last_sale_at,omitempty"`
}

const dateLayout = "2006-01-02"

func toSaleDTO(sale models.Sale) SaleDTO {
	dto := SaleDTO{
		ID:            sale.ID,
		EmployeeID:    sale.EmployeeID,
		Total:         sale.Total,
		PaymentMethod: sale.PaymentMethod,
		SaleDate:      sale.SaleDate.Format(dateLayout),
		SaleTime:      sale.SaleTime,
		Canceled:      sale.Canceled,
		CancelReason:  sale.CancelReason,
		CanceledAt:    sale.CanceledAt,
		Lines:         make([]SaleLineDTO, 0, len(sale.Lines)),
		CreatedAt:     sale.CreatedAt,
	}
	if sale.Employee != nil {
		dto.EmployeeName = sale.Employee.FirstName + " " + sale.Employee.LastName
	}
	for _, line := range sale.Lines {
		lineDTO := SaleLineDTO{
			ID:        line.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  line.Subtotal,
		}
		if line.Product != nil {
			lineDTO.ProductName = line.Product.Name
			lineDTO.ProductCode = line.Product.Code
		}
		dto.Lines = append(dto.Lines, lineDTO)
	}
	return dto
}
