package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/azulretail/pos-backend/api/middleware"
	"github.com/azulretail/pos-backend/api/responses"
	"github.com/azulretail/pos-backend/api/validators"
	salesvc "github.com/azulretail/pos-backend/internal/sales"
	"github.com/azulretail/pos-backend/pkg/enums"
	pkgerrors "github.com/azulretail/pos-backend/pkg/errors"
	"github.com/azulretail/pos-backend/pkg/logger"
)

type registerSaleLineRequest struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Quantity  int             `json:"quantity" validate:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"required"`
}

type registerSaleRequest struct {
	Lines         []registerSaleLineRequest `json:"lines" validate:"required,min=1,dive"`
	PaymentMethod string                    `json:"payment_method" validate:"required"`
}

// RegisterSale records a new register transaction for the calling employee.
func RegisterSale(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		employeeID := middleware.UserIDFromContext(r.Context())
		if employeeID == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload registerSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(strings.TrimSpace(payload.PaymentMethod))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		input := salesvc.RegisterInput{PaymentMethod: method}
		for _, line := range payload.Lines {
			input.Lines = append(input.Lines, salesvc.RegisterLine{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
			})
		}

		sale, err := svc.Register(r.Context(), employeeID, input, requestMeta(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, sale)
	}
}

// ListSales returns sales, optionally filtered.
func ListSales(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := saleFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sales, err := svc.List(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sales)
	}
}

func saleFilters(r *http.Request) (salesvc.ListFilters, error) {
	filters := salesvc.ListFilters{}

	from, err := validators.ParseQueryDate(r, "date_from")
	if err != nil {
		return filters, err
	}
	filters.DateFrom = from

	to, err := validators.ParseQueryDate(r, "date_to")
	if err != nil {
		return filters, err
	}
	filters.DateTo = to

	employeeID, err := validators.ParseQueryInt64(r, "employee_id")
	if err != nil {
		return filters, err
	}
	filters.EmployeeID = employeeID

	canceled, err := validators.ParseQueryBool(r, "canceled")
	if err != nil {
		return filters, err
	}
	filters.Canceled = canceled

	if raw := strings.TrimSpace(r.URL.Query().Get("payment_method")); raw != "" {
		method, err := enums.ParsePaymentMethod(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
		}
		filters.PaymentMethod = &method
	}

	return filters, nil
}

// GetSale returns one sale with its lines.
func GetSale(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sale)
	}
}

type cancelSaleRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// CancelSale voids a sale within the allowed window and restores stock.
func CancelSale(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cancelSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Cancel(r.Context(), middleware.UserIDFromContext(r.Context()), id, strings.TrimSpace(payload.Reason), requestMeta(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sale)
	}
}

// SalesStatistics returns the ledger aggregate for a date range.
func SalesStatistics(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, err := validators.ParseQueryDate(r, "date_from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryDate(r, "date_to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stats, err := svc.Statistics(r.Context(), from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}
