package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/azulretail/pos-backend/api/middleware"
	"github.com/azulretail/pos-backend/api/responses"
	"github.com/azulretail/pos-backend/api/validators"
	productsvc "github.com/azulretail/pos-backend/internal/products"
	"github.com/azulretail/pos-backend/pkg/enums"
	pkgerrors "github.com/azulretail/pos-backend/pkg/errors"
	"github.com/azulretail/pos-backend/pkg/logger"
)

type createProductRequest struct {
	Name            string          `json:"name" validate:"required"`
	Description     *string         `json:"description,omitempty"`
	CategoryID      int64           `json:"category_id" validate:"required,gt=0"`
	PurchasePrice   decimal.Decimal `json:"purchase_price" validate:"required"`
	SalePrice       decimal.Decimal `json:"sale_price" validate:"required"`
	Stock           int             `json:"stock" validate:"required,gte=1"`
	MinStock        *int            `json:"min_stock,omitempty" validate:"omitempty,gte=0"`
	DiscountPercent *int            `json:"discount_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	Condition       *string         `json:"condition,omitempty"`
}

func (req createProductRequest) toCreateInput() (productsvc.CreateProductInput, error) {
	input := productsvc.CreateProductInput{
		Name:            req.Name,
		Description:     req.Description,
		CategoryID:      req.CategoryID,
		PurchasePrice:   req.PurchasePrice,
		SalePrice:       req.SalePrice,
		Stock:           req.Stock,
		MinStock:        req.MinStock,
		DiscountPercent: req.DiscountPercent,
	}
	if req.Condition != nil {
		condition, err := enums.ParseProductCondition(strings.TrimSpace(*req.Condition))
		if err != nil {
			return productsvc.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid condition")
		}
		input.Condition = &condition
	}
	return input, nil
}

// CreateProduct handles product creation.
func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), middleware.UserIDFromContext(r.Context()), input, requestMeta(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// ListProducts returns the catalog, optionally filtered.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := productFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := svc.List(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, products)
	}
}

func productFilters(r *http.Request) (productsvc.ListFilters, error) {
	filters := productsvc.ListFilters{
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
	}

	categoryID, err := validators.ParseQueryInt64(r, "category_id")
	if err != nil {
		return filters, err
	}
	filters.CategoryID = categoryID

	active, err := validators.ParseQueryBool(r, "active")
	if err != nil {
		return filters, err
	}
	filters.Active = active

	lowStock, err := validators.ParseQueryBool(r, "low_stock")
	if err != nil {
		return filters, err
	}
	filters.LowStock = lowStock != nil && *lowStock

	if raw := strings.TrimSpace(r.URL.Query().Get("condition")); raw != "" {
		condition, err := enums.ParseProductCondition(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid condition")
		}
		filters.Condition = &condition
	}

	return filters, nil
}

// GetProduct returns one product by id.
func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// GetProductByCode returns one product by its generated code.
func GetProductByCode(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := strings.TrimSpace(chi.URLParam(r, "code"))
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product code is required"))
			return
		}

		product, err := svc.GetByCode(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

type updateProductRequest struct {
	Name            *string          `json:"name,omitempty"`
	Description     *string          `json:"description,omitempty"`
	CategoryID      *int64           `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	PurchasePrice   *decimal.Decimal `json:"purchase_price,omitempty"`
	SalePrice       *decimal.Decimal `json:"sale_price,omitempty"`
	Stock           *int             `json:"stock,omitempty" validate:"omitempty,gte=0"`
	MinStock        *int             `json:"min_stock,omitempty" validate:"omitempty,gte=0"`
	DiscountPercent *int             `json:"discount_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	Condition       *string          `json:"condition,omitempty"`
	IsActive        *bool            `json:"is_active,omitempty"`
}

// UpdateProduct applies a partial product update.
func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := productsvc.UpdateProductInput{
			Name:            payload.Name,
			Description:     payload.Description,
			CategoryID:      payload.CategoryID,
			PurchasePrice:   payload.PurchasePrice,
			SalePrice:       payload.SalePrice,
			Stock:           payload.Stock,
			MinStock:        payload.MinStock,
			DiscountPercent: payload.DiscountPercent,
			IsActive:        payload.IsActive,
		}
		if payload.Condition != nil {
			condition, err := enums.ParseProductCondition(strings.TrimSpace(*payload.Condition))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid condition"))
				return
			}
			input.Condition = &condition
		}

		product, err := svc.Update(r.Context(), middleware.UserIDFromContext(r.Context()), id, input, requestMeta(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// DeleteProduct soft-deletes a product.
func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), middleware.UserIDFromContext(r.Context()), id, requestMeta(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// InventoryStatistics returns the inventory aggregate.
func InventoryStatistics(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.InventoryStatistics(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}
