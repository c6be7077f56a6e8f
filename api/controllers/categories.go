package controllers

import (
	"net/http"

	"github.com/azulretail/pos-backend/api/middleware"
	"github.com/azulretail/pos-backend/api/responses"
	"github.com/azulretail/pos-backend/api/validators"
	categorysvc "github.com/azulretail/pos-backend/internal/categories"
	"github.com/azulretail/pos-backend/pkg/logger"
)

type createCategoryRequest struct {
	Name  string  `json:"name" validate:"required"`
	Emoji *string `json:"emoji,omitempty"`
}

// CreateCategory handles category creation.
func CreateCategory(svc categorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createCategoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.Create(r.Context(), middleware.UserIDFromContext(r.Context()), categorysvc.CreateCategoryInput{
			Name:  payload.Name,
			Emoji: payload.Emoji,
		}, requestMeta(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

// ListCategories returns the catalog categories.
func ListCategories(svc categorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		includeInactive, err := validators.ParseQueryBool(r, "include_inactive")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		categories, err := svc.List(r.Context(), includeInactive != nil && *includeInactive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, categories)
	}
}

// GetCategory returns one category by id.
func GetCategory(svc categorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, category)
	}
}

type updateCategoryRequest struct {
	Name     *string `json:"name,omitempty"`
	Emoji    *string `json:"emoji,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// UpdateCategory applies a partial category update.
func UpdateCategory(svc categorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCategoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.Update(r.Context(), middleware.UserIDFromContext(r.Context()), id, categorysvc.UpdateCategoryInput{
			Name:     payload.Name,
			Emoji:    payload.Emoji,
			IsActive: payload.IsActive,
		}, requestMeta(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, category)
	}
}

// DeleteCategory soft-deletes a category without active products.
func DeleteCategory(svc categorysvc.Service, logg *logger.Logger) http.HandlerFunc {
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
