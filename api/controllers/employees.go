package controllers

import (
	"net/http"
	"strings"

	"github.com/azulretail/pos-backend/api/middleware"
	"github.com/azulretail/pos-backend/api/responses"
	"github.com/azulretail/pos-backend/api/validators"
	employeesvc "github.com/azulretail/pos-backend/internal/employees"
	salesvc "github.com/azulretail/pos-backend/internal/sales"
	"github.com/azulretail/pos-backend/pkg/enums"
	pkgerrors "github.com/azulretail/pos-backend/pkg/errors"
	"github.com/azulretail/pos-backend/pkg/logger"
)

type createEmployeeRequest struct {
	FirstName    string `json:"first_name" validate:"required"`
	LastName     string `json:"last_name" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
	Role         string `json:"role" validate:"required"`
	TempPassword string `json:"temp_password" validate:"required,min=6"`
}

// CreateEmployee provisions a staff account with a generated username.
func CreateEmployee(svc employeesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createEmployeeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role, err := enums.ParseRole(strings.TrimSpace(payload.Role))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
			return
		}

		employee, err := svc.Create(r.Context(), middleware.UserIDFromContext(r.Context()), employeesvc.CreateEmployeeInput{
			FirstName:    payload.FirstName,
			LastName:     payload.LastName,
			Phone:        payload.Phone,
			Role:         role,
			TempPassword: payload.TempPassword,
		}, requestMeta(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, employee)
	}
}

// ListEmployees returns the staff roster.
func ListEmployees(svc employeesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		includeInactive, err := validators.ParseQueryBool(r, "include_inactive")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		employees, err := svc.List(r.Context(), includeInactive != nil && *includeInactive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, employees)
	}
}

// GetEmployee returns one staff account by id.
func GetEmployee(svc employeesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		employee, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, employee)
	}
}

type updateEmployeeRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Role      *string `json:"role,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

// UpdateEmployee applies a partial staff account update.
func UpdateEmployee(svc employeesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateEmployeeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := employeesvc.UpdateEmployeeInput{
			FirstName: payload.FirstName,
			LastName:  payload.LastName,
			Phone:     payload.Phone,
			IsActive:  payload.IsActive,
		}
		if payload.Role != nil {
			role, err := enums.ParseRole(strings.TrimSpace(*payload.Role))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
				return
			}
			input.Role = &role
		}

		employee, err := svc.Update(r.Context(), middleware.UserIDFromContext(r.Context()), id, input, requestMeta(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, employee)
	}
}

// DeleteEmployee removes a staff account that owns no sales.
func DeleteEmployee(svc employeesvc.Service, logg *logger.Logger) http.HandlerFunc {
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

type updatePhotoRequest struct {
	PhotoURL string `json:"photo_url" validate:"required,url"`
}

// UpdateEmployeePhoto stores the employee's photo URL.
func UpdateEmployeePhoto(svc employeesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updatePhotoRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		employee, err := svc.UpdatePhoto(r.Context(), middleware.UserIDFromContext(r.Context()), id, payload.PhotoURL, requestMeta(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, employee)
	}
}

// ResetEmployeePassword issues a fresh temporary password.
func ResetEmployeePassword(svc employeesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tempPassword, err := svc.ResetPassword(r.Context(), middleware.UserIDFromContext(r.Context()), id, requestMeta(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"temp_password": tempPassword})
	}
}

// EmployeesSummary returns the staff roster aggregate.
func EmployeesSummary(svc employeesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Summary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}

// EmployeeStatistics returns the ledger summary for one employee.
func EmployeeStatistics(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stats, err := svc.EmployeeStatistics(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}

// MyStatistics returns the ledger summary for the calling employee.
func MyStatistics(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if userID == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		stats, err := svc.EmployeeStatistics(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}
