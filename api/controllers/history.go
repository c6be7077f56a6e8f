package controllers

import (
	"net/http"
	"strings"

	"github.com/azulretail/pos-backend/api/responses"
	"github.com/azulretail/pos-backend/api/validators"
	historysvc "github.com/azulretail/pos-backend/internal/history"
	"github.com/azulretail/pos-backend/pkg/enums"
	pkgerrors "github.com/azulretail/pos-backend/pkg/errors"
	"github.com/azulretail/pos-backend/pkg/logger"
)

// ListActionHistory returns the action log, optionally filtered.
func ListActionHistory(svc historysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters := historysvc.ListFilters{
			Search: strings.TrimSpace(r.URL.Query().Get("search")),
		}

		from, err := validators.ParseQueryDate(r, "date_from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.DateFrom = from

		to, err := validators.ParseQueryDate(r, "date_to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.DateTo = to

		userID, err := validators.ParseQueryInt64(r, "user_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.UserID = userID

		if raw := strings.TrimSpace(r.URL.Query().Get("action")); raw != "" {
			action, err := enums.ParseAuditAction(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid action"))
				return
			}
			filters.Action = &action
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 500)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.Limit = limit

		entries, err := svc.List(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, entries)
	}
}

// ActionHistoryTodayStats returns the same-day action log aggregate.
func ActionHistoryTodayStats(svc historysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.TodayStats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}
