package controllers

import (
	"net/http"

	"github.com/azulretail/pos-backend/api/responses"
	"github.com/azulretail/pos-backend/pkg/db"
	pkgerrors "github.com/azulretail/pos-backend/pkg/errors"
	"github.com/azulretail/pos-backend/pkg/logger"
)

// Live reports process liveness.
func Live() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// Ready reports readiness by pinging the datasources.
func Ready(pingers map[string]db.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for name, pinger := range pingers {
			if pinger == nil {
				continue
			}
			if err := pinger.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
