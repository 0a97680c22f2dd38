// Package handlers exposes the JSON API over the services and the ledger.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/diewo77/go-inventory/auth"
	"github.com/diewo77/go-inventory/httpx"
	"github.com/diewo77/go-inventory/internal/policy"
	"github.com/diewo77/go-inventory/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	msgInvalidBody = "Invalid request body"
	msgInvalidID   = "Invalid ID"
	msgInternal    = "Internal server error"
)

// writeError maps service errors to status codes. Unknown errors are logged
// and reported as 500 without detail.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	var (
		ve *services.ValidationError
		ce *services.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		var details any
		if len(ve.Fields) > 0 {
			details = ve.Fields
		}
		httpx.JSONError(w, http.StatusBadRequest, ve.Message, details)
	case errors.Is(err, services.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, err.Error(), nil)
	case errors.As(err, &ce):
		httpx.JSONError(w, http.StatusConflict, ce.Message, nil)
	default:
		log.Error("request failed", zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, msgInternal, nil)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, ok := httpx.PathUint(chi.URLParam(r, "id"))
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, msgInvalidID, nil)
	}
	return id, ok
}

func currentUser(ctx context.Context) uint {
	id, _ := auth.UserIDFromContext(ctx)
	return id
}

func viewerOf(ctx context.Context, ag *policy.AuthGate) services.Viewer {
	id := currentUser(ctx)
	return services.Viewer{UserID: id, Admin: ag.IsAdmin(ctx, id)}
}
