package rest

import (
	"errors"
	"net/http"

	"github.com/KretovDmitry/tinyurl/internal/errs"
)

// GetPingDB checks the status of the storage connection.
//
// Request:
//
//	GET /ping
func (h *Handler) GetPingDB(w http.ResponseWriter, r *http.Request) {
	if err := h.shortener.Ping(r.Context()); err != nil {
		if errors.Is(err, errs.ErrDBNotConnected) {
			h.textError(w, "DB not connected", http.StatusInternalServerError)
			return
		}
		h.logger.With(r.Context()).Errorf("ping: %v", err)
		h.textError(w, "connection error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
