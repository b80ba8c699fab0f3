package rest

import (
	"net/http"

	"github.com/KretovDmitry/tinyurl/internal/models"
	"github.com/go-chi/chi/v5"
)

// Redirect serves a permanent redirect to the original URL.
//
// Request:
//
//	GET /{id}
//
// Response:
//
//	HTTP/1.1 308 Permanent Redirect
//	Location: https://example.com
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	id := models.ShortID(chi.URLParam(r, "id"))

	url, err := h.shortener.Resolve(r.Context(), id)
	if err != nil {
		code, message := statusFor(err)
		h.textError(w, message, code)
		return
	}

	// the stored url is sent as is, http.Redirect would rewrite relative ones
	w.Header().Set("Location", string(url))
	w.WriteHeader(http.StatusPermanentRedirect)
}
