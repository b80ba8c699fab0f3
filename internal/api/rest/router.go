package rest

import (
	"net/http"

	"github.com/KretovDmitry/tinyurl/internal/logger"
	"github.com/KretovDmitry/tinyurl/internal/middleware"
	"github.com/KretovDmitry/tinyurl/pkg/accesslog"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Register mounts the API routes with their middleware on the router.
func (h *Handler) Register(r chi.Router, l logger.Logger) http.Handler {
	r.Use(
		chimiddleware.Recoverer,
		accesslog.Handler(l),
		middleware.Unzip(l),
		middleware.Gzip(middleware.DefaultMinContentLength),
	)

	r.Post("/", h.Shorten)
	r.Post("/api/shorten", h.ShortenJSON)
	r.Get("/ping", h.GetPingDB)
	r.Get("/{id}", h.Redirect)

	return r
}
