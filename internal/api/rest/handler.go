// Package rest implements the HTTP API of the shortener.
package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/KretovDmitry/tinyurl/internal/config"
	"github.com/KretovDmitry/tinyurl/internal/errs"
	"github.com/KretovDmitry/tinyurl/internal/logger"
	"github.com/KretovDmitry/tinyurl/internal/models"
)

const (
	contentType     = "Content-Type"
	textPlain       = "text/plain; charset=utf-8"
	applicationJSON = "application/json"
)

// Shortener allocates and resolves short IDs.
type Shortener interface {
	Allocate(ctx context.Context, url models.OriginalURL) (models.ShortID, error)
	Resolve(ctx context.Context, id models.ShortID) (models.OriginalURL, error)
	Ping(ctx context.Context) error
}

// Handler serves the HTTP API.
type Handler struct {
	shortener Shortener
	baseURL   string
	logger    logger.Logger
}

// NewHandler constructs a new handler, ensuring that the dependencies are valid values.
func NewHandler(shortener Shortener, config *config.Config, logger logger.Logger) (*Handler, error) {
	if shortener == nil {
		return nil, fmt.Errorf("%w: shortener", errs.ErrNilDependency)
	}
	if config == nil {
		return nil, fmt.Errorf("%w: config", errs.ErrNilDependency)
	}
	if logger == nil {
		return nil, fmt.Errorf("%w: logger", errs.ErrNilDependency)
	}

	return &Handler{
		shortener: shortener,
		baseURL:   strings.TrimSuffix(config.Server.BaseURL, "/"),
		logger:    logger,
	}, nil
}

// shortURL joins the base URL and the id.
func (h *Handler) shortURL(id models.ShortID) string {
	return h.baseURL + "/" + string(id)
}

// statusFor maps a service error to the response status and
// a message safe to show to the caller.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errs.ErrInvalidRequest):
		return http.StatusBadRequest, "url is not provided"
	case errors.Is(err, errs.ErrAllocationExhausted):
		return http.StatusUnprocessableEntity, "failed to allocate short url, try again"
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, "short url not found"
	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
}

// textError writes a plain text error response.
// Errors are logged where they are detected, so nothing is logged here.
func (h *Handler) textError(w http.ResponseWriter, message string, code int) {
	http.Error(w, message, code)
}

// isContentType reports whether the media type of the header value is want.
func isContentType(value, want string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	if i := strings.Index(value, ";"); i > -1 {
		value = strings.TrimSpace(value[:i])
	}
	return value == want
}
