package rest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/KretovDmitry/tinyurl/internal/models"
)

// maxBodySize limits the size of a shorten request body.
const maxBodySize = 1 << 20

type (
	shortenRequestPayload struct {
		URL string `json:"url"`
	}

	shortenResponsePayload struct {
		URL string `json:"url"`
	}

	errorResponsePayload struct {
		Error string `json:"error"`
	}
)

// Shorten serves both forms of the shorten request
// judging by the request content type.
//
// Request:
//
//	POST /
func (h *Handler) Shorten(w http.ResponseWriter, r *http.Request) {
	if isContentType(r.Header.Get(contentType), "text/plain") {
		h.ShortenText(w, r)
		return
	}
	h.ShortenJSON(w, r)
}

// ShortenJSON handles the shortening of a long URL.
// Repeated requests with the same URL return the same short URL.
//
// Request:
//
//	POST /api/shorten
//	Content-Type: application/json
//	{
//	    "url": "https://example.com"
//	}
//
// Response:
//
//	HTTP/1.1 201 Created
//	Content-Type: application/json
//	{
//	    "url": "http://localhost:8080/Ab3_x9"
//	}
func (h *Handler) ShortenJSON(w http.ResponseWriter, r *http.Request) {
	var payload shortenRequestPayload
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&payload); err != nil {
		h.jsonError(w, "failed to decode request", http.StatusBadRequest)
		return
	}

	id, err := h.shortener.Allocate(r.Context(), models.OriginalURL(payload.URL))
	if err != nil {
		code, message := statusFor(err)
		h.jsonError(w, message, code)
		return
	}

	w.Header().Set(contentType, applicationJSON)
	w.WriteHeader(http.StatusCreated)

	if err = json.NewEncoder(w).Encode(shortenResponsePayload{URL: h.shortURL(id)}); err != nil {
		h.logger.With(r.Context()).Errorf("failed to encode response: %v", err)
	}
}

// ShortenText handles the shortening of a long URL sent as plain text.
//
// Request:
//
//	POST /
//	Content-Type: text/plain
//	https://example.com
//
// Response:
//
//	HTTP/1.1 201 Created
//	Content-Type: text/plain; charset=utf-8
//	http://localhost:8080/Ab3_x9
func (h *Handler) ShortenText(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		h.textError(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	id, err := h.shortener.Allocate(r.Context(), models.OriginalURL(strings.TrimSpace(string(body))))
	if err != nil {
		code, message := statusFor(err)
		h.textError(w, message, code)
		return
	}

	w.Header().Set(contentType, textPlain)
	w.WriteHeader(http.StatusCreated)

	if _, err = fmt.Fprint(w, h.shortURL(id)); err != nil {
		h.logger.With(r.Context()).Errorf("failed to write response: %v", err)
	}
}

// jsonError writes an error response encoded as JSON.
func (h *Handler) jsonError(w http.ResponseWriter, message string, code int) {
	w.Header().Set(contentType, applicationJSON)
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(errorResponsePayload{Error: message}); err != nil {
		h.logger.Errorf("failed to encode response: %v", err)
	}
}
