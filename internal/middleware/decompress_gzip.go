// Package middleware provides HTTP middleware of the REST API.
package middleware

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/KretovDmitry/tinyurl/internal/logger"
)

// compressReader implements ReadCloser interface
// and replaces Read method with a decompression one
type compressReader struct {
	r  io.ReadCloser
	zr *gzip.Reader
}

// newCompressReader creates a new compressReader instance.
// It takes an io.ReadCloser and returns a new compressReader
// with a new gzip.Reader.
func newCompressReader(r io.ReadCloser) (*compressReader, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("new gzip reader: %w", err)
	}

	return &compressReader{
		r:  r,
		zr: zr,
	}, nil
}

// Read reads decompressed data from the underlying gzip.Reader.
func (c *compressReader) Read(p []byte) (n int, err error) {
	return c.zr.Read(p)
}

// Close closes the underlying gzip.Reader and io.ReadCloser.
func (c *compressReader) Close() error {
	if err := c.r.Close(); err != nil {
		return fmt.Errorf("close failed: %w", err)
	}
	return c.zr.Close()
}

// Unzip decides whether or not to decompress request judging by content encoding.
// A body that is not valid gzip is rejected with 400 Bad Request.
func Unzip(l logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		f := func(w http.ResponseWriter, r *http.Request) {
			contentEncoding := r.Header.Get("Content-Encoding")
			if !strings.Contains(contentEncoding, "gzip") {
				next.ServeHTTP(w, r)
				return
			}

			cr, err := newCompressReader(r.Body)
			if err != nil {
				l.With(r.Context()).Debugf("new compress reader: %v", err)
				http.Error(w, "invalid gzip body", http.StatusBadRequest)
				return
			}
			r.Body = cr
			defer func() {
				if err = cr.Close(); err != nil {
					l.With(r.Context()).Errorf("close compress reader: %v", err)
				}
			}()

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(f)
	}
}
