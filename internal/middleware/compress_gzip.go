package middleware

import (
	"net/http"

	"github.com/nanmu42/gzip"
)

// DefaultMinContentLength is the smallest response body worth compressing.
const DefaultMinContentLength = 256

// Gzip compresses responses for clients that accept gzip.
// Bodies shorter than minContentLength and already encoded
// responses are passed through as is.
func Gzip(minContentLength int64) func(next http.Handler) http.Handler {
	h := gzip.NewHandler(gzip.Config{
		CompressionLevel: gzip.DefaultCompression,
		MinContentLength: minContentLength,
		RequestFilter: []gzip.RequestFilter{
			gzip.NewCommonRequestFilter(),
			gzip.DefaultExtensionFilter(),
		},
		ResponseHeaderFilter: []gzip.ResponseHeaderFilter{
			gzip.NewSkipCompressedFilter(),
			gzip.DefaultContentTypeFilter(),
		},
	})
	return h.WrapHandler
}
