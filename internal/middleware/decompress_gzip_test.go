package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/KretovDmitry/tinyurl/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var echo http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	_, _ = w.Write(body)
})

func TestUnzip(t *testing.T) {
	l, _ := logger.NewForTest()
	handler := Unzip(l)(echo)

	mockData := []byte("https://test.com")

	tests := []struct {
		contentEncoding string
		payload         []byte
	}{
		{
			contentEncoding: "gzip",
			payload:         compress(mockData),
		},
		{
			contentEncoding: "",
			payload:         mockData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.contentEncoding, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(tt.payload))
			w := httptest.NewRecorder()

			r.Header.Set("Content-Encoding", tt.contentEncoding)

			handler.ServeHTTP(w, r)

			result := w.Result()
			body, err := io.ReadAll(result.Body)
			require.NoError(t, err)
			require.NoError(t, result.Body.Close(), "failed close body")

			assert.Equal(t, http.StatusOK, result.StatusCode)
			assert.Equal(t, mockData, body)
		})
	}
}

func TestUnzip_InvalidBody(t *testing.T) {
	l, _ := logger.NewForTest()
	handler := Unzip(l)(echo)

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("not gzip"))
	r.Header.Set("Content-Encoding", "gzip")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)

	result := w.Result()
	require.NoError(t, result.Body.Close())
	assert.Equal(t, http.StatusBadRequest, result.StatusCode)
}

func TestGzip(t *testing.T) {
	payload := []byte(strings.Repeat("https://example.com/", 100))
	handler := Gzip(DefaultMinContentLength)(echo)

	t.Run("accepts gzip", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(payload))
		r.Header.Set("Accept-Encoding", "gzip")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		result := w.Result()
		defer result.Body.Close()
		require.Equal(t, "gzip", result.Header.Get("Content-Encoding"))

		zr, err := gzip.NewReader(result.Body)
		require.NoError(t, err)
		body, err := io.ReadAll(zr)
		require.NoError(t, err)
		assert.Equal(t, payload, body)
	})

	t.Run("short body is not compressed", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("short"))
		r.Header.Set("Accept-Encoding", "gzip")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		result := w.Result()
		body, err := io.ReadAll(result.Body)
		require.NoError(t, err)
		require.NoError(t, result.Body.Close())
		assert.Empty(t, result.Header.Get("Content-Encoding"))
		assert.Equal(t, "short", string(body))
	})
}

func compress(data []byte) []byte {
	var b bytes.Buffer
	gz := gzip.NewWriter(&b)
	_, err := gz.Write(data)
	if err != nil {
		log.Fatal(err)
	}
	err = gz.Close() // DO NOT DEFER HERE
	if err != nil {
		log.Fatal(err)
	}
	return b.Bytes()
}
