package rest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/KretovDmitry/tinyurl/internal/config"
	"github.com/KretovDmitry/tinyurl/internal/logger"
	"github.com/KretovDmitry/tinyurl/internal/repository/memstore"
	"github.com/KretovDmitry/tinyurl/internal/shortener"
)

func Example() {
	// Init handler.
	l, _ := logger.NewForTest()
	svc, _ := shortener.NewService(memstore.NewURLRepository(), fixedGenerator("Ab3_x9"), l, 3)
	handler, _ := NewHandler(svc, config.NewForTest(), l)

	// Prepare request and recorder.
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("https://go.dev/"))
	r.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()

	// Make request.
	handler.Shorten(w, r)

	// Get results.
	res := w.Result()
	b, _ := io.ReadAll(res.Body)
	_ = res.Body.Close()

	fmt.Println(res.StatusCode)
	fmt.Println(string(b))

	// Output:
	// 201
	// http://localhost:8080/Ab3_x9
}
