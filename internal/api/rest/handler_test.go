package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/KretovDmitry/tinyurl/internal/config"
	"github.com/KretovDmitry/tinyurl/internal/errs"
	"github.com/KretovDmitry/tinyurl/internal/logger"
	"github.com/KretovDmitry/tinyurl/internal/models"
	"github.com/KretovDmitry/tinyurl/internal/repository"
	"github.com/KretovDmitry/tinyurl/internal/repository/memstore"
	"github.com/KretovDmitry/tinyurl/internal/shortener"
	"github.com/KretovDmitry/tinyurl/internal/shorturl"
	"github.com/KretovDmitry/tinyurl/mocks"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var errIntentionallyNotWorkingMethod = errors.New("intentionally not working method")

// fixedGenerator always returns the same id.
type fixedGenerator models.ShortID

func (g fixedGenerator) Generate() models.ShortID {
	return models.ShortID(g)
}


func newTestHandler(t *testing.T, store repository.URLStorage, gen shorturl.Generator) *Handler {
	t.Helper()

	l, _ := logger.NewForTest()
	c := config.NewForTest()

	if gen == nil {
		var err error
		gen, err = shorturl.NewNanoID(c.Shortener.Alphabet, c.Shortener.IDLength)
		require.NoError(t, err)
	}

	svc, err := shortener.NewService(store, gen, l, c.Shortener.MaxRetries)
	require.NoError(t, err)

	handler, err := NewHandler(svc, c, l)
	require.NoError(t, err, "failed to init handler")

	return handler
}

func newTestServer(t *testing.T, h *Handler) *httptest.Server {
	t.Helper()

	l, _ := logger.NewForTest()
	srv := httptest.NewServer(h.Register(chi.NewRouter(), l))
	t.Cleanup(srv.Close)

	return srv
}

func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestNewHandler(t *testing.T) {
	l, _ := logger.NewForTest()
	c := config.NewForTest()
	svc := newTestHandler(t, memstore.NewURLRepository(), nil).shortener

	_, err := NewHandler(nil, c, l)
	assert.ErrorIs(t, err, errs.ErrNilDependency)

	_, err = NewHandler(svc, nil, l)
	assert.ErrorIs(t, err, errs.ErrNilDependency)

	_, err = NewHandler(svc, c, nil)
	assert.ErrorIs(t, err, errs.ErrNilDependency)

	c.Server.BaseURL = "http://short.test/"
	h, err := NewHandler(svc, c, l)
	require.NoError(t, err)
	assert.Equal(t, "http://short.test/abc123", h.shortURL("abc123"))
}

func TestShortenJSON(t *testing.T) {
	type want struct {
		statusCode int
		errMessage string
	}

	tests := []struct {
		name string
		body string
		gen  shorturl.Generator
		seed *models.URL
		want want
	}{
		{
			name: "new record",
			body: `{"url": "https://x.test"}`,
			want: want{statusCode: http.StatusCreated},
		},
		{
			name: "empty url",
			body: `{"url": ""}`,
			want: want{statusCode: http.StatusBadRequest, errMessage: "url is not provided"},
		},
		{
			name: "invalid json",
			body: `{"url": `,
			want: want{statusCode: http.StatusBadRequest, errMessage: "failed to decode request"},
		},
		{
			name: "allocation exhausted",
			body: `{"url": "https://x.test"}`,
			gen:  fixedGenerator("abc123"),
			seed: models.NewRecord("abc123", "https://other.test"),
			want: want{
				statusCode: http.StatusUnprocessableEntity,
				errMessage: "failed to allocate short url, try again",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memstore.NewURLRepository()
			if tt.seed != nil {
				store.Restore(tt.seed)
			}
			handler := newTestHandler(t, store, tt.gen)

			r := httptest.NewRequest(http.MethodPost, "/api/shorten", strings.NewReader(tt.body))
			r.Header.Set(contentType, applicationJSON)
			w := httptest.NewRecorder()

			handler.ShortenJSON(w, r)

			res := w.Result()
			defer res.Body.Close()

			assert.Equal(t, tt.want.statusCode, res.StatusCode)
			assert.Equal(t, applicationJSON, res.Header.Get(contentType))

			if tt.want.errMessage != "" {
				var payload errorResponsePayload
				require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
				assert.Equal(t, tt.want.errMessage, payload.Error)
				return
			}

			var payload shortenResponsePayload
			require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
			require.True(t, strings.HasPrefix(payload.URL, config.DefaultBaseURL+"/"))

			id := strings.TrimPrefix(payload.URL, config.DefaultBaseURL+"/")
			assert.Len(t, id, config.DefaultIDLength)

			url, err := store.GetByID(context.Background(), models.ShortID(id))
			require.NoError(t, err)
			assert.Equal(t, models.OriginalURL("https://x.test"), url)
		})
	}
}

func TestShortenJSON_RepeatedRecord(t *testing.T) {
	store := memstore.NewURLRepository()
	handler := newTestHandler(t, store, nil)

	shorten := func() string {
		r := httptest.NewRequest(http.MethodPost, "/api/shorten",
			strings.NewReader(`{"url": "https://x.test"}`))
		r.Header.Set(contentType, applicationJSON)
		w := httptest.NewRecorder()

		handler.ShortenJSON(w, r)

		res := w.Result()
		defer res.Body.Close()
		require.Equal(t, http.StatusCreated, res.StatusCode)

		var payload shortenResponsePayload
		require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
		return payload.URL
	}

	assert.Equal(t, shorten(), shorten())
	assert.Equal(t, 1, store.Count())
}

func TestShortenJSON_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	m := mocks.NewMockURLStorage(ctrl)
	m.EXPECT().
		InsertOrGet(gomock.Any(), gomock.Any(), models.OriginalURL("https://x.test")).
		Times(1).
		Return(models.InsertResult{}, errIntentionallyNotWorkingMethod)

	handler := newTestHandler(t, m, nil)

	r := httptest.NewRequest(http.MethodPost, "/api/shorten", strings.NewReader(`{"url":"https://x.test"}`))
	r.Header.Set(contentType, applicationJSON)
	w := httptest.NewRecorder()

	handler.ShortenJSON(w, r)

	res := w.Result()
	defer res.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	// store internals never reach the caller
	assert.NotContains(t, string(body), errIntentionallyNotWorkingMethod.Error())
}

func TestShortenText(t *testing.T) {
	store := memstore.NewURLRepository()
	handler := newTestHandler(t, store, fixedGenerator("abc123"))

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("https://x.test\n"))
	r.Header.Set(contentType, "text/plain")
	w := httptest.NewRecorder()

	handler.Shorten(w, r)

	res := w.Result()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.NoError(t, res.Body.Close(), "failed close body")

	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, textPlain, res.Header.Get(contentType))
	assert.Equal(t, config.DefaultBaseURL+"/abc123", string(body))
}

func TestShortenText_EmptyBody(t *testing.T) {
	handler := newTestHandler(t, memstore.NewURLRepository(), nil)

	r := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
	r.Header.Set(contentType, textPlain)
	w := httptest.NewRecorder()

	handler.Shorten(w, r)

	res := w.Result()
	require.NoError(t, res.Body.Close())
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestRedirect(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	broken := mocks.NewMockURLStorage(ctrl)
	broken.EXPECT().
		GetByID(gomock.Any(), models.ShortID("abc123")).
		Return(models.OriginalURL(""), errIntentionallyNotWorkingMethod)

	seeded := memstore.NewURLRepository()
	seeded.Restore(models.NewRecord("abc123", "https://example.com/path?q=1"))

	tests := []struct {
		name       string
		store      repository.URLStorage
		id         string
		statusCode int
		location   string
	}{
		{
			name:       "found",
			store:      seeded,
			id:         "abc123",
			statusCode: http.StatusPermanentRedirect,
			location:   "https://example.com/path?q=1",
		},
		{
			name:       "not found",
			store:      seeded,
			id:         "zzzzzz",
			statusCode: http.StatusNotFound,
		},
		{
			name:       "store failure",
			store:      broken,
			id:         "abc123",
			statusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, newTestHandler(t, tt.store, nil))

			res, err := noRedirectClient().Get(srv.URL + "/" + tt.id)
			require.NoError(t, err)
			require.NoError(t, res.Body.Close())

			assert.Equal(t, tt.statusCode, res.StatusCode)
			assert.Equal(t, tt.location, res.Header.Get("Location"))
		})
	}
}

func TestGetPingDB(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	broken := mocks.NewMockURLStorage(ctrl)
	broken.EXPECT().Ping(gomock.Any()).Return(errIntentionallyNotWorkingMethod)

	closed := mocks.NewMockURLStorage(ctrl)
	closed.EXPECT().Ping(gomock.Any()).Return(errs.ErrDBNotConnected)

	tests := []struct {
		name       string
		store      repository.URLStorage
		statusCode int
		response   string
	}{
		{
			name:       "connected",
			store:      memstore.NewURLRepository(),
			statusCode: http.StatusOK,
		},
		{
			name:       "DB not connected",
			store:      closed,
			statusCode: http.StatusInternalServerError,
			response:   "DB not connected\n",
		},
		{
			name:       "connection error",
			store:      broken,
			statusCode: http.StatusInternalServerError,
			response:   "connection error\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(t, tt.store, nil)

			r := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
			w := httptest.NewRecorder()

			handler.GetPingDB(w, r)

			res := w.Result()
			body, err := io.ReadAll(res.Body)
			require.NoError(t, err)
			require.NoError(t, res.Body.Close(), "failed close body")

			assert.Equal(t, tt.statusCode, res.StatusCode)
			assert.Equal(t, tt.response, string(body))
		})
	}
}

func TestRouter_RoundTrip(t *testing.T) {
	srv := newTestServer(t, newTestHandler(t, memstore.NewURLRepository(), nil))
	client := noRedirectClient()

	res, err := client.Post(srv.URL+"/", applicationJSON, strings.NewReader(`{"url":"https://x.test"}`))
	require.NoError(t, err)

	var payload shortenResponsePayload
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	require.NoError(t, res.Body.Close())
	require.Equal(t, http.StatusCreated, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))

	id := payload.URL[strings.LastIndex(payload.URL, "/")+1:]

	res, err = client.Get(srv.URL + "/" + id)
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())

	assert.Equal(t, http.StatusPermanentRedirect, res.StatusCode)
	assert.Equal(t, "https://x.test", res.Header.Get("Location"))
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, newTestHandler(t, memstore.NewURLRepository(), nil))

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/abc123", http.NoBody)
	require.NoError(t, err)

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())

	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}
