package httpmiddleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-faster/sdk/zctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWrap_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Wrap(okHandler(), mark("outer"), mark("inner"))
	serve(h, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestMakeRouteFinder(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("PATCH /api/cart/items/{index}", okHandler())
	mux.Handle("GET /api/catalog", okHandler())
	find := MakeRouteFinder(mux)

	route, ok := find(httptest.NewRequest(http.MethodPatch, "/api/cart/items/3", nil))
	require.True(t, ok)
	assert.Equal(t, "PATCH /api/cart/items/{index}", route)

	_, ok = find(httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.False(t, ok)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	w := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "trace-123")
	w = serve(h, req)
	assert.Equal(t, "trace-123", seen)
	assert.Equal(t, "trace-123", w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "bad\nid")
	serve(h, req)
	assert.NotEqual(t, "bad\nid", seen)
}

func TestLogRequests(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/catalog", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{}"))
	})
	mux.HandleFunc("POST /api/cart/items", func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusNotFound, "product not found")
	})
	find := MakeRouteFinder(mux)
	h := Wrap(mux, RequestID(), InjectLogger(zap.New(core)), LogRequests(find))

	serve(h, httptest.NewRequest(http.MethodGet, "/api/catalog", nil))
	serve(h, httptest.NewRequest(http.MethodPost, "/api/cart/items", nil))

	entries := logs.All()
	require.Len(t, entries, 2)

	ok := entries[0].ContextMap()
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "GET /api/catalog", ok["route"])
	assert.Equal(t, int64(http.StatusOK), ok["status"])
	assert.Equal(t, int64(2), ok["bytes"])
	assert.NotEmpty(t, ok["request_id"])

	notFound := entries[1].ContextMap()
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, int64(http.StatusNotFound), notFound["status"])
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := Recovery()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req = req.WithContext(zctx.Base(req.Context(), zap.New(core)))
	w := serve(h, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "close", w.Header().Get("Connection"))
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(500), body["code"])
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "boom", logs.All()[0].ContextMap()["panic"])
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		cfg         CORSConfig
		origin      string
		preflight   bool
		wantOrigin  string
		wantMethods string
		wantCreds   string
		wantStatus  int
	}{
		{
			name:       "wildcard",
			cfg:        CORSConfig{},
			origin:     "https://shop.example",
			wantOrigin: "*",
			wantStatus: http.StatusOK,
		},
		{
			name:       "listed origin echoed in configured case",
			cfg:        CORSConfig{AllowOrigins: []string{"https://Shop.Example"}},
			origin:     "https://shop.example",
			wantOrigin: "https://Shop.Example",
			wantStatus: http.StatusOK,
		},
		{
			name:       "unlisted origin",
			cfg:        CORSConfig{AllowOrigins: []string{"https://shop.example"}},
			origin:     "https://evil.example",
			wantStatus: http.StatusOK,
		},
		{
			name:       "wildcard never allows credentials",
			cfg:        CORSConfig{AllowOrigins: []string{"*"}, AllowCredentials: true},
			origin:     "https://evil.example",
			wantOrigin: "*",
			wantStatus: http.StatusOK,
		},
		{
			name:       "credentials for listed origin",
			cfg:        CORSConfig{AllowOrigins: []string{"https://shop.example"}, AllowCredentials: true},
			origin:     "https://shop.example",
			wantOrigin: "https://shop.example",
			wantCreds:  "true",
			wantStatus: http.StatusOK,
		},
		{
			name:       "no credentials for unlisted origin",
			cfg:        CORSConfig{AllowOrigins: []string{"https://shop.example"}, AllowCredentials: true},
			origin:     "https://evil.example",
			wantStatus: http.StatusOK,
		},
		{
			name:        "preflight default methods",
			cfg:         CORSConfig{MaxAge: 600},
			origin:      "https://shop.example",
			preflight:   true,
			wantOrigin:  "*",
			wantMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
			wantStatus:  http.StatusNoContent,
		},
		{
			name:       "preflight from unlisted origin",
			cfg:        CORSConfig{AllowOrigins: []string{"https://shop.example"}},
			origin:     "https://evil.example",
			preflight:  true,
			wantStatus: http.StatusNoContent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := CORS(tt.cfg)(okHandler())

			method := http.MethodGet
			if tt.preflight {
				method = http.MethodOptions
			}
			req := httptest.NewRequest(method, "/api/cart/items/0", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
			}
			w := serve(h, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantMethods, w.Header().Get("Access-Control-Allow-Methods"))
			assert.Equal(t, tt.wantCreds, w.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}
