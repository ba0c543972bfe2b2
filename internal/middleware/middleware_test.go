package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/contosopizza/internal/config"
	"github.com/deppfellow/contosopizza/internal/errs"
	"github.com/deppfellow/contosopizza/internal/server"
)

func newTestServer(rateLimit float64, burst int) *server.Server {
	logger := zerolog.Nop()
	return &server.Server{
		Config: &config.Config{
			Server: config.ServerConfig{
				RateLimit:      rateLimit,
				RateLimitBurst: burst,
			},
			Observability: config.DefaultObservabilityConfig(),
		},
		Logger: &logger,
	}
}

func newTestEcho(s *server.Server) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = NewGlobalMiddlewares(s).GlobalErrorHandler
	e.Use(RequestID(), NewRateLimitMiddleware(s).RateLimiter())

	ok := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	e.GET("/status", ok)
	e.GET("/api/v1/products", ok)
	return e
}

func serve(e *echo.Echo, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
		msg    string
	}{
		{"http error", errs.NewConflictError("taken", true), http.StatusConflict, "CONFLICT", "taken"},
		{"unknown route", echo.ErrNotFound, http.StatusNotFound, "NOT_FOUND", "Route not found"},
		{"echo error", echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method Not Allowed"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalize(tt.err)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.msg, got.Message)
		})
	}
}

func TestGlobalErrorHandler_WritesBody(t *testing.T) {
	s := newTestServer(0, 0)
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewGlobalMiddlewares(s).GlobalErrorHandler(errs.NewBadRequestError("bad", true, nil, []errs.FieldError{{Field: "name", Error: "is required"}}, nil), c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "BAD_REQUEST", body.Code)
	assert.True(t, body.Override)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "name", body.Errors[0].Field)
}

func TestRequestID(t *testing.T) {
	e := newTestEcho(newTestServer(0, 0))

	rec := serve(e, "/status", http.Header{RequestIDHeader: {"abc-123"}})
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	rec = serve(e, "/status", nil)
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}

func TestRateLimiter_RejectsOverBurst(t *testing.T) {
	e := newTestEcho(newTestServer(0.001, 2))

	assert.Equal(t, http.StatusOK, serve(e, "/api/v1/products", nil).Code)
	assert.Equal(t, http.StatusOK, serve(e, "/api/v1/products", nil).Code)

	rec := serve(e, "/api/v1/products", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "TOO_MANY_REQUESTS", body.Code)

	// Other clients keep their own bucket.
	assert.Equal(t, http.StatusOK, serve(e, "/api/v1/products", http.Header{"X-Real-Ip": {"198.51.100.7"}}).Code)
}

func TestRateLimiter_StatusExempt(t *testing.T) {
	e := newTestEcho(newTestServer(0.001, 1))

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(e, "/status", nil).Code)
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	e := newTestEcho(newTestServer(0, 0))

	for i := 0; i < 50; i++ {
		require.Equal(t, http.StatusOK, serve(e, "/api/v1/products", nil).Code)
	}
}

func TestGetLogger_DefaultsToNop(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	logger := GetLogger(c)
	require.NotNil(t, logger)
	assert.Equal(t, zerolog.Disabled, logger.GetLevel())
}

func TestEnhanceContext_StoresLogger(t *testing.T) {
	s := newTestServer(0, 0)
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(UserIDKey, "user_1")

	err := NewContextEnhancer(s).EnhanceContext()(func(c echo.Context) error {
		assert.Equal(t, "user_1", GetUserID(c))
		assert.NotNil(t, c.Get(LoggerKey))
		assert.NotNil(t, zerolog.Ctx(c.Request().Context()))
		return nil
	})(c)
	require.NoError(t, err)
}
