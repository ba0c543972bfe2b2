package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/deppfellow/contosopizza/internal/server"
)

// TracingMiddleware wires requests into New Relic. With the agent off
// (nrApp nil) both middlewares are no-ops.
type TracingMiddleware struct {
	server *server.Server
	nrApp  *newrelic.Application
}

func NewTracingMiddleware(s *server.Server, nrApp *newrelic.Application) *TracingMiddleware {
	return &TracingMiddleware{server: s, nrApp: nrApp}
}

func passthrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// NewRelicMiddleware starts one transaction per request.
func (tm *TracingMiddleware) NewRelicMiddleware() echo.MiddlewareFunc {
	if tm.nrApp == nil {
		return passthrough
	}
	return nrecho.Middleware(tm.nrApp)
}

// EnhanceTracing annotates the running transaction with the caller and
// result. Register it after NewRelicMiddleware.
func (tm *TracingMiddleware) EnhanceTracing() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			txn := newrelic.FromContext(c.Request().Context())
			if txn == nil {
				return next(c)
			}

			attrs := map[string]string{
				"http.real_ip":    c.RealIP(),
				"http.user_agent": c.Request().UserAgent(),
				"request.id":      GetRequestID(c),
				"user.id":         GetUserID(c),
			}
			for k, v := range attrs {
				if v != "" {
					txn.AddAttribute(k, v)
				}
			}

			err := next(c)
			if err != nil {
				txn.NoticeError(nrpkgerrors.Wrap(err))
			}
			txn.AddAttribute("http.status_code", c.Response().Status)
			return err
		}
	}
}
