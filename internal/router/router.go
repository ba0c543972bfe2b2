// Package router builds the Echo instance: global middleware, the error
// handler and every route of the API.
package router

import (
	"github.com/deppfellow/contosopizza/internal/handler"
	"github.com/deppfellow/contosopizza/internal/middleware"
	"github.com/deppfellow/contosopizza/internal/server"
	"github.com/deppfellow/contosopizza/internal/service"
	"github.com/labstack/echo/v4"
)

func NewRouter(s *server.Server, h *handler.Handlers, services *service.Services) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// RateLimiter must come after RequestID and EnhanceContext.
	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.RateLimit.RateLimiter(),
	)

	registerSystemRoutes(router, h)

	v1 := router.Group("/api/v1")
	registerCustomerRoutes(v1, h)
	registerProductRoutes(v1, h, middlewares.Auth)
	registerOrderRoutes(v1, h)

	return router
}
