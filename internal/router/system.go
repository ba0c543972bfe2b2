package router

import (
	"net/http"

	"github.com/deppfellow/contosopizza/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers health and API documentation routes.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)

	r.StaticFS("/static", handler.StaticFS)
	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
	r.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusMovedPermanently, "/docs")
	})
}
