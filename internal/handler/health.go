package handler

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/deppfellow/contosopizza/internal/middleware"
	"github.com/deppfellow/contosopizza/internal/server"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
)

// HealthHandler serves /status for load balancers and uptime monitors.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// dependency is one probed backend. A failing critical dependency makes the
// service unhealthy; any other failure only degrades it.
type dependency struct {
	name     string
	critical bool
	ping     func(ctx context.Context) error
}

func (h *HealthHandler) dependencies() []dependency {
	cfg := h.server.Config.Observability

	var deps []dependency
	if h.server.DB != nil && cfg.HasCheck("database") {
		deps = append(deps, dependency{name: "database", critical: true, ping: h.server.DB.Ping})
	}
	if h.server.Redis != nil && cfg.HasCheck("redis") {
		deps = append(deps, dependency{name: "redis", ping: func(ctx context.Context) error {
			return h.server.Redis.Ping(ctx).Err()
		}})
	}
	return deps
}

// CheckHealth probes the configured dependencies concurrently.
//
// It answers 200 when every dependency is up ("healthy") or only
// non-critical ones are down ("degraded"), and 503 when a critical one is
// down ("unhealthy").
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.server.Config.Observability.HealthChecks.Timeout)
	defer cancel()

	var (
		mu        sync.Mutex
		checks    = make(map[string]interface{})
		unhealthy bool
		degraded  bool
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, dep := range h.dependencies() {
		g.Go(func() error {
			depStart := time.Now()
			err := dep.ping(gctx)
			elapsed := time.Since(depStart)

			result := map[string]interface{}{
				"status":        "healthy",
				"response_time": elapsed.String(),
			}

			if err != nil {
				result["status"] = "unhealthy"
				result["error"] = err.Error()

				logger.Error().
					Err(err).
					Str("check", dep.name).
					Dur("response_time", elapsed).
					Msg("health check failed")

				h.recordHealthEvent(map[string]interface{}{
					"check_type":       dep.name,
					"operation":        "health_check",
					"error_type":       dep.name + "_unhealthy",
					"response_time_ms": elapsed.Milliseconds(),
					"error_message":    err.Error(),
				})
			} else {
				logger.Debug().
					Str("check", dep.name).
					Dur("response_time", elapsed).
					Msg("health check passed")
			}

			mu.Lock()
			defer mu.Unlock()
			checks[dep.name] = result
			if err != nil {
				if dep.critical {
					unhealthy = true
				} else {
					degraded = true
				}
			}
			// A failed probe must not cancel the others.
			return nil
		})
	}
	_ = g.Wait()

	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}
	if h.server.Cache != nil {
		response["cache"] = h.server.Cache.Stats()
	}

	status := http.StatusOK
	switch {
	case unhealthy:
		response["status"] = "unhealthy"
		status = http.StatusServiceUnavailable

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		h.recordHealthEvent(map[string]interface{}{
			"check_type":        "overall",
			"operation":         "health_check",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})
	case degraded:
		response["status"] = "degraded"
	}

	if err := c.JSON(status, response); err != nil {
		logger.Error().Err(err).Msg("failed to write JSON response")
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}

func (h *HealthHandler) recordHealthEvent(params map[string]interface{}) {
	if h.server.LoggerService != nil && h.server.LoggerService.GetApplication() != nil {
		h.server.LoggerService.GetApplication().RecordCustomEvent("HealthCheckError", params)
	}
}
