// Package server holds the process-wide resources of the pizza service and
// the HTTP listener in front of them.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/deppfellow/contosopizza/internal/config"
	"github.com/deppfellow/contosopizza/internal/database"
	"github.com/deppfellow/contosopizza/internal/lib/cache"
	"github.com/deppfellow/contosopizza/internal/lib/job"
	loggerPkg "github.com/deppfellow/contosopizza/internal/logger"
)

const redisPingTimeout = 5 * time.Second

// Server carries the shared dependencies handed to repositories, services
// and handlers. Any of Redis, Cache or Job may be nil in tests.
type Server struct {
	Config        *config.Config
	Logger        *zerolog.Logger
	LoggerService *loggerPkg.LoggerService

	DB    *database.Database
	Redis *redis.Client
	Cache *cache.ProductCache
	Job   *job.JobService

	httpServer *http.Server
}

// NewRedisClient builds the client used by the catalog cache and health
// check, instrumented when New Relic is on.
func NewRedisClient(cfg config.RedisConfig, loggerService *loggerPkg.LoggerService) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if loggerService.GetApplication() != nil {
		client.AddHook(nrredis.NewHook(client.Options()))
	}
	return client
}

// New connects to Postgres and Redis and starts the job workers.
//
// Postgres and the workers are required. Redis is not: without it the
// catalog cache misses and /status reports degraded.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	db, err := database.New(cfg, logger, loggerService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb := NewRedisClient(cfg.Redis, loggerService)
	pingCtx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Redis.Address).Msg("redis unreachable, catalog cache disabled until it recovers")
	}

	jobs := job.NewJobService(logger, cfg)
	if err := jobs.Start(); err != nil {
		_ = rdb.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to start job server: %w", err)
	}

	ttl := time.Duration(cfg.Redis.CacheTTL) * time.Second
	return &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		DB:            db,
		Redis:         rdb,
		Cache:         cache.NewProductCache(rdb, logger, ttl),
		Job:           jobs,
	}, nil
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// SetupHTTPServer installs handler behind a listener on the configured port.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	sc := s.Config.Server
	s.httpServer = &http.Server{
		Addr:         ":" + sc.Port,
		Handler:      handler,
		ReadTimeout:  seconds(sc.ReadTimeout),
		WriteTimeout: seconds(sc.WriteTimeout),
		IdleTimeout:  seconds(sc.IdleTimeout),
	}
}

// Start serves HTTP until Shutdown; it then returns http.ErrServerClosed.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("addr", s.httpServer.Addr).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown drains HTTP requests until ctx is done, then stops the workers
// and closes Redis and the pool. Every step runs even when an earlier one
// failed; the failures are joined.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown HTTP server: %w", err))
		}
	}

	if s.Job != nil {
		s.Job.Stop()
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis client: %w", err))
		}
	}
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database connection: %w", err))
		}
	}
	return errors.Join(errs...)
}
