// Package job provides background job processing using Asynq.
//
// Asynq is a Redis-backed job queue: tasks are enqueued through an
// asynq.Client and processed by the workers of an asynq.Server.
package job

import (
	"context"
	"fmt"

	"github.com/deppfellow/contosopizza/internal/config"
	"github.com/deppfellow/contosopizza/internal/lib/email"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Enqueuer puts tasks on a queue. *asynq.Client satisfies it.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// JobService holds the Asynq client (enqueue) and server (worker execution).
type JobService struct {
	Client Enqueuer

	server *asynq.Server
	mailer Mailer
	logger *zerolog.Logger
}

// RedisOpt converts the redis config into asynq connection options.
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// NewJobService creates a JobService configured to use Redis from cfg.
//
// Queue weights give "critical" tasks (order confirmations) the larger
// share of the 10 workers.
func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := RedisOpt(cfg.Redis)

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			Logger: newAsynqLogger(logger),
		},
	)

	return &JobService{
		Client: asynq.NewClient(redisOpt),
		server: server,
		mailer: email.NewClient(cfg, logger),
		logger: logger,
	}
}

// NewMux routes task types to their handlers.
func (j *JobService) NewMux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskOrderConfirmation, j.handleOrderConfirmationTask)
	mux.HandleFunc(TaskOrderFulfilled, j.handleOrderFulfilledTask)
	return mux
}

// Start starts the worker server in the background.
func (j *JobService) Start() error {
	j.logger.Info().Msg("Starting background job server")

	if err := j.server.Start(j.NewMux()); err != nil {
		return fmt.Errorf("failed to start job server: %w", err)
	}
	return nil
}

// Stop gracefully stops the job server and closes the enqueue client.
func (j *JobService) Stop() {
	j.logger.Info().Msg("Stopping background job server")
	j.server.Shutdown()
	if c, ok := j.Client.(*asynq.Client); ok {
		if err := c.Close(); err != nil {
			j.logger.Error().Err(err).Msg("failed to close job client")
		}
	}
}

// EnqueueOrderConfirmation queues the confirmation email of a placed order.
func (j *JobService) EnqueueOrderConfirmation(ctx context.Context, p OrderConfirmationPayload) error {
	task, err := NewOrderConfirmationTask(p)
	if err != nil {
		return fmt.Errorf("failed to create order confirmation task: %w", err)
	}
	return j.enqueue(ctx, task, p.OrderID)
}

// EnqueueOrderFulfilled queues the fulfilled notification of an order.
func (j *JobService) EnqueueOrderFulfilled(ctx context.Context, p OrderFulfilledPayload) error {
	task, err := NewOrderFulfilledTask(p)
	if err != nil {
		return fmt.Errorf("failed to create order fulfilled task: %w", err)
	}
	return j.enqueue(ctx, task, p.OrderID)
}

func (j *JobService) enqueue(ctx context.Context, task *asynq.Task, orderID int64) error {
	info, err := j.Client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", task.Type(), err)
	}

	j.logger.Debug().
		Str("task_id", info.ID).
		Str("type", task.Type()).
		Str("queue", info.Queue).
		Int64("order_id", orderID).
		Msg("task enqueued")
	return nil
}
