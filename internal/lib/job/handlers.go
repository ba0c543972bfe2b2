package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/deppfellow/contosopizza/internal/lib/email"
	"github.com/hibiken/asynq"
)

// Mailer sends the order emails.
type Mailer interface {
	SendOrderConfirmationEmail(ctx context.Context, to string, data email.OrderConfirmation) error
	SendOrderFulfilledEmail(ctx context.Context, to string, data email.OrderFulfilled) error
}

func (j *JobService) handleOrderConfirmationTask(ctx context.Context, t *asynq.Task) error {
	var p OrderConfirmationPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal order confirmation payload: %w: %w", err, asynq.SkipRetry)
	}

	log := j.logger.With().
		Str("type", "order_confirmation").
		Int64("order_id", p.OrderID).
		Str("to", p.To).
		Logger()

	log.Info().Msg("Processing order confirmation email task")

	err := j.mailer.SendOrderConfirmationEmail(ctx, p.To, email.OrderConfirmation{
		CustomerName: p.CustomerName,
		OrderID:      p.OrderID,
		Placed:       p.Placed,
		Lines:        p.Lines,
		Total:        p.Total,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to send order confirmation email")
		return err
	}

	log.Info().Msg("Successfully sent order confirmation email")
	return nil
}

func (j *JobService) handleOrderFulfilledTask(ctx context.Context, t *asynq.Task) error {
	var p OrderFulfilledPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal order fulfilled payload: %w: %w", err, asynq.SkipRetry)
	}

	log := j.logger.With().
		Str("type", "order_fulfilled").
		Int64("order_id", p.OrderID).
		Str("to", p.To).
		Logger()

	err := j.mailer.SendOrderFulfilledEmail(ctx, p.To, email.OrderFulfilled{
		CustomerName: p.CustomerName,
		OrderID:      p.OrderID,
		Fulfilled:    p.Fulfilled,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to send order fulfilled email")
		return err
	}

	log.Info().Msg("Successfully sent order fulfilled email")
	return nil
}
