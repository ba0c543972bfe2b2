package job

import (
	"encoding/json"
	"time"

	"github.com/deppfellow/contosopizza/internal/lib/email"
	"github.com/hibiken/asynq"
)

const (
	// TaskOrderConfirmation is the job type name stored in Redis.
	TaskOrderConfirmation = "email:order_confirmation"
	// TaskOrderFulfilled notifies the customer that the order left the kitchen.
	TaskOrderFulfilled = "email:order_fulfilled"
)

// OrderConfirmationPayload is the JSON payload of TaskOrderConfirmation.
type OrderConfirmationPayload struct {
	To           string            `json:"to"`
	CustomerName string            `json:"customer_name"`
	OrderID      int64             `json:"order_id"`
	Placed       time.Time         `json:"placed"`
	Lines        []email.OrderLine `json:"lines"`
	Total        string            `json:"total"`
}

// OrderFulfilledPayload is the JSON payload of TaskOrderFulfilled.
type OrderFulfilledPayload struct {
	To           string    `json:"to"`
	CustomerName string    `json:"customer_name"`
	OrderID      int64     `json:"order_id"`
	Fulfilled    time.Time `json:"fulfilled"`
}

// NewOrderConfirmationTask constructs the confirmation task. Confirmations
// go to the critical queue.
func NewOrderConfirmationTask(p OrderConfirmationPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskOrderConfirmation,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue("critical"),
		asynq.Timeout(30*time.Second),
	), nil
}

// NewOrderFulfilledTask constructs the fulfilled notification task.
func NewOrderFulfilledTask(p OrderFulfilledPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskOrderFulfilled,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue("default"),
		asynq.Timeout(30*time.Second),
	), nil
}
