package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/deppfellow/contosopizza/internal/config"
	"github.com/deppfellow/contosopizza/internal/lib/cache"
	"github.com/deppfellow/contosopizza/internal/lib/job"
	"github.com/deppfellow/contosopizza/internal/repository"
	"github.com/deppfellow/contosopizza/internal/repository/repositorytest"
	"github.com/deppfellow/contosopizza/internal/server"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	customerColumns = []string{"id", "first_name", "last_name", "address", "phone", "email"}
	productColumns  = []string{"id", "name", "price"}
	orderColumns    = []string{"id", "order_placed", "order_fulfilled", "customer_id"}
	detailColumns   = []string{"id", "quantity", "product_id", "order_id"}
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string {
	return &s
}

func newTestServer() *server.Server {
	logger := zerolog.Nop()
	return &server.Server{
		Config: &config.Config{},
		Logger: &logger,
	}
}

func newTestRepos(s *server.Server) (*repository.Repositories, *repositorytest.DB) {
	db := repositorytest.NewDB()
	return repository.NewRepositoriesWithDB(db, s.Logger), db
}

func withCache(t *testing.T, s *server.Server) *miniredis.Miniredis {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s.Cache = cache.NewProductCache(client, s.Logger, time.Minute)
	return mr
}

type fakeNotifier struct {
	confirmations []job.OrderConfirmationPayload
	fulfilled     []job.OrderFulfilledPayload
}

func (n *fakeNotifier) EnqueueOrderConfirmation(_ context.Context, p job.OrderConfirmationPayload) error {
	n.confirmations = append(n.confirmations, p)
	return nil
}

func (n *fakeNotifier) EnqueueOrderFulfilled(_ context.Context, p job.OrderFulfilledPayload) error {
	n.fulfilled = append(n.fulfilled, p)
	return nil
}
