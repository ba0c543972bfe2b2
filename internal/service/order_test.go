package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/deppfellow/contosopizza/internal/errs"
	"github.com/deppfellow/contosopizza/internal/repository"
	"github.com/deppfellow/contosopizza/internal/repository/repositorytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var placedAt = time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)

func newTestOrderService() (*OrderService, *repositorytest.DB, *fakeNotifier) {
	s := newTestServer()
	repos, db := newTestRepos(s)
	notifier := &fakeNotifier{}

	svc := NewOrderService(s, repos, notifier)
	svc.now = func() time.Time { return placedAt }
	return svc, db, notifier
}

func TestOrderService_PlaceOrder(t *testing.T) {
	svc, db, notifier := newTestOrderService()

	db.Push(
		repositorytest.NewRows(customerColumns, []any{int64(3), "Ada", "Lovelace", nil, nil, "ada@example.com"}),
		repositorytest.NewRows(productColumns, []any{int64(1), "Margherita", price("9.50")}),
		repositorytest.NewRows(productColumns, []any{int64(2), "Pepperoni", price("11.25")}),
	)

	order, err := svc.PlaceOrder(context.Background(), 3, []OrderLine{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
		{ProductID: 1, Quantity: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), order.ID)
	assert.Equal(t, int64(3), order.CustomerID)
	require.Len(t, order.OrderDetails, 2)
	assert.Equal(t, 3, order.OrderDetails[0].Quantity)
	assert.Equal(t, int64(1), order.OrderDetails[0].OrderID)
	assert.True(t, price("39.75").Equal(order.Total), order.Total.String())

	assert.Len(t, db.Queries, 3)
	assert.Equal(t, []string{
		`INSERT INTO "orders" ("order_placed", "order_fulfilled", "customer_id") VALUES ($1, $2, $3) RETURNING "id"`,
		`INSERT INTO "order_details" ("quantity", "product_id", "order_id") VALUES ($1, $2, $3) RETURNING "id"`,
		`INSERT INTO "order_details" ("quantity", "product_id", "order_id") VALUES ($1, $2, $3) RETURNING "id"`,
	}, db.Tx.SQLs())

	require.Len(t, notifier.confirmations, 1)
	sent := notifier.confirmations[0]
	assert.Equal(t, "ada@example.com", sent.To)
	assert.Equal(t, "39.75", sent.Total)
	assert.Equal(t, "28.50", sent.Lines[0].Subtotal)
	assert.Equal(t, placedAt, sent.Placed)
}

func TestOrderService_PlaceOrderWithoutEmail(t *testing.T) {
	svc, db, notifier := newTestOrderService()

	db.Push(
		repositorytest.NewRows(customerColumns, []any{int64(3), "Ada", "Lovelace", nil, nil, nil}),
		repositorytest.NewRows(productColumns, []any{int64(1), "Margherita", price("9.50")}),
	)

	_, err := svc.PlaceOrder(context.Background(), 3, []OrderLine{{ProductID: 1, Quantity: 1}})
	require.NoError(t, err)
	assert.Empty(t, notifier.confirmations)
}

func TestOrderService_PlaceOrderRejects(t *testing.T) {
	t.Run("no lines", func(t *testing.T) {
		svc, db, _ := newTestOrderService()

		_, err := svc.PlaceOrder(context.Background(), 3, nil)

		var httpErr *errs.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Status)
		assert.Empty(t, db.Queries)
	})

	t.Run("zero quantity", func(t *testing.T) {
		svc, db, _ := newTestOrderService()
		db.Push(repositorytest.NewRows(customerColumns, []any{int64(3), "Ada", "Lovelace", nil, nil, nil}))

		_, err := svc.PlaceOrder(context.Background(), 3, []OrderLine{{ProductID: 1, Quantity: 0}})

		var httpErr *errs.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Zero(t, db.Begins)
	})

	t.Run("unknown customer", func(t *testing.T) {
		svc, db, _ := newTestOrderService()

		_, err := svc.PlaceOrder(context.Background(), 3, []OrderLine{{ProductID: 1, Quantity: 1}})
		assert.True(t, repository.IsNotFound(err))
		assert.Contains(t, err.Error(), "table:customers:")
		assert.Zero(t, db.Begins)
	})

	t.Run("unknown product", func(t *testing.T) {
		svc, db, _ := newTestOrderService()
		db.Push(repositorytest.NewRows(customerColumns, []any{int64(3), "Ada", "Lovelace", nil, nil, nil}))

		_, err := svc.PlaceOrder(context.Background(), 3, []OrderLine{{ProductID: 9, Quantity: 1}})
		assert.Contains(t, err.Error(), "table:products:")
		assert.Zero(t, db.Begins)
	})
}

func TestOrderService_GetOrder(t *testing.T) {
	svc, db, _ := newTestOrderService()

	db.Push(
		repositorytest.NewRows(orderColumns, []any{int64(5), placedAt, nil, int64(3)}),
		repositorytest.NewRows(customerColumns, []any{int64(3), "Ada", "Lovelace", nil, nil, nil}),
		repositorytest.NewRows(detailColumns,
			[]any{int64(10), 2, int64(1), int64(5)},
			[]any{int64(11), 1, int64(2), int64(5)},
		),
		repositorytest.NewRows(productColumns, []any{int64(1), "Margherita", price("9.50")}),
		repositorytest.NewRows(productColumns, []any{int64(2), "Pepperoni", price("11.25")}),
	)

	order, err := svc.GetOrder(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, "Ada", order.Customer.FirstName)
	require.Len(t, order.OrderDetails, 2)
	assert.Equal(t, "Pepperoni", order.OrderDetails[1].Product.Name)
	assert.True(t, price("30.25").Equal(order.Total))
}

func TestOrderService_ListCustomerOrders(t *testing.T) {
	svc, db, _ := newTestOrderService()

	db.Count = 1
	db.Push(
		repositorytest.NewRows(customerColumns, []any{int64(3), "Ada", "Lovelace", nil, nil, nil}),
		repositorytest.NewRows(orderColumns, []any{int64(5), placedAt, nil, int64(3)}),
	)

	page, err := svc.ListCustomerOrders(context.Background(), 3, 1, 20)
	require.NoError(t, err)

	require.Len(t, page.Data, 1)
	assert.Equal(t, int64(5), page.Data[0].ID)
	assert.Equal(t, []any{int64(3)}, db.Queries[1].Args)
	assert.Contains(t, db.Queries[2].SQL, `ORDER BY "order_placed" DESC, "id" LIMIT 20`)
}

func TestOrderService_FulfillOrder(t *testing.T) {
	svc, db, notifier := newTestOrderService()

	db.Push(
		repositorytest.NewRows(orderColumns, []any{int64(5), placedAt.Add(-time.Hour), nil, int64(3)}),
		repositorytest.NewRows(customerColumns, []any{int64(3), "Ada", "Lovelace", nil, nil, "ada@example.com"}),
	)

	order, err := svc.FulfillOrder(context.Background(), 5)
	require.NoError(t, err)

	require.NotNil(t, order.OrderFulfilled)
	assert.Equal(t, placedAt, *order.OrderFulfilled)
	assert.Equal(t, []string{`UPDATE "orders" SET "order_fulfilled" = $1 WHERE "id" = $2`}, db.Tx.SQLs())

	require.Len(t, notifier.fulfilled, 1)
	assert.Equal(t, int64(5), notifier.fulfilled[0].OrderID)
}

func TestOrderService_FulfillTwice(t *testing.T) {
	svc, db, _ := newTestOrderService()

	db.Push(repositorytest.NewRows(orderColumns, []any{int64(5), placedAt, placedAt, int64(3)}))

	_, err := svc.FulfillOrder(context.Background(), 5)

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "ORDER_ALREADY_FULFILLED", httpErr.Code)
	assert.Zero(t, db.Begins)
}

func TestOrderService_DeleteOrder(t *testing.T) {
	svc, db, _ := newTestOrderService()

	db.Push(repositorytest.NewRows(orderColumns, []any{int64(5), placedAt, nil, int64(3)}))

	require.NoError(t, svc.DeleteOrder(context.Background(), 5))
	assert.Equal(t, []string{`DELETE FROM "orders" WHERE "id" = $1`}, db.Tx.SQLs())
}
