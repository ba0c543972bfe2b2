package service

import (
	"context"
	"testing"

	"github.com/deppfellow/contosopizza/internal/model"
	"github.com/deppfellow/contosopizza/internal/repository/repositorytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService_ListIsCached(t *testing.T) {
	s := newTestServer()
	withCache(t, s)
	repos, db := newTestRepos(s)
	svc := NewProductService(s, repos)
	ctx := context.Background()

	db.Count = 2
	db.Push(repositorytest.NewRows(productColumns,
		[]any{int64(1), "Margherita", price("9.50")},
		[]any{int64(2), "Pepperoni", price("11.25")},
	))

	first, err := svc.ListProducts(ctx, 1, 20)
	require.NoError(t, err)
	require.Len(t, first.Data, 2)
	assert.Len(t, db.Queries, 2)

	second, err := svc.ListProducts(ctx, 1, 20)
	require.NoError(t, err)
	assert.Len(t, db.Queries, 2)
	assert.Equal(t, "Pepperoni", second.Data[1].Name)
	assert.True(t, price("11.25").Equal(second.Data[1].Price))

	assert.Equal(t, int64(1), svc.CacheStats().Hits)
}

func TestProductService_WriteInvalidatesCatalog(t *testing.T) {
	s := newTestServer()
	mr := withCache(t, s)
	repos, db := newTestRepos(s)
	svc := NewProductService(s, repos)
	ctx := context.Background()

	_, err := svc.ListProducts(ctx, 1, 20)
	require.NoError(t, err)
	assert.True(t, mr.Exists("contosopizza:products:catalog"))

	p, err := svc.CreateProduct(ctx, &model.Product{Name: "Hawaiian", Price: price("12.00")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	assert.False(t, mr.Exists("contosopizza:products:catalog"))

	db.Push(repositorytest.NewRows(productColumns, []any{int64(1), "Hawaiian", price("12.00")}))
	_, err = svc.UpdateProduct(ctx, 1, func(p *model.Product) {
		p.Price = price("12.50")
	})
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "products" SET "price" = $1 WHERE "id" = $2`, db.Tx.Statements[1].SQL)
}

func TestProductService_GetUsesCache(t *testing.T) {
	s := newTestServer()
	withCache(t, s)
	repos, db := newTestRepos(s)
	svc := NewProductService(s, repos)
	ctx := context.Background()

	db.Push(repositorytest.NewRows(productColumns, []any{int64(7), "Diavola", price("10.75")}))

	p, err := svc.GetProduct(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Diavola", p.Name)

	again, err := svc.GetProduct(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Diavola", again.Name)
	assert.Len(t, db.Queries, 1)
}

func TestProductService_WithoutCache(t *testing.T) {
	s := newTestServer()
	repos, db := newTestRepos(s)
	svc := NewProductService(s, repos)

	db.Push(
		repositorytest.NewRows(productColumns, []any{int64(7), "Diavola", price("10.75")}),
		repositorytest.NewRows(productColumns, []any{int64(7), "Diavola", price("10.75")}),
	)

	_, err := svc.GetProduct(context.Background(), 7)
	require.NoError(t, err)
	_, err = svc.GetProduct(context.Background(), 7)
	require.NoError(t, err)

	assert.Len(t, db.Queries, 2)
	assert.Nil(t, svc.CacheStats())
}

func TestProductService_InvalidPrice(t *testing.T) {
	s := newTestServer()
	repos, db := newTestRepos(s)
	svc := NewProductService(s, repos)

	_, err := svc.CreateProduct(context.Background(), &model.Product{Name: "Gold leaf", Price: price("10000")})
	assert.Error(t, err)
	assert.Zero(t, db.Begins)
}

func TestProductService_Delete(t *testing.T) {
	s := newTestServer()
	mr := withCache(t, s)
	repos, db := newTestRepos(s)
	svc := NewProductService(s, repos)
	ctx := context.Background()

	require.NoError(t, mr.Set("contosopizza:products:7", `{"id":7}`))
	db.Push(repositorytest.NewRows(productColumns, []any{int64(7), "Diavola", price("10.75")}))

	require.NoError(t, svc.DeleteProduct(ctx, 7))
	assert.Equal(t, []string{`DELETE FROM "products" WHERE "id" = $1`}, db.Tx.SQLs())
	assert.False(t, mr.Exists("contosopizza:products:7"))
}
