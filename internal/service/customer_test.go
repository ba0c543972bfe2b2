package service

import (
	"context"
	"testing"

	"github.com/deppfellow/contosopizza/internal/model"
	"github.com/deppfellow/contosopizza/internal/repository"
	"github.com/deppfellow/contosopizza/internal/repository/repositorytest"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerService_Create(t *testing.T) {
	s := newTestServer()
	repos, db := newTestRepos(s)
	svc := NewCustomerService(s, repos)

	c, err := svc.CreateCustomer(context.Background(), &model.Customer{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     strPtr("ada@example.com"),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), c.ID)
	require.Len(t, db.Tx.Statements, 1)
	assert.Contains(t, db.Tx.Statements[0].SQL, `INSERT INTO "customers"`)
	assert.Equal(t, 1, db.Tx.Commits)
}

func TestCustomerService_CreateInvalid(t *testing.T) {
	s := newTestServer()
	repos, db := newTestRepos(s)
	svc := NewCustomerService(s, repos)

	_, err := svc.CreateCustomer(context.Background(), &model.Customer{FirstName: "Ada", Email: strPtr("nope")})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Zero(t, db.Begins)
}

func TestCustomerService_UpdateWritesChangedColumns(t *testing.T) {
	s := newTestServer()
	repos, db := newTestRepos(s)
	svc := NewCustomerService(s, repos)

	db.Push(repositorytest.NewRows(customerColumns,
		[]any{int64(4), "Ada", "Lovelace", nil, nil, "ada@example.com"},
	))

	c, err := svc.UpdateCustomer(context.Background(), 4, func(c *model.Customer) {
		c.Phone = strPtr("555-0100")
	})
	require.NoError(t, err)
	assert.Equal(t, "555-0100", *c.Phone)

	require.Len(t, db.Tx.Statements, 1)
	assert.Equal(t, `UPDATE "customers" SET "phone" = $1 WHERE "id" = $2`, db.Tx.Statements[0].SQL)
}

func TestCustomerService_UpdateWithoutChanges(t *testing.T) {
	s := newTestServer()
	repos, db := newTestRepos(s)
	svc := NewCustomerService(s, repos)

	db.Push(repositorytest.NewRows(customerColumns,
		[]any{int64(4), "Ada", "Lovelace", nil, nil, nil},
	))

	_, err := svc.UpdateCustomer(context.Background(), 4, func(c *model.Customer) {
		c.FirstName = "Ada"
	})
	require.NoError(t, err)
	assert.Zero(t, db.Begins)
}

func TestCustomerService_GetNotFound(t *testing.T) {
	s := newTestServer()
	repos, _ := newTestRepos(s)
	svc := NewCustomerService(s, repos)

	_, err := svc.GetCustomer(context.Background(), 99)
	assert.True(t, repository.IsNotFound(err))
}

func TestCustomerService_List(t *testing.T) {
	s := newTestServer()
	repos, db := newTestRepos(s)
	svc := NewCustomerService(s, repos)

	db.Count = 3
	db.Push(repositorytest.NewRows(customerColumns,
		[]any{int64(3), "Grace", "Hopper", nil, nil, nil},
	))

	page, err := svc.ListCustomers(context.Background(), 2, 2)
	require.NoError(t, err)

	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Hopper", page.Data[0].LastName)
	assert.Contains(t, db.Queries[1].SQL, `ORDER BY "last_name", "id" LIMIT 2 OFFSET 2`)
}

func TestCustomerService_Delete(t *testing.T) {
	s := newTestServer()
	repos, db := newTestRepos(s)
	svc := NewCustomerService(s, repos)

	db.Push(repositorytest.NewRows(customerColumns,
		[]any{int64(4), "Ada", "Lovelace", nil, nil, nil},
	))

	require.NoError(t, svc.DeleteCustomer(context.Background(), 4))
	assert.Equal(t, []string{`DELETE FROM "customers" WHERE "id" = $1`}, db.Tx.SQLs())
}

func TestCustomerService_DeleteConflict(t *testing.T) {
	s := newTestServer()
	repos, db := newTestRepos(s)
	svc := NewCustomerService(s, repos)

	db.Push(repositorytest.NewRows(customerColumns,
		[]any{int64(4), "Ada", "Lovelace", nil, nil, nil},
	))
	db.Tx.Affected = 0

	err := svc.DeleteCustomer(context.Background(), 4)
	assert.ErrorIs(t, err, repository.ErrConcurrencyConflict)
	assert.Equal(t, 1, db.Tx.Rollbacks)
}
