package repository

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapping_InsertSQL(t *testing.T) {
	assert.Equal(t,
		`INSERT INTO "customers" ("first_name", "last_name", "address", "phone", "email") VALUES ($1, $2, $3, $4, $5) RETURNING "id"`,
		customerMapping.insertSQL(),
	)
}

func TestMapping_UpdateSQL(t *testing.T) {
	assert.Equal(t,
		`UPDATE "products" SET "price" = $1 WHERE "id" = $2`,
		productMapping.updateSQL([]int{1}),
	)
	assert.Equal(t,
		`UPDATE "order_details" SET "quantity" = $1, "order_id" = $2 WHERE "id" = $3`,
		orderDetailMapping.updateSQL([]int{0, 2}),
	)
}

func TestMapping_DeleteSQL(t *testing.T) {
	assert.Equal(t, `DELETE FROM "orders" WHERE "id" = $1`, orderMapping.deleteSQL())
}

func TestMapping_SelectSQL(t *testing.T) {
	sql, args, err := orderMapping.selectSQL(Query{
		Where:   map[string]any{"order_fulfilled": (*time.Time)(nil), "customer_id": int64(3)},
		OrderBy: "-order_placed",
		Limit:   10,
		Offset:  20,
	})
	require.NoError(t, err)

	assert.Equal(t,
		`SELECT "id", "order_placed", "order_fulfilled", "customer_id" FROM "orders" `+
			`WHERE "customer_id" = $1 AND "order_fulfilled" IS NULL `+
			`ORDER BY "order_placed" DESC, "id" LIMIT 10 OFFSET 20`,
		sql,
	)
	assert.Equal(t, []any{int64(3)}, args)
}

func TestMapping_SelectSQLDefaultOrder(t *testing.T) {
	sql, args, err := productMapping.selectSQL(Query{})
	require.NoError(t, err)

	assert.Equal(t, `SELECT "id", "name", "price" FROM "products" ORDER BY "id"`, sql)
	assert.Empty(t, args)
}

func TestMapping_SelectSQLUnknownColumn(t *testing.T) {
	_, _, err := productMapping.selectSQL(Query{Where: map[string]any{"colour": "red"}})
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, _, err = productMapping.selectSQL(Query{OrderBy: "-colour"})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestMapping_CountSQL(t *testing.T) {
	sql, args, err := productMapping.countSQL(map[string]any{"name": "Margherita"})
	require.NoError(t, err)

	assert.Equal(t, `SELECT count(*) FROM "products" WHERE "name" = $1`, sql)
	assert.Equal(t, []any{"Margherita"}, args)
}

func TestMapping_QuotesIdentifiers(t *testing.T) {
	m := &Mapping[struct{ ID int64 }]{Table: `odd"table`}
	assert.Equal(t, `DELETE FROM "odd""table" WHERE "id" = $1`, m.deleteSQL())
}

func TestValuesEqual(t *testing.T) {
	utc := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	local := utc.In(time.FixedZone("CET", 3600))
	a, b := "x", "x"

	tests := []struct {
		name  string
		x, y  any
		equal bool
	}{
		{name: "same instant in different zones", x: utc, y: local, equal: true},
		{name: "different instants", x: utc, y: utc.Add(time.Second), equal: false},
		{name: "decimal scale", x: decimal.RequireFromString("1.50"), y: decimal.RequireFromString("1.5"), equal: true},
		{name: "decimal value", x: decimal.RequireFromString("1.50"), y: decimal.RequireFromString("1.51"), equal: false},
		{name: "pointers to equal strings", x: &a, y: &b, equal: true},
		{name: "nil pointer and nil", x: (*string)(nil), y: nil, equal: true},
		{name: "nil pointer and value", x: (*string)(nil), y: &a, equal: false},
		{name: "ints", x: int64(1), y: int64(1), equal: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, valuesEqual(tt.x, tt.y))
		})
	}
}
