// Package repositorytest provides an in-memory stand-in for the pgx pool a
// repository session runs on.
//
// DB records every statement and answers queries from canned rows. Inserts
// inside a transaction receive sequential keys.
package repositorytest

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Statement is one recorded SQL statement.
type Statement struct {
	SQL  string
	Args []any
}

// DB answers Query calls from Results, in order, and QueryRow calls with
// Count.
type DB struct {
	Queries []Statement
	Results []*Rows
	Count   int64

	Begins int
	Tx     *Tx
}

// NewDB returns a DB whose transactions hand out keys from 1 and report one
// affected row per statement.
func NewDB() *DB {
	return &DB{Tx: &Tx{NextID: 1, Affected: 1}}
}

// Push queues result sets for the next Query calls.
func (db *DB) Push(rows ...*Rows) {
	db.Results = append(db.Results, rows...)
}

func (db *DB) Begin(ctx context.Context) (pgx.Tx, error) {
	db.Begins++
	db.Tx.done = false
	return db.Tx, nil
}

func (db *DB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	db.Queries = append(db.Queries, Statement{SQL: sql, Args: args})
	if len(db.Results) == 0 {
		return &Rows{}, nil
	}
	rows := db.Results[0]
	db.Results = db.Results[1:]
	return rows, nil
}

func (db *DB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	db.Queries = append(db.Queries, Statement{SQL: sql, Args: args})
	return row{values: []any{db.Count}}
}

// Tx hands out sequential keys for inserts. Statements containing FailOn
// fail with ErrStatement; Affected is the row count reported for updates
// and deletes.
type Tx struct {
	pgx.Tx

	Statements []Statement
	NextID     int64
	Affected   int64
	FailOn     string

	Commits   int
	Rollbacks int

	done bool
}

// ErrStatement is returned for statements matching Tx.FailOn.
var ErrStatement = errors.New("statement failed")

func (tx *Tx) record(sql string, args []any) error {
	tx.Statements = append(tx.Statements, Statement{SQL: sql, Args: args})
	if tx.FailOn != "" && strings.Contains(sql, tx.FailOn) {
		return ErrStatement
	}
	return nil
}

func (tx *Tx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if err := tx.record(sql, args); err != nil {
		return pgconn.CommandTag{}, err
	}
	verb := strings.Fields(sql)[0]
	if tx.Affected == 0 {
		return pgconn.NewCommandTag(verb + " 0"), nil
	}
	return pgconn.NewCommandTag(verb + " 1"), nil
}

func (tx *Tx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if err := tx.record(sql, args); err != nil {
		return row{err: err}
	}
	id := tx.NextID
	tx.NextID++
	return row{values: []any{id}}
}

func (tx *Tx) Commit(ctx context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	tx.Commits++
	return nil
}

func (tx *Tx) Rollback(ctx context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	tx.Rollbacks++
	return nil
}

// SQLs lists the statements run in the transaction.
func (tx *Tx) SQLs() []string {
	list := make([]string, len(tx.Statements))
	for i, s := range tx.Statements {
		list[i] = s.SQL
	}
	return list
}

type row struct {
	values []any
	err    error
}

func (r row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.values)
}

// Rows serves rows of the given columns.
type Rows struct {
	columns []string
	data    [][]any
	pos     int
}

// NewRows returns a result set; each data slice is one row in column order.
func NewRows(columns []string, data ...[]any) *Rows {
	return &Rows{columns: columns, data: data}
}

func (r *Rows) Close()                        {}
func (r *Rows) Err() error                    { return nil }
func (r *Rows) CommandTag() pgconn.CommandTag { return pgconn.NewCommandTag("SELECT") }
func (r *Rows) RawValues() [][]byte           { return nil }
func (r *Rows) Conn() *pgx.Conn               { return nil }

func (r *Rows) FieldDescriptions() []pgconn.FieldDescription {
	fields := make([]pgconn.FieldDescription, len(r.columns))
	for i, c := range r.columns {
		fields[i] = pgconn.FieldDescription{Name: c}
	}
	return fields
}

func (r *Rows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *Rows) Scan(dest ...any) error {
	return assign(dest, r.data[r.pos-1])
}

func (r *Rows) Values() ([]any, error) {
	return r.data[r.pos-1], nil
}

func assign(dest []any, values []any) error {
	if len(dest) != len(values) {
		return errors.New("scan: wrong number of destinations")
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		if values[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		v := reflect.ValueOf(values[i])
		if target.Kind() == reflect.Pointer && v.Kind() != reflect.Pointer {
			p := reflect.New(target.Type().Elem())
			p.Elem().Set(v)
			v = p
		}
		target.Set(v)
	}
	return nil
}
