package repository

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// KeyColumn is the identity primary key every mapped table has.
const KeyColumn = "id"

// ErrUnknownColumn is returned when a query names a column the mapping does not have.
var ErrUnknownColumn = errors.New("unknown column")

// Reference names the principal row an entity points at through a foreign key.
type Reference[T any] struct {
	Table string
	Key   func(*T) int64
}

// Mapping describes how an entity type maps onto its table.
//
// Columns lists the writable columns (the key excluded) in the same order
// Values returns them. Rank orders tables by dependency: principals have
// lower ranks and are inserted first and deleted last.
type Mapping[T any] struct {
	Table      string
	Rank       int
	Columns    []string
	Key        func(*T) *int64
	Values     func(*T) []any
	BeforeSave func(*T)
	References []Reference[T]
}

// mapper is the type-erased view of a Mapping the change tracker works with.
type mapper interface {
	table() string
	rank() int
	columns() []string
	keyOf(e any) int64
	setKeyOf(e any, id int64)
	valuesOf(e any) []any
	beforeSave(e any)
	copyOf(e any) any
	restore(e, saved any)
	referencesOf(e any) []tableKey
	insertSQL() string
	updateSQL(cols []int) string
	deleteSQL() string
}

func (m *Mapping[T]) table() string     { return m.Table }
func (m *Mapping[T]) rank() int         { return m.Rank }
func (m *Mapping[T]) columns() []string { return m.Columns }

func (m *Mapping[T]) keyOf(e any) int64 {
	return *m.Key(e.(*T))
}

func (m *Mapping[T]) setKeyOf(e any, id int64) {
	*m.Key(e.(*T)) = id
}

func (m *Mapping[T]) valuesOf(e any) []any {
	return m.Values(e.(*T))
}

func (m *Mapping[T]) beforeSave(e any) {
	if m.BeforeSave != nil {
		m.BeforeSave(e.(*T))
	}
}

// copyOf returns a shallow copy of the entity's fields.
func (m *Mapping[T]) copyOf(e any) any {
	c := *e.(*T)
	return &c
}

func (m *Mapping[T]) restore(e, saved any) {
	*e.(*T) = *saved.(*T)
}

func (m *Mapping[T]) referencesOf(e any) []tableKey {
	refs := make([]tableKey, 0, len(m.References))
	for _, ref := range m.References {
		if id := ref.Key(e.(*T)); id != 0 {
			refs = append(refs, tableKey{table: ref.Table, id: id})
		}
	}
	return refs
}

func (m *Mapping[T]) hasColumn(name string) bool {
	if name == KeyColumn {
		return true
	}
	for _, c := range m.Columns {
		if c == name {
			return true
		}
	}
	return false
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}

func (m *Mapping[T]) selectList() string {
	return quoteList(append([]string{KeyColumn}, m.Columns...))
}

// whereClause renders an equality filter. Keys are sorted so the same
// filter always yields the same statement; nil values become IS NULL.
func (m *Mapping[T]) whereClause(where map[string]any, firstArg int) (string, []any, error) {
	if len(where) == 0 {
		return "", nil, nil
	}

	keys := make([]string, 0, len(where))
	for k := range where {
		if !m.hasColumn(k) {
			return "", nil, fmt.Errorf("%w %q on %s", ErrUnknownColumn, k, m.Table)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var (
		conds []string
		args  []any
	)
	for _, k := range keys {
		v := where[k]
		if normalize(v) == nil {
			conds = append(conds, quoteIdent(k)+" IS NULL")
			continue
		}
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("%s = $%d", quoteIdent(k), firstArg+len(args)-1))
	}

	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func (m *Mapping[T]) orderClause(orderBy string) (string, error) {
	if orderBy == "" {
		return " ORDER BY " + quoteIdent(KeyColumn), nil
	}

	column, direction := orderBy, ""
	if strings.HasPrefix(orderBy, "-") {
		column, direction = orderBy[1:], " DESC"
	}
	if !m.hasColumn(column) {
		return "", fmt.Errorf("%w %q on %s", ErrUnknownColumn, column, m.Table)
	}

	clause := " ORDER BY " + quoteIdent(column) + direction
	if column != KeyColumn {
		// Stable paging when the sort column has duplicates.
		clause += ", " + quoteIdent(KeyColumn)
	}
	return clause, nil
}

func (m *Mapping[T]) selectSQL(q Query) (string, []any, error) {
	where, args, err := m.whereClause(q.Where, 1)
	if err != nil {
		return "", nil, err
	}
	order, err := m.orderClause(q.OrderBy)
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(m.selectList())
	sb.WriteString(" FROM ")
	sb.WriteString(quoteIdent(m.Table))
	sb.WriteString(where)
	sb.WriteString(order)
	if q.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", q.Limit)
	}
	if q.Offset > 0 {
		fmt.Fprintf(&sb, " OFFSET %d", q.Offset)
	}

	return sb.String(), args, nil
}

func (m *Mapping[T]) findSQL() string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1",
		m.selectList(), quoteIdent(m.Table), quoteIdent(KeyColumn))
}

func (m *Mapping[T]) countSQL(where map[string]any) (string, []any, error) {
	clause, args, err := m.whereClause(where, 1)
	if err != nil {
		return "", nil, err
	}
	return "SELECT count(*) FROM " + quoteIdent(m.Table) + clause, args, nil
}

func (m *Mapping[T]) insertSQL() string {
	placeholders := make([]string, len(m.Columns))
	for i := range m.Columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		quoteIdent(m.Table),
		quoteList(m.Columns),
		strings.Join(placeholders, ", "),
		quoteIdent(KeyColumn),
	)
}

// updateSQL sets the columns at the given indexes; the key is the last argument.
func (m *Mapping[T]) updateSQL(cols []int) string {
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", quoteIdent(m.Columns[c]), i+1)
	}

	return fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		quoteIdent(m.Table),
		strings.Join(sets, ", "),
		quoteIdent(KeyColumn),
		len(cols)+1,
	)
}

func (m *Mapping[T]) deleteSQL() string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s = $1", quoteIdent(m.Table), quoteIdent(KeyColumn))
}

// normalize dereferences pointers so snapshots hold values, not aliases.
func normalize(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		return rv.Elem().Interface()
	}
	return v
}

func valuesEqual(a, b any) bool {
	a, b = normalize(a), normalize(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch av := a.(type) {
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case decimal.Decimal:
		bv, ok := b.(decimal.Decimal)
		return ok && av.Equal(bv)
	}

	return reflect.DeepEqual(a, b)
}
