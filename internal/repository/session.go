package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/contosopizza/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// DB is the part of a pgx pool or connection a session needs.
// *pgxpool.Pool and *pgx.Conn both satisfy it.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var validate = model.NewValidator()

// Session is a unit of work over the pizza shop tables. It exposes one
// mapped collection per entity, tracks the entities it hands out and writes
// every pending change in a single transaction on SaveChanges.
//
// A Session is not safe for concurrent use. Open one per request.
type Session struct {
	Customers    *Set[model.Customer]
	Orders       *Set[model.Order]
	Products     *Set[model.Product]
	OrderDetails *Set[model.OrderDetail]

	db      DB
	logger  *zerolog.Logger
	tracker *tracker
}

// NewSession opens a session on db.
func NewSession(db DB, logger *zerolog.Logger) *Session {
	s := &Session{
		db:      db,
		logger:  logger,
		tracker: newTracker(),
	}

	s.Customers = newSet(s, customerMapping)
	s.Orders = newSet(s, orderMapping)
	s.Products = newSet(s, productMapping)
	s.OrderDetails = newSet(s, orderDetailMapping)

	return s
}

// fixup copies principal keys from navigation fields into foreign keys and
// applies column defaults.
func (s *Session) fixup() {
	for _, e := range s.tracker.entries() {
		if e.state != Deleted {
			e.mapping.beforeSave(e.entity)
		}
	}
}

// DetectChanges compares tracked entities against their snapshots and marks
// the ones that changed as modified.
func (s *Session) DetectChanges() {
	s.fixup()
	s.tracker.detectChanges()
}

// ChangeCount returns the number of entities SaveChanges would write.
func (s *Session) ChangeCount() int {
	s.DetectChanges()

	deletes, inserts, updates := s.tracker.pending()
	return len(deletes) + len(inserts) + len(updates)
}

// HasChanges reports whether SaveChanges has anything to write.
func (s *Session) HasChanges() bool {
	return s.ChangeCount() > 0
}

// Clear stops tracking every entity.
func (s *Session) Clear() {
	s.tracker.clear()
}

func (s *Session) validatePending(inserts, updates []*entry) error {
	for _, list := range [][]*entry{inserts, updates} {
		for _, e := range list {
			if err := validate.Struct(e.entity); err != nil {
				return fmt.Errorf("invalid %s: %w", e.mapping.table(), err)
			}
		}
	}
	return nil
}

// SaveChanges writes every pending change in one transaction and returns
// the number of rows written.
//
// Deletes run first, dependents before principals. Inserts follow,
// principals first, and write the generated keys back into the entities.
// Updates run last and only touch the columns that changed, unless the
// entity was passed to Update. When any statement fails the transaction is
// rolled back and every tracked entity gets back the fields and state it
// had before the call, so generated keys are reset.
func (s *Session) SaveChanges(ctx context.Context) (int, error) {
	before := s.tracker.save()
	s.DetectChanges()

	deletes, inserts, updates := s.tracker.pending()
	if len(deletes)+len(inserts)+len(updates) == 0 {
		return 0, nil
	}

	if err := s.validatePending(inserts, updates); err != nil {
		return 0, err
	}

	var inserted, written []*entry
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		for _, e := range deletes {
			id := e.mapping.keyOf(e.entity)
			if err := execOne(ctx, tx, e, e.mapping.deleteSQL(), id); err != nil {
				return err
			}
		}

		for _, e := range inserts {
			e.mapping.beforeSave(e.entity)

			var id int64
			if err := tx.QueryRow(ctx, e.mapping.insertSQL(), e.mapping.valuesOf(e.entity)...).Scan(&id); err != nil {
				return fmt.Errorf("failed to insert into %s: %w", e.mapping.table(), err)
			}
			e.mapping.setKeyOf(e.entity, id)
			inserted = append(inserted, e)
		}

		// Generated keys may have reached foreign keys of tracked rows.
		s.DetectChanges()
		_, _, updates = s.tracker.pending()

		for _, e := range updates {
			cols := e.changedColumns()
			if len(cols) == 0 {
				continue
			}

			values := e.mapping.valuesOf(e.entity)
			args := make([]any, 0, len(cols)+1)
			for _, c := range cols {
				args = append(args, values[c])
			}
			args = append(args, e.mapping.keyOf(e.entity))

			if err := execOne(ctx, tx, e, e.mapping.updateSQL(cols), args...); err != nil {
				return err
			}
			written = append(written, e)
		}

		return nil
	})
	if err != nil {
		s.tracker.restore(before)
		return 0, err
	}

	saved := make([]*entry, 0, len(inserted)+len(updates))
	saved = append(saved, inserted...)
	saved = append(saved, updates...)
	s.tracker.accept(deletes, saved)

	s.logger.Debug().
		Int("deleted", len(deletes)).
		Int("inserted", len(inserted)).
		Int("updated", len(written)).
		Msg("saved changes")

	return len(deletes) + len(inserted) + len(written), nil
}

// execOne runs a statement that must affect exactly the row of e.
func execOne(ctx context.Context, tx pgx.Tx, e *entry, sql string, args ...any) error {
	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to write %s=%d: %w", e.mapping.table(), e.mapping.keyOf(e.entity), err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s=%d", ErrConcurrencyConflict, e.mapping.table(), e.mapping.keyOf(e.entity))
	}
	return nil
}
