package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Query filters, orders and pages a List call.
//
// Where holds column equality filters; a nil value matches NULL.
// OrderBy names a column, prefixed with "-" for descending order.
type Query struct {
	Where   map[string]any
	OrderBy string
	Limit   int
	Offset  int

	// NoTracking returns detached rows that SaveChanges ignores.
	NoTracking bool
}

// Set is the mapped collection of one entity type inside a session.
type Set[T any] struct {
	session *Session
	mapping *Mapping[T]
}

func newSet[T any](s *Session, m *Mapping[T]) *Set[T] {
	return &Set[T]{session: s, mapping: m}
}

// Table returns the name of the table behind the set.
func (s *Set[T]) Table() string {
	return s.mapping.Table
}

// Find returns the entity with the given key. An instance already tracked by
// the session wins over the database row.
func (s *Set[T]) Find(ctx context.Context, id int64) (*T, error) {
	if e := s.session.tracker.lookup(s.mapping.Table, id); e != nil {
		if e.state == Deleted {
			return nil, notFound(s.mapping.Table)
		}
		return e.entity.(*T), nil
	}

	rows, err := s.session.db.Query(ctx, s.mapping.findSQL(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to execute find query for %s=%d: %w", s.mapping.Table, id, err)
	}

	entity, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[T])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound(s.mapping.Table)
		}
		return nil, fmt.Errorf("failed to collect row from table:%s: %w", s.mapping.Table, err)
	}

	if _, err := s.session.tracker.track(entity, s.mapping, Unchanged); err != nil {
		return nil, err
	}
	return entity, nil
}

// List returns the rows matching q. Tracked queries resolve identities: a row
// whose key the session already tracks yields the tracked instance.
func (s *Set[T]) List(ctx context.Context, q Query) ([]*T, error) {
	sql, args, err := s.mapping.selectSQL(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.session.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute list query for %s: %w", s.mapping.Table, err)
	}

	fetched, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("failed to collect rows from table:%s: %w", s.mapping.Table, err)
	}

	if q.NoTracking {
		return fetched, nil
	}

	result := make([]*T, 0, len(fetched))
	for _, entity := range fetched {
		if e := s.session.tracker.lookup(s.mapping.Table, *s.mapping.Key(entity)); e != nil {
			result = append(result, e.entity.(*T))
			continue
		}
		if _, err := s.session.tracker.track(entity, s.mapping, Unchanged); err != nil {
			return nil, err
		}
		result = append(result, entity)
	}

	return result, nil
}

// Count returns the number of rows matching where.
func (s *Set[T]) Count(ctx context.Context, where map[string]any) (int64, error) {
	sql, args, err := s.mapping.countSQL(where)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := s.session.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", s.mapping.Table, err)
	}
	return count, nil
}

// Add marks new entities for insertion. Keys are generated by the database,
// so an untracked entity must not carry one.
func (s *Set[T]) Add(entities ...*T) error {
	for _, entity := range entities {
		e := s.session.tracker.get(entity)
		switch {
		case e == nil:
			if id := *s.mapping.Key(entity); id != 0 {
				return fmt.Errorf("%w: cannot add %s with key %d", ErrKeyAssigned, s.mapping.Table, id)
			}
			if _, err := s.session.tracker.track(entity, s.mapping, Added); err != nil {
				return err
			}
		case e.state == Deleted:
			e.state = Modified
			e.allColumns = true
		}
	}
	return nil
}

// Attach starts tracking entities as they are: without a key they are new,
// otherwise they are assumed to match the database.
func (s *Set[T]) Attach(entities ...*T) error {
	for _, entity := range entities {
		if s.session.tracker.get(entity) != nil {
			continue
		}
		state := Unchanged
		if *s.mapping.Key(entity) == 0 {
			state = Added
		}
		if _, err := s.session.tracker.track(entity, s.mapping, state); err != nil {
			return err
		}
	}
	return nil
}

// Update marks entities so every column is written on the next save.
func (s *Set[T]) Update(entities ...*T) error {
	for _, entity := range entities {
		e := s.session.tracker.get(entity)
		if e == nil {
			state := Modified
			if *s.mapping.Key(entity) == 0 {
				state = Added
			}
			var err error
			if e, err = s.session.tracker.track(entity, s.mapping, state); err != nil {
				return err
			}
		}

		switch e.state {
		case Unchanged, Deleted:
			e.state = Modified
		}
		if e.state == Modified {
			e.allColumns = true
		}
	}
	return nil
}

// Remove marks entities for deletion. Entities added in this session are
// simply forgotten.
func (s *Set[T]) Remove(entities ...*T) error {
	for _, entity := range entities {
		e := s.session.tracker.get(entity)
		if e == nil {
			if *s.mapping.Key(entity) == 0 {
				continue
			}
			if _, err := s.session.tracker.track(entity, s.mapping, Deleted); err != nil {
				return err
			}
			continue
		}

		switch e.state {
		case Added:
			s.session.tracker.detach(e)
		case Unchanged, Modified:
			e.state = Deleted
		}
	}
	return nil
}

// Entry reports the state of entity in this session.
func (s *Set[T]) Entry(entity *T) EntityState {
	if e := s.session.tracker.get(entity); e != nil {
		return e.state
	}
	return Detached
}

// Local returns the tracked entities of the set that are not marked deleted,
// in the order they became tracked.
func (s *Set[T]) Local() []*T {
	var local []*T
	for _, e := range s.session.tracker.entries() {
		if e.mapping.table() != s.mapping.Table || e.state == Deleted {
			continue
		}
		local = append(local, e.entity.(*T))
	}
	return local
}
