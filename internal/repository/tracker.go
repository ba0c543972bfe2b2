package repository

import (
	"errors"
	"fmt"
	"sort"
)

// EntityState is the unit-of-work state of a tracked entity.
type EntityState int

const (
	// Detached entities are not tracked by the session.
	Detached EntityState = iota
	// Unchanged entities match the database as far as the session knows.
	Unchanged
	// Added entities are inserted on SaveChanges.
	Added
	// Modified entities are updated on SaveChanges.
	Modified
	// Deleted entities are deleted on SaveChanges.
	Deleted
)

func (s EntityState) String() string {
	switch s {
	case Detached:
		return "detached"
	case Unchanged:
		return "unchanged"
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return fmt.Sprintf("EntityState(%d)", int(s))
	}
}

// ErrIdentityConflict is returned when a second instance with an already
// tracked key is attached to the same session.
var ErrIdentityConflict = errors.New("another instance with the same key is already tracked")

type tableKey struct {
	table string
	id    int64
}

type entry struct {
	entity  any
	mapping mapper
	state   EntityState
	seq     int

	// snapshot holds the normalized column values at the last accept;
	// nil for entities the session never saw in the database.
	snapshot []any

	// allColumns forces a full update, set by an explicit Update call.
	allColumns bool
}

func (e *entry) key() tableKey {
	return tableKey{table: e.mapping.table(), id: e.mapping.keyOf(e.entity)}
}

func (e *entry) takeSnapshot() {
	values := e.mapping.valuesOf(e.entity)
	e.snapshot = make([]any, len(values))
	for i, v := range values {
		e.snapshot[i] = normalize(v)
	}
}

// changedColumns returns the indexes of columns that differ from the snapshot.
func (e *entry) changedColumns() []int {
	values := e.mapping.valuesOf(e.entity)
	if e.snapshot == nil || e.allColumns {
		all := make([]int, len(values))
		for i := range values {
			all[i] = i
		}
		return all
	}

	var changed []int
	for i, v := range values {
		if !valuesEqual(e.snapshot[i], v) {
			changed = append(changed, i)
		}
	}
	return changed
}

// tracker is the change tracker and identity map of one session.
type tracker struct {
	byEntity map[any]*entry
	byKey    map[tableKey]*entry
	seq      int
}

func newTracker() *tracker {
	return &tracker{
		byEntity: make(map[any]*entry),
		byKey:    make(map[tableKey]*entry),
	}
}

func (t *tracker) get(entity any) *entry {
	return t.byEntity[entity]
}

func (t *tracker) lookup(table string, id int64) *entry {
	if id == 0 {
		return nil
	}
	return t.byKey[tableKey{table: table, id: id}]
}

// track starts tracking entity in the given state.
func (t *tracker) track(entity any, m mapper, state EntityState) (*entry, error) {
	id := m.keyOf(entity)
	if other := t.lookup(m.table(), id); other != nil && other.entity != entity {
		return nil, fmt.Errorf("%w: %s %d", ErrIdentityConflict, m.table(), id)
	}

	t.seq++
	e := &entry{entity: entity, mapping: m, state: state, seq: t.seq}
	if state == Unchanged {
		e.takeSnapshot()
	}

	t.byEntity[entity] = e
	if id != 0 {
		t.byKey[e.key()] = e
	}
	return e, nil
}

func (t *tracker) detach(e *entry) {
	delete(t.byEntity, e.entity)
	if k := e.key(); k.id != 0 && t.byKey[k] == e {
		delete(t.byKey, k)
	}
	e.state = Detached
}

func (t *tracker) entries() []*entry {
	list := make([]*entry, 0, len(t.byEntity))
	for _, e := range t.byEntity {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].seq < list[j].seq })
	return list
}

// detectChanges marks Unchanged entities whose values drifted from their
// snapshot. Detected entities whose values were reverted become Unchanged
// again.
func (t *tracker) detectChanges() {
	for _, e := range t.byEntity {
		switch {
		case e.state == Unchanged && len(e.changedColumns()) > 0:
			e.state = Modified
		case e.state == Modified && e.snapshot != nil && !e.allColumns && len(e.changedColumns()) == 0:
			e.state = Unchanged
		}
	}
}

// entrySave is what a failed SaveChanges puts back into one entry.
type entrySave struct {
	e          *entry
	fields     any
	state      EntityState
	allColumns bool
}

// save records every tracked entity so restore can undo a failed save.
func (t *tracker) save() []entrySave {
	saved := make([]entrySave, 0, len(t.byEntity))
	for _, e := range t.byEntity {
		saved = append(saved, entrySave{
			e:          e,
			fields:     e.mapping.copyOf(e.entity),
			state:      e.state,
			allColumns: e.allColumns,
		})
	}
	return saved
}

func (t *tracker) restore(saved []entrySave) {
	for _, s := range saved {
		s.e.mapping.restore(s.e.entity, s.fields)
		s.e.state = s.state
		s.e.allColumns = s.allColumns
	}
}

// pending splits the work of a SaveChanges into statement order:
// deletes dependents first, inserts and updates principals first.
func (t *tracker) pending() (deletes, inserts, updates []*entry) {
	for _, e := range t.entries() {
		switch e.state {
		case Deleted:
			deletes = append(deletes, e)
		case Added:
			inserts = append(inserts, e)
		case Modified:
			updates = append(updates, e)
		}
	}

	byRank := func(list []*entry, desc bool) {
		sort.SliceStable(list, func(i, j int) bool {
			if desc {
				return list[i].mapping.rank() > list[j].mapping.rank()
			}
			return list[i].mapping.rank() < list[j].mapping.rank()
		})
	}
	byRank(deletes, true)
	byRank(inserts, false)
	byRank(updates, false)

	return deletes, inserts, updates
}

// accept records a successful save: saved entities become Unchanged with a
// fresh snapshot, deleted ones are detached together with tracked
// dependents the database removed by cascade.
func (t *tracker) accept(deletes, saved []*entry) {
	removed := make(map[tableKey]bool, len(deletes))
	for _, e := range deletes {
		removed[e.key()] = true
		t.detach(e)
	}

	for _, e := range saved {
		e.state = Unchanged
		e.allColumns = false
		e.takeSnapshot()
		t.byKey[e.key()] = e
	}

	for len(removed) > 0 {
		cascaded := make(map[tableKey]bool)
		for _, e := range t.entries() {
			for _, ref := range e.mapping.referencesOf(e.entity) {
				if removed[ref] {
					cascaded[e.key()] = true
					t.detach(e)
					break
				}
			}
		}
		removed = cascaded
	}
}

func (t *tracker) clear() {
	for _, e := range t.byEntity {
		e.state = Detached
	}
	t.byEntity = make(map[any]*entry)
	t.byKey = make(map[tableKey]*entry)
}
