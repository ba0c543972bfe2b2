package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var (
	// ErrConcurrencyConflict is returned by SaveChanges when an update or
	// delete matched no row, i.e. someone else deleted it first.
	ErrConcurrencyConflict = errors.New("row was changed or deleted concurrently")

	// ErrKeyAssigned is returned when adding an entity that already has a key.
	ErrKeyAssigned = errors.New("key is generated by the database")
)

// notFound tags pgx.ErrNoRows with the table so sqlerr can name the entity.
func notFound(table string) error {
	return fmt.Errorf("table:%s:%w", table, pgx.ErrNoRows)
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
