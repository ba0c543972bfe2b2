package repository

import (
	"github.com/deppfellow/contosopizza/internal/server"
	"github.com/rs/zerolog"
)

// Repositories is the session factory handed to the service layer.
//
// It holds the shared pool and logger; every unit of work gets its own
// Session from NewSession.
type Repositories struct {
	db     DB
	logger *zerolog.Logger
}

// NewRepositories constructs the repository container from the application
// container (DB pool lives on s.DB, logger on s.Logger).
func NewRepositories(s *server.Server) *Repositories {
	return NewRepositoriesWithDB(s.DB.Pool, s.Logger)
}

// NewRepositoriesWithDB builds the container on any DB, e.g. a single
// connection in a CLI or a fake in tests.
func NewRepositoriesWithDB(db DB, logger *zerolog.Logger) *Repositories {
	return &Repositories{db: db, logger: logger}
}

// NewSession opens a fresh unit of work.
func (r *Repositories) NewSession() *Session {
	return NewSession(r.db, r.logger)
}
