// Package ledger persists moderator warnings.
//
// The ledger is append-only: records are inserted, counted and listed, and the
// only mutation is deleting every record of one subject at once. Ids are
// assigned by the store, never reused, and follow insertion order, so ordering
// by id is the same as ordering by created_at.
//
// Two backends exist: SQLite (default, single file) and MongoDB. Both serialize
// writes internally so that Insert followed by CountFor in the same command
// observes its own row.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/database"
	"github.com/PancyStudios/PancyModGo/pkg/models"
)

// DefaultHistoryLimit is the number of entries returned by ListRecent when no limit is given
const DefaultHistoryLimit = 10

var (
	// ErrValidation is returned for malformed input; nothing is written.
	ErrValidation = errors.New("advertencia inválida")
	// ErrStoreUnavailable wraps any failure of the underlying persistence layer.
	ErrStoreUnavailable = errors.New("ledger no disponible")
)

// NewWarning holds the caller-supplied fields of a warning.
// Id and timestamp are assigned by the store.
type NewWarning struct {
	GuildID     string
	SubjectID   string
	ModeratorID string
	Reason      string
}

// Validate checks the fields required by every backend
func (w NewWarning) Validate() error {
	switch {
	case strings.TrimSpace(w.SubjectID) == "":
		return fmt.Errorf("%w: falta el usuario", ErrValidation)
	case strings.TrimSpace(w.ModeratorID) == "":
		return fmt.Errorf("%w: falta el moderador", ErrValidation)
	case strings.TrimSpace(w.Reason) == "":
		return fmt.Errorf("%w: la razón está vacía", ErrValidation)
	}
	return nil
}

// Store is the persistence API used by the moderation service
type Store interface {
	// Insert appends one warning and returns it with id and created_at set.
	Insert(ctx context.Context, w NewWarning) (models.Warning, error)
	// CountFor returns the number of live warnings of the subject.
	CountFor(ctx context.Context, subjectID string) (int, error)
	// ListFor returns the subject's warnings, oldest first.
	ListFor(ctx context.Context, subjectID string) ([]models.Warning, error)
	// ListRecent returns the newest warnings across all subjects, newest first.
	ListRecent(ctx context.Context, limit int) ([]models.Warning, error)
	// ClearFor deletes every warning of the subject and returns how many were removed.
	ClearFor(ctx context.Context, subjectID string) (int, error)
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// Config selects and configures the backend.
//
// Driver values:
//   - "sqlite": SQLite database file at Path (default)
//   - "mongo": MongoDB through the shared database connection
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Open initializes the configured store and ensures its schema.
// db is only used by the mongo driver and may be nil otherwise.
func Open(ctx context.Context, cfg Config, db *database.Database) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "sqlite", "sqlite3":
		return OpenSQLite(ctx, cfg)
	case "mongo", "mongodb":
		if db == nil {
			return nil, errors.New("mongo ledger requires a database connection")
		}
		return OpenMongo(ctx, db)
	default:
		return nil, fmt.Errorf("unknown ledger driver: %s", cfg.Driver)
	}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	return limit
}

// monotonicClock hands out strictly increasing timestamps at the given resolution,
// so created_at never goes backwards relative to id even if the wall clock does.
type monotonicClock struct {
	last       time.Time
	resolution time.Duration
	now        func() time.Time
}

func (c *monotonicClock) next() time.Time {
	t := c.now().UTC().Truncate(c.resolution)
	if !t.After(c.last) {
		t = c.last.Add(c.resolution)
	}
	c.last = t
	return t
}
