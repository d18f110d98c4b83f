package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/models"

	_ "modernc.org/sqlite"
)

// AUTOINCREMENT keeps ids from being reused after ClearFor.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS warnings (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	guild_id     TEXT    NOT NULL DEFAULT '',
	user_id      TEXT    NOT NULL,
	moderator_id TEXT    NOT NULL,
	reason       TEXT    NOT NULL,
	created_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_warnings_user ON warnings(user_id, id);
`

type sqliteStore struct {
	db      *sql.DB
	writeMu sync.Mutex
	clock   monotonicClock
}

// OpenSQLite opens (or creates) the SQLite ledger at cfg.Path
func OpenSQLite(ctx context.Context, cfg Config) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = time.Second
	}
	for _, err := range applyPragmas(ctx, db, busy) {
		logger.Warn(err.Error(), "Ledger")
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("crear esquema: %w", err)
	}

	st := &sqliteStore{
		db:    db,
		clock: monotonicClock{resolution: time.Nanosecond, now: time.Now},
	}

	var last sql.NullInt64
	if err := db.QueryRowContext(ctx, `SELECT MAX(created_at) FROM warnings`).Scan(&last); err != nil {
		_ = db.Close()
		return nil, err
	}
	if last.Valid {
		st.clock.last = time.Unix(0, last.Int64).UTC()
	}

	logger.System(fmt.Sprintf("Ledger SQLite listo en '%s'", path), "Ledger")
	return st, nil
}

// applyPragmas tunes the connection for a single writer. The ledger still
// works without them, so failures are returned for logging, not aborted on.
func applyPragmas(ctx context.Context, db *sql.DB, busy time.Duration) []error {
	var errs []error

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout = %d", busy.Milliseconds())); err != nil {
		errs = append(errs, fmt.Errorf("no se pudo fijar busy_timeout: %w", err))
	}

	var mode string
	if err := db.QueryRowContext(ctx, "PRAGMA journal_mode = WAL").Scan(&mode); err != nil {
		errs = append(errs, fmt.Errorf("no se pudo activar WAL: %w", err))
	} else if !strings.EqualFold(mode, "wal") {
		errs = append(errs, fmt.Errorf("SQLite sigue en journal_mode=%s en lugar de WAL", mode))
	}

	if _, err := db.ExecContext(ctx, "PRAGMA synchronous = NORMAL"); err != nil {
		errs = append(errs, fmt.Errorf("no se pudo fijar synchronous: %w", err))
	}
	return errs
}

func (s *sqliteStore) Insert(ctx context.Context, w NewWarning) (models.Warning, error) {
	if err := w.Validate(); err != nil {
		return models.Warning{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	created := s.clock.next()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO warnings(guild_id, user_id, moderator_id, reason, created_at) VALUES(?,?,?,?,?)`,
		w.GuildID, w.SubjectID, w.ModeratorID, w.Reason, created.UnixNano(),
	)
	if err != nil {
		return models.Warning{}, unavailable("insert", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Warning{}, unavailable("insert", err)
	}

	return models.Warning{
		ID:          id,
		GuildID:     w.GuildID,
		SubjectID:   w.SubjectID,
		ModeratorID: w.ModeratorID,
		Reason:      w.Reason,
		CreatedAt:   created,
	}, nil
}

func (s *sqliteStore) CountFor(ctx context.Context, subjectID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM warnings WHERE user_id = ?`, subjectID).Scan(&n)
	if err != nil {
		return 0, unavailable("count", err)
	}
	return n, nil
}

func (s *sqliteStore) ListFor(ctx context.Context, subjectID string) ([]models.Warning, error) {
	return s.query(ctx, "list",
		`SELECT id, guild_id, user_id, moderator_id, reason, created_at
		 FROM warnings WHERE user_id = ? ORDER BY id ASC`,
		subjectID,
	)
}

func (s *sqliteStore) ListRecent(ctx context.Context, limit int) ([]models.Warning, error) {
	return s.query(ctx, "recent",
		`SELECT id, guild_id, user_id, moderator_id, reason, created_at
		 FROM warnings ORDER BY id DESC LIMIT ?`,
		normalizeLimit(limit),
	)
}

func (s *sqliteStore) ClearFor(ctx context.Context, subjectID string) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM warnings WHERE user_id = ?`, subjectID)
	if err != nil {
		return 0, unavailable("clear", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, unavailable("clear", err)
	}
	return int(n), nil
}

func (s *sqliteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) query(ctx context.Context, op, q string, args ...any) ([]models.Warning, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, unavailable(op, err)
	}
	defer rows.Close()

	out := make([]models.Warning, 0)
	for rows.Next() {
		var (
			w       models.Warning
			created int64
		)
		if err := rows.Scan(&w.ID, &w.GuildID, &w.SubjectID, &w.ModeratorID, &w.Reason, &created); err != nil {
			return nil, unavailable(op, err)
		}
		w.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(op, err)
	}
	return out, nil
}
