package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLiteStore(t *testing.T) Store {
	t.Helper()
	st, err := Open(context.Background(), Config{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "warnings.sqlite3"),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// backends lists every Store implementation the shared cases run against
var backends = []struct {
	name string
	open func(t *testing.T) Store
}{
	{"sqlite", openSQLiteStore},
	{"mongo", openMongoStore},
}

func forEachBackend(t *testing.T, fn func(t *testing.T, st Store)) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			fn(t, b.open(t))
		})
	}
}

func warn(subject, reason string) NewWarning {
	return NewWarning{GuildID: "g1", SubjectID: subject, ModeratorID: "mod1", Reason: reason}
}

func TestInsertAssignsIncreasingIDs(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st Store) {
		ctx := context.Background()

		first, err := st.Insert(ctx, warn("u1", "spam"))
		require.NoError(t, err)
		second, err := st.Insert(ctx, warn("u2", "flood"))
		require.NoError(t, err)

		assert.Greater(t, second.ID, first.ID)
		assert.True(t, second.CreatedAt.After(first.CreatedAt))
		assert.Equal(t, "u1", first.SubjectID)
		assert.Equal(t, "mod1", first.ModeratorID)
		assert.Equal(t, "spam", first.Reason)
		assert.Equal(t, "g1", first.GuildID)
	})
}

func TestInsertRejectsInvalidInput(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st Store) {
		ctx := context.Background()

		tests := []struct {
			name string
			in   NewWarning
		}{
			{"empty reason", warn("u1", "")},
			{"blank reason", warn("u1", "   ")},
			{"no subject", warn("", "spam")},
			{"no moderator", NewWarning{SubjectID: "u1", Reason: "spam"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := st.Insert(ctx, tt.in)
				assert.ErrorIs(t, err, ErrValidation)
			})
		}

		n, err := st.CountFor(ctx, "u1")
		require.NoError(t, err)
		assert.Zero(t, n, "invalid inserts must not write")
	})
}

func TestCountAndListFor(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st Store) {
		ctx := context.Background()

		n, err := st.CountFor(ctx, "nobody")
		require.NoError(t, err)
		assert.Zero(t, n)

		list, err := st.ListFor(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, list)

		for i := 1; i <= 3; i++ {
			_, err := st.Insert(ctx, warn("u1", fmt.Sprintf("r%d", i)))
			require.NoError(t, err)
		}
		_, err = st.Insert(ctx, warn("u2", "other"))
		require.NoError(t, err)

		n, err = st.CountFor(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		list, err = st.ListFor(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "r1", list[0].Reason)
		assert.Equal(t, "r2", list[1].Reason)
		assert.Equal(t, "r3", list[2].Reason)
		for i := 1; i < len(list); i++ {
			assert.Greater(t, list[i].ID, list[i-1].ID)
			assert.False(t, list[i].CreatedAt.Before(list[i-1].CreatedAt))
		}
	})
}

func TestListRecentNewestFirst(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st Store) {
		ctx := context.Background()

		empty, err := st.ListRecent(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, empty)

		for i := 1; i <= 12; i++ {
			_, err := st.Insert(ctx, warn(fmt.Sprintf("u%d", i%3), fmt.Sprintf("r%d", i)))
			require.NoError(t, err)
		}

		recent, err := st.ListRecent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, recent, 10)
		assert.Equal(t, "r12", recent[0].Reason)
		assert.Equal(t, "r3", recent[9].Reason)

		recent, err = st.ListRecent(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, recent, DefaultHistoryLimit)

		recent, err = st.ListRecent(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, recent, 2)
	})
}

func TestClearForOnlyAffectsSubject(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st Store) {
		ctx := context.Background()

		for i := 0; i < 4; i++ {
			_, err := st.Insert(ctx, warn("u1", "spam"))
			require.NoError(t, err)
		}
		_, err := st.Insert(ctx, warn("u2", "flood"))
		require.NoError(t, err)

		removed, err := st.ClearFor(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 4, removed)

		n, err := st.CountFor(ctx, "u1")
		require.NoError(t, err)
		assert.Zero(t, n)

		n, err = st.CountFor(ctx, "u2")
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		removed, err = st.ClearFor(ctx, "u1")
		require.NoError(t, err)
		assert.Zero(t, removed)
	})
}

func TestIDsNotReusedAfterClear(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st Store) {
		ctx := context.Background()

		before, err := st.Insert(ctx, warn("u1", "spam"))
		require.NoError(t, err)
		_, err = st.ClearFor(ctx, "u1")
		require.NoError(t, err)

		after, err := st.Insert(ctx, warn("u1", "spam again"))
		require.NoError(t, err)
		assert.Greater(t, after.ID, before.ID)

		n, err := st.CountFor(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 1, n, "count restarts after clear")
	})
}

func TestConcurrentInsertsAreCounted(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st Store) {
		ctx := context.Background()

		const workers = 20
		var wg sync.WaitGroup
		wg.Add(workers)
		for i := 0; i < workers; i++ {
			go func(i int) {
				defer wg.Done()
				_, err := st.Insert(ctx, warn("u1", fmt.Sprintf("r%d", i)))
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		n, err := st.CountFor(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, workers, n)

		list, err := st.ListFor(ctx, "u1")
		require.NoError(t, err)
		seen := make(map[int64]bool, len(list))
		for _, w := range list {
			assert.False(t, seen[w.ID], "duplicate id %d", w.ID)
			seen[w.ID] = true
		}
	})
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	st, err := OpenSQLite(ctx, Config{Path: path})
	require.NoError(t, err)
	first, err := st.Insert(ctx, warn("u1", "spam"))
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = OpenSQLite(ctx, Config{Path: path})
	require.NoError(t, err)
	defer st.Close()

	n, err := st.CountFor(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	second, err := st.Insert(ctx, warn("u1", "again"))
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)
	assert.True(t, second.CreatedAt.After(first.CreatedAt))
}

func TestClosedStoreIsUnavailable(t *testing.T) {
	ctx := context.Background()
	st, err := OpenSQLite(ctx, Config{Path: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	_, err = st.Insert(ctx, warn("u1", "spam"))
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = st.CountFor(ctx, "u1")
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = st.ListRecent(ctx, 10)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	assert.ErrorIs(t, st.Ping(ctx), ErrStoreUnavailable)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "postgres"}, nil)
	assert.Error(t, err)

	_, err = Open(context.Background(), Config{Driver: "mongo"}, nil)
	assert.Error(t, err)
}

func TestMonotonicClock(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := monotonicClock{resolution: time.Millisecond, now: func() time.Time { return fixed }}

	a := c.next()
	b := c.next()
	assert.Equal(t, fixed, a)
	assert.Equal(t, fixed.Add(time.Millisecond), b)

	c.now = func() time.Time { return fixed.Add(-time.Hour) }
	assert.True(t, c.next().After(b), "clock going backwards must not reorder")
}

func TestApplyPragmas(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "pragmas.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	assert.Empty(t, applyPragmas(ctx, db, 1500*time.Millisecond))

	var mode string
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var busy int
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&busy))
	assert.Equal(t, 1500, busy)

	require.NoError(t, db.Close())
	errs := applyPragmas(ctx, db, time.Second)
	assert.Len(t, errs, 3, "every pragma failure is reported")
}

func TestApplyPragmasReportsJournalFallback(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	errs := applyPragmas(context.Background(), db, time.Second)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "journal_mode=memory")
}
