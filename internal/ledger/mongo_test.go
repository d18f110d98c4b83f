package ledger

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
)

// One container serves the whole package; every store gets its own database.
var mongoEnv struct {
	once      sync.Once
	container *tcmongo.MongoDBContainer
	uri       string
	err       error
}

func TestMain(m *testing.M) {
	code := m.Run()
	if mongoEnv.container != nil {
		_ = testcontainers.TerminateContainer(mongoEnv.container)
	}
	os.Exit(code)
}

func newMongoDatabase(t *testing.T) *database.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("el ledger MongoDB necesita Docker; omitido con -short")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	mongoEnv.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		container, err := tcmongo.Run(ctx, "mongo:7")
		if err != nil {
			mongoEnv.err = err
			return
		}
		mongoEnv.container = container
		mongoEnv.uri, mongoEnv.err = container.ConnectionString(ctx)
	})
	require.NoError(t, mongoEnv.err, "failed to start mongo container")

	db := database.NewDatabase(mongoEnv.uri, "ledger_"+strings.ReplaceAll(uuid.NewString(), "-", ""))
	require.NoError(t, db.Connect())
	t.Cleanup(func() { _ = db.Disconnect() })
	return db
}

func openMongoStore(t *testing.T) Store {
	t.Helper()
	st, err := OpenMongo(context.Background(), newMongoDatabase(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestMongoCounterSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	db := newMongoDatabase(t)

	st, err := OpenMongo(ctx, db)
	require.NoError(t, err)
	first, err := st.Insert(ctx, warn("u1", "spam"))
	require.NoError(t, err)
	removed, err := st.ClearFor(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	// Reopening recreates indexes on a populated database and must not reset the counter
	st, err = OpenMongo(ctx, db)
	require.NoError(t, err)
	second, err := st.Insert(ctx, warn("u1", "again"))
	require.NoError(t, err)

	assert.Greater(t, second.ID, first.ID)
	assert.False(t, second.CreatedAt.Before(first.CreatedAt))

	list, err := st.ListFor(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, "g1", list[0].GuildID)
	assert.Equal(t, "mod1", list[0].ModeratorID)
}

func TestMongoPing(t *testing.T) {
	st := openMongoStore(t)
	assert.NoError(t, st.Ping(context.Background()))
}
