package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/database"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	warningsCollection = "warnings"
	countersCollection = "counters"
	warningsCounterID  = "warnings"
)

type mongoStore struct {
	db      *database.Database
	writeMu sync.Mutex
	clock   monotonicClock
}

// OpenMongo prepares the Mongo ledger on an established connection.
// Index creation is idempotent.
func OpenMongo(ctx context.Context, db *database.Database) (Store, error) {
	if !db.Connected() {
		return nil, unavailable("open", database.ErrNotConnected)
	}

	err := db.EnsureIndexes(ctx, warningsCollection,
		mongo.IndexModel{Keys: bson.D{{Key: "subject_id", Value: 1}, {Key: "_id", Value: 1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "created_at", Value: -1}}},
	)
	if err != nil {
		return nil, unavailable("open", err)
	}

	st := &mongoStore{
		db:    db,
		clock: monotonicClock{resolution: time.Millisecond, now: time.Now},
	}

	var last models.Warning
	err = db.GetCollection(warningsCollection).
		FindOne(ctx, bson.M{}, options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})).
		Decode(&last)
	switch {
	case err == nil:
		st.clock.last = last.CreatedAt.UTC()
	case err != mongo.ErrNoDocuments:
		return nil, unavailable("open", err)
	}

	logger.System("Ledger MongoDB listo", "Ledger")
	return st, nil
}

func (s *mongoStore) collection(name string) (*mongo.Collection, error) {
	if !s.db.Connected() {
		return nil, database.ErrNotConnected
	}
	col := s.db.GetCollection(name)
	if col == nil {
		return nil, database.ErrNotConnected
	}
	return col, nil
}

// fail wraps err and flags the connection for reconnect on network errors
func (s *mongoStore) fail(op string, err error) error {
	if mongo.IsNetworkError(err) {
		s.db.MarkDisconnected()
	}
	return unavailable(op, err)
}

func (s *mongoStore) nextID(ctx context.Context) (int64, error) {
	counters, err := s.collection(countersCollection)
	if err != nil {
		return 0, err
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter models.LedgerCounter
	err = counters.FindOneAndUpdate(ctx,
		bson.M{"_id": warningsCounterID},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

func (s *mongoStore) Insert(ctx context.Context, w NewWarning) (models.Warning, error) {
	if err := w.Validate(); err != nil {
		return models.Warning{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	col, err := s.collection(warningsCollection)
	if err != nil {
		return models.Warning{}, unavailable("insert", err)
	}

	id, err := s.nextID(ctx)
	if err != nil {
		return models.Warning{}, s.fail("insert", err)
	}

	record := models.Warning{
		ID:          id,
		GuildID:     w.GuildID,
		SubjectID:   w.SubjectID,
		ModeratorID: w.ModeratorID,
		Reason:      w.Reason,
		CreatedAt:   s.clock.next(),
	}
	if _, err := col.InsertOne(ctx, record); err != nil {
		return models.Warning{}, s.fail("insert", err)
	}
	return record, nil
}

func (s *mongoStore) CountFor(ctx context.Context, subjectID string) (int, error) {
	col, err := s.collection(warningsCollection)
	if err != nil {
		return 0, unavailable("count", err)
	}
	n, err := col.CountDocuments(ctx, bson.M{"subject_id": subjectID})
	if err != nil {
		return 0, s.fail("count", err)
	}
	return int(n), nil
}

func (s *mongoStore) ListFor(ctx context.Context, subjectID string) ([]models.Warning, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	return s.find(ctx, "list", bson.M{"subject_id": subjectID}, opts)
}

func (s *mongoStore) ListRecent(ctx context.Context, limit int) ([]models.Warning, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(int64(normalizeLimit(limit)))
	return s.find(ctx, "recent", bson.M{}, opts)
}

func (s *mongoStore) ClearFor(ctx context.Context, subjectID string) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	col, err := s.collection(warningsCollection)
	if err != nil {
		return 0, unavailable("clear", err)
	}
	res, err := col.DeleteMany(ctx, bson.M{"subject_id": subjectID})
	if err != nil {
		return 0, s.fail("clear", err)
	}
	return int(res.DeletedCount), nil
}

func (s *mongoStore) Ping(ctx context.Context) error {
	if _, err := s.db.Ping(); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// Close is a no-op; the shared connection is owned by main.
func (s *mongoStore) Close() error {
	return nil
}

func (s *mongoStore) find(ctx context.Context, op string, filter bson.M, opts *options.FindOptions) ([]models.Warning, error) {
	col, err := s.collection(warningsCollection)
	if err != nil {
		return nil, unavailable(op, err)
	}

	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, s.fail(op, err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	out := make([]models.Warning, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, s.fail(op, err)
	}
	for i := range out {
		out[i].CreatedAt = out[i].CreatedAt.UTC()
	}
	return out, nil
}
