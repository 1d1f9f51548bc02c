// Package mongostore keeps performance records in a MongoDB collection, one
// document per learner.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/abhisek/brightpath/internal/performance"
	"github.com/abhisek/brightpath/internal/store"
)

// CollectionName is the collection holding performance records.
const CollectionName = "performance_records"

// recordDocument is the stored shape. Data holds the History as a nested
// document so it stays queryable from the mongo shell.
type recordDocument struct {
	LearnerID string    `bson:"learnerId"`
	Version   int64     `bson:"version"`
	Format    string    `bson:"format"`
	Data      bson.M    `bson:"data"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// RecordRepo implements store.RecordRepo on a mongo collection.
type RecordRepo struct {
	col *mongo.Collection
	now func() time.Time
}

var _ store.RecordRepo = (*RecordRepo)(nil)

// New returns a RecordRepo over db's performance_records collection.
func New(db *mongo.Database) *RecordRepo {
	return &RecordRepo{col: db.Collection(CollectionName), now: time.Now}
}

// Connect dials uri, verifies the connection and ensures indexes. The caller
// owns the returned client and must Disconnect it.
func Connect(ctx context.Context, uri, database string) (*mongo.Client, *RecordRepo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	repo := New(client.Database(database))
	if err := repo.EnsureIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, nil, err
	}
	return client, repo, nil
}

// EnsureIndexes creates the unique learner index that guards inserts.
func (r *RecordRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "learnerId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create learner index: %w", err)
	}
	return nil
}

func (r *RecordRepo) Get(ctx context.Context, learnerID string) (*store.Record, error) {
	var doc recordDocument
	err := r.col.FindOne(ctx, bson.M{"learnerId": learnerID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find record: %w", err)
	}
	return fromDocument(doc)
}

func (r *RecordRepo) Update(ctx context.Context, learnerID string, fn store.UpdateFunc) (*store.Record, error) {
	current, err := r.Get(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	base := performance.NewHistory()
	var version int64
	if current != nil {
		base = current.History
		version = current.Version
	}

	next, err := fn(base.Clone())
	if err != nil {
		return nil, err
	}

	now := r.now().UTC()
	next.LastUpdated = now
	doc, err := toDocument(learnerID, version+1, next, now)
	if err != nil {
		return nil, err
	}

	if current == nil {
		if _, err := r.col.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, store.ErrConflict
			}
			return nil, fmt.Errorf("insert record: %w", err)
		}
	} else {
		res, err := r.col.UpdateOne(ctx,
			bson.M{"learnerId": learnerID, "version": version},
			bson.M{"$set": bson.M{
				"version":   doc.Version,
				"format":    doc.Format,
				"data":      doc.Data,
				"updatedAt": doc.UpdatedAt,
			}},
		)
		if err != nil {
			return nil, fmt.Errorf("update record: %w", err)
		}
		if res.MatchedCount == 0 {
			return nil, store.ErrConflict
		}
	}

	return &store.Record{
		LearnerID: learnerID,
		Version:   doc.Version,
		Format:    doc.Format,
		History:   next,
		UpdatedAt: now,
		Recovered: current != nil && current.Recovered,
	}, nil
}

func (r *RecordRepo) Delete(ctx context.Context, learnerID string) error {
	if _, err := r.col.DeleteOne(ctx, bson.M{"learnerId": learnerID}); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

func (r *RecordRepo) List(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"learnerId": 1}).
		SetSort(bson.D{{Key: "learnerId", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	var docs []recordDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.LearnerID)
	}
	return ids, nil
}

// toDocument converts h to its stored form. The JSON encoding is the source
// of truth so both backends share one format and one migration path.
func toDocument(learnerID string, version int64, h performance.History, now time.Time) (recordDocument, error) {
	data, format, err := store.EncodeHistory(h)
	if err != nil {
		return recordDocument{}, err
	}
	var m bson.M
	if err := bson.UnmarshalExtJSON(data, false, &m); err != nil {
		return recordDocument{}, fmt.Errorf("convert history: %w", err)
	}
	return recordDocument{
		LearnerID: learnerID,
		Version:   version,
		Format:    format,
		Data:      m,
		UpdatedAt: now,
	}, nil
}

func fromDocument(doc recordDocument) (*store.Record, error) {
	rec := &store.Record{
		LearnerID: doc.LearnerID,
		Version:   doc.Version,
		Format:    doc.Format,
		UpdatedAt: doc.UpdatedAt,
	}

	data, err := bson.MarshalExtJSON(doc.Data, false, false)
	if err != nil {
		rec.History = performance.NewHistory()
		rec.Recovered = true
		return rec, nil
	}

	h, err := store.DecodeHistory(data, doc.Format)
	switch {
	case errors.Is(err, store.ErrUnsupportedFormat):
		return nil, err
	case err != nil:
		rec.History = performance.NewHistory()
		rec.Recovered = true
	default:
		rec.History = h
	}
	return rec, nil
}
