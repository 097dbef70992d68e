package idempotency

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Overland-East-Bay/roadbook-api/internal/adapters/mongodb"
	"github.com/Overland-East-Bay/roadbook-api/internal/ports/out/idempotency"
)

type recordDoc struct {
	Key         string    `bson:"idempotency_key"`
	Method      string    `bson:"method"`
	Route       string    `bson:"route"`
	BodyHash    string    `bson:"body_hash"`
	StatusCode  int       `bson:"status_code"`
	ContentType string    `bson:"content_type"`
	Body        []byte    `bson:"body"`
	CreatedAt   time.Time `bson:"created_at"`
}

// Store is a MongoDB implementation of idempotency.Store.
// The TTL index removes expired records eventually; Get also hides them until then.
type Store struct {
	coll      *mongo.Collection
	retention time.Duration
}

// NewStore returns a store with the given retention. A non-positive retention keeps records forever.
func NewStore(d *mongo.Database, retention time.Duration) *Store {
	return &Store{coll: d.Collection(mongodb.IdempotencyCollection), retention: retention}
}

func fingerprintFilter(fp idempotency.Fingerprint) bson.M {
	return bson.M{
		"idempotency_key": string(fp.Key),
		"method":          fp.Method,
		"route":           fp.Route,
		"body_hash":       fp.BodyHash,
	}
}

func (s *Store) Get(ctx context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	filter := fingerprintFilter(fp)
	if s.retention > 0 {
		filter["created_at"] = bson.M{"$gt": time.Now().UTC().Add(-s.retention)}
	}
	var doc recordDoc
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return idempotency.Record{}, false, nil
		}
		return idempotency.Record{}, false, err
	}
	return idempotency.Record{
		StatusCode:  doc.StatusCode,
		ContentType: doc.ContentType,
		Body:        doc.Body,
		CreatedAt:   doc.CreatedAt.UTC(),
	}, true, nil
}

func (s *Store) Put(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.coll.UpdateOne(
		ctx,
		fingerprintFilter(fp),
		bson.M{"$set": bson.M{
			"status_code":  rec.StatusCode,
			"content_type": rec.ContentType,
			"body":         rec.Body,
			"created_at":   createdAt.UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	return err
}
