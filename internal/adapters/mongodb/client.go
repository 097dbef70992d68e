package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	UsersCollection         = "users"
	TripsCollection         = "trips"
	NotificationsCollection = "notifications"
	IdempotencyCollection   = "idempotency_keys"

	// UsersEmailIndex is the unique index that makes signup races safe.
	UsersEmailIndex = "users_email_unique"

	// IdempotencyTTLIndex expires replay records by created_at.
	IdempotencyTTLIndex = "idempotency_created_at_ttl"
)

// Server error codes returned when an index already exists with different options.
const (
	codeIndexOptionsConflict  = 85
	codeIndexKeySpecsConflict = 86
)

// Connect opens a client for uri and pings the primary so that a bad configuration fails at startup.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	if uri == "" {
		return nil, errors.New("missing MONGO_URI")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the repositories rely on for uniqueness and ordering.
// A positive idempotencyTTL also adds a TTL index so the server expires replay records.
func EnsureIndexes(ctx context.Context, d *mongo.Database, idempotencyTTL time.Duration) error {
	if _, err := d.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName(UsersEmailIndex),
	}); err != nil {
		return fmt.Errorf("users index: %w", err)
	}

	if _, err := d.Collection(TripsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}},
	}); err != nil {
		return fmt.Errorf("trips index: %w", err)
	}

	if _, err := d.Collection(NotificationsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
	}); err != nil {
		return fmt.Errorf("notifications index: %w", err)
	}

	if _, err := d.Collection(IdempotencyCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "idempotency_key", Value: 1},
			{Key: "method", Value: 1},
			{Key: "route", Value: 1},
			{Key: "body_hash", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("idempotency index: %w", err)
	}

	if idempotencyTTL > 0 {
		if err := ensureTTLIndex(ctx, d, IdempotencyCollection, "created_at", IdempotencyTTLIndex, idempotencyTTL); err != nil {
			return fmt.Errorf("idempotency ttl index: %w", err)
		}
	}
	return nil
}

// ensureTTLIndex creates a TTL index on field, or updates expireAfterSeconds in place
// when the index already exists with a different TTL.
func ensureTTLIndex(ctx context.Context, d *mongo.Database, coll, field, name string, ttl time.Duration) error {
	secs := int32(ttl / time.Second)
	_, err := d.Collection(coll).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(secs).SetName(name),
	})
	if err == nil || !isIndexConflict(err) {
		return err
	}
	// Matching by key pattern also updates an index created under another name.
	return d.RunCommand(ctx, bson.D{
		{Key: "collMod", Value: coll},
		{Key: "index", Value: bson.D{
			{Key: "keyPattern", Value: bson.D{{Key: field, Value: 1}}},
			{Key: "expireAfterSeconds", Value: secs},
		}},
	}).Err()
}

func isIndexConflict(err error) bool {
	var ce mongo.CommandError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Code == codeIndexOptionsConflict || ce.Code == codeIndexKeySpecsConflict
}
