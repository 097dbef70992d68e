package mongodb_test

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Overland-East-Bay/roadbook-api/internal/adapters/mongodb"
	"github.com/Overland-East-Bay/roadbook-api/internal/adapters/mongodb/testutil"
)

func TestEnsureIndexes_TTLChangeUpdatesExistingIndex(t *testing.T) {
	db := testutil.OpenIndexedDatabase(t)
	ctx := context.Background()

	// OpenIndexedDatabase already created the TTL index with one hour.
	if err := mongodb.EnsureIndexes(ctx, db, 2*time.Hour); err != nil {
		t.Fatalf("EnsureIndexes with new ttl: %v", err)
	}
	// Unchanged settings are a no-op.
	if err := mongodb.EnsureIndexes(ctx, db, 2*time.Hour); err != nil {
		t.Fatalf("EnsureIndexes again: %v", err)
	}

	cur, err := db.Collection(mongodb.IdempotencyCollection).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes: %v", err)
	}
	var specs []bson.M
	if err := cur.All(ctx, &specs); err != nil {
		t.Fatalf("decode indexes: %v", err)
	}
	var found bool
	for _, spec := range specs {
		if spec["name"] != mongodb.IdempotencyTTLIndex {
			continue
		}
		found = true
		var secs int64
		switch v := spec["expireAfterSeconds"].(type) {
		case int32:
			secs = int64(v)
		case int64:
			secs = v
		case float64:
			secs = int64(v)
		}
		if secs != int64((2 * time.Hour).Seconds()) {
			t.Fatalf("expireAfterSeconds=%v, want 7200", spec["expireAfterSeconds"])
		}
	}
	if !found {
		t.Fatalf("ttl index %q not found in %v", mongodb.IdempotencyTTLIndex, specs)
	}
}
