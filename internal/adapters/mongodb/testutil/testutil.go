package testutil

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Overland-East-Bay/roadbook-api/internal/adapters/mongodb"
)

// OpenIndexedDatabase connects to MONGO_TEST_URI and returns a fresh, indexed database
// that is dropped when the test finishes. Tests are skipped when the variable is unset.
func OpenIndexedDatabase(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set; skipping mongo tests")
	}

	ctx := context.Background()
	client, err := mongodb.Connect(ctx, uri, 10*time.Second)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	name := "roadbook_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	db := client.Database(name)
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	if err := mongodb.EnsureIndexes(ctx, db, time.Hour); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}
	return db
}
