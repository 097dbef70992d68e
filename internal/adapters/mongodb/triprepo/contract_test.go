package triprepo

import (
	"testing"

	"github.com/Overland-East-Bay/roadbook-api/internal/adapters/contracttest"
	"github.com/Overland-East-Bay/roadbook-api/internal/adapters/mongodb/testutil"
	triprepoport "github.com/Overland-East-Bay/roadbook-api/internal/ports/out/triprepo"
)

func TestContract_MongoTripRepo(t *testing.T) {
	db := testutil.OpenIndexedDatabase(t)

	contracttest.RunTripRepo(t, func(t *testing.T) (triprepoport.Repository, func()) {
		t.Helper()
		return NewRepo(db), nil
	})
}
