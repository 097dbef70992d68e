package userrepo

import (
	"testing"

	"github.com/Overland-East-Bay/roadbook-api/internal/adapters/contracttest"
	"github.com/Overland-East-Bay/roadbook-api/internal/adapters/mongodb/testutil"
	userrepoport "github.com/Overland-East-Bay/roadbook-api/internal/ports/out/userrepo"
)

func TestContract_MongoUserRepo(t *testing.T) {
	db := testutil.OpenIndexedDatabase(t)

	contracttest.RunUserRepo(t, func(t *testing.T) (userrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(db), nil
	})
}
