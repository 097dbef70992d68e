package itest

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Overland-East-Bay/roadbook-api/internal/adapters/httpapi"
	memclock "github.com/Overland-East-Bay/roadbook-api/internal/adapters/memory/clock"
	memidempotency "github.com/Overland-East-Bay/roadbook-api/internal/adapters/memory/idempotency"
	memidentity "github.com/Overland-East-Bay/roadbook-api/internal/adapters/memory/identity"
	memmailer "github.com/Overland-East-Bay/roadbook-api/internal/adapters/memory/mailer"
	memnotificationrepo "github.com/Overland-East-Bay/roadbook-api/internal/adapters/memory/notificationrepo"
	memtriprepo "github.com/Overland-East-Bay/roadbook-api/internal/adapters/memory/triprepo"
	memuserrepo "github.com/Overland-East-Bay/roadbook-api/internal/adapters/memory/userrepo"
	mongoidempotency "github.com/Overland-East-Bay/roadbook-api/internal/adapters/mongodb/idempotency"
	mongonotificationrepo "github.com/Overland-East-Bay/roadbook-api/internal/adapters/mongodb/notificationrepo"
	mongo_testutil "github.com/Overland-East-Bay/roadbook-api/internal/adapters/mongodb/testutil"
	mongotriprepo "github.com/Overland-East-Bay/roadbook-api/internal/adapters/mongodb/triprepo"
	mongouserrepo "github.com/Overland-East-Bay/roadbook-api/internal/adapters/mongodb/userrepo"
	pgidempotency "github.com/Overland-East-Bay/roadbook-api/internal/adapters/postgres/idempotency"
	pgnotificationrepo "github.com/Overland-East-Bay/roadbook-api/internal/adapters/postgres/notificationrepo"
	postgres_testutil "github.com/Overland-East-Bay/roadbook-api/internal/adapters/postgres/testutil"
	pgtriprepo "github.com/Overland-East-Bay/roadbook-api/internal/adapters/postgres/triprepo"
	pguserrepo "github.com/Overland-East-Bay/roadbook-api/internal/adapters/postgres/userrepo"
	"github.com/Overland-East-Bay/roadbook-api/internal/app/auth"
	"github.com/Overland-East-Bay/roadbook-api/internal/app/notifications"
	"github.com/Overland-East-Bay/roadbook-api/internal/app/trips"
	"github.com/Overland-East-Bay/roadbook-api/internal/platform/auth/password"
	"github.com/Overland-East-Bay/roadbook-api/internal/platform/auth/token"
	"github.com/Overland-East-Bay/roadbook-api/internal/platform/config"
	idempotencyport "github.com/Overland-East-Bay/roadbook-api/internal/ports/out/idempotency"
	notificationrepoport "github.com/Overland-East-Bay/roadbook-api/internal/ports/out/notificationrepo"
	triprepoport "github.com/Overland-East-Bay/roadbook-api/internal/ports/out/triprepo"
	userrepoport "github.com/Overland-East-Bay/roadbook-api/internal/ports/out/userrepo"
)

type backend string

const (
	backendMemory   backend = "memory"
	backendMongo    backend = "mongo"
	backendPostgres backend = "postgres"
)

func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "memory":
		return []backend{backendMemory}
	case "mongo":
		return []backend{backendMongo}
	case "postgres":
		return []backend{backendPostgres}
	case "all":
		return []backend{backendMemory, backendMongo, backendPostgres}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|mongo|postgres|all)")
		return nil
	}
}

type testServer struct {
	baseURL string
	client  *http.Client

	identity *memidentity.Provider
	outbox   *memmailer.Outbox
}

func newTestServer(t *testing.T, b backend, opts httpapi.RouterOptions) *testServer {
	t.Helper()

	clk := memclock.NewManualClock(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))

	var (
		userRepo  userrepoport.Repository
		tripRepo  triprepoport.Repository
		notifRepo notificationrepoport.Repository
		idemStore idempotencyport.Store
	)

	switch b {
	case backendPostgres:
		pool := postgres_testutil.OpenMigratedPool(t)
		userRepo = pguserrepo.NewRepo(pool)
		tripRepo = pgtriprepo.NewRepo(pool)
		notifRepo = pgnotificationrepo.NewRepo(pool)
		idemStore = pgidempotency.NewStore(pool, time.Hour)
	case backendMongo:
		db := mongo_testutil.OpenIndexedDatabase(t)
		userRepo = mongouserrepo.NewRepo(db)
		tripRepo = mongotriprepo.NewRepo(db)
		notifRepo = mongonotificationrepo.NewRepo(db)
		idemStore = mongoidempotency.NewStore(db, time.Hour)
	case backendMemory:
		userRepo = memuserrepo.NewRepo()
		tripRepo = memtriprepo.NewRepo()
		notifRepo = memnotificationrepo.NewRepo()
		idemStore = memidempotency.NewStore()
	default:
		t.Fatalf("unknown backend: %s", b)
	}

	tokens := token.NewWithClock(config.AuthConfig{
		Secret: []byte("itest-secret"),
		Issuer: "itest-issuer",
		TTL:    time.Hour,
	}, clk)
	idp := memidentity.NewProvider("https://id.example.test/reset")
	outbox := memmailer.NewOutbox()

	authSvc := auth.NewService(userRepo, password.NewHasher(bcrypt.MinCost), tokens, idp, outbox, clk)
	tripSvc := trips.NewService(tripRepo, clk)
	notifSvc := notifications.NewService(notifRepo, clk)

	api := httpapi.NewServer(authSvc, tripSvc, notifSvc, idemStore)
	api.Logger = log.New(io.Discard, "", 0)
	handler := httpapi.NewRouterWithOptions(api, opts)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{
		baseURL:  srv.URL,
		client:   srv.Client(),
		identity: idp,
		outbox:   outbox,
	}
}

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

func (s *testServer) doJSON(t *testing.T, method string, path string, bearer string, body any) (int, []byte, http.Header) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.url(path), r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("status=%d want=%d body=%s", status, wantStatus, string(body))
	}
	got := mustUnmarshal[errorResponse](t, body)
	if got.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", got.Error.Code, wantCode, string(body))
	}
}

func requireHeaderPresent(t *testing.T, h http.Header, key string) {
	t.Helper()
	if strings.TrimSpace(h.Get(key)) == "" {
		t.Fatalf("expected header %q to be present", key)
	}
}

func mustMarshal(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func readAll(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}
