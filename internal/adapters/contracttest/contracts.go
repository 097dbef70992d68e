package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/roadbook-api/internal/domain"
	idempotencyport "github.com/Overland-East-Bay/roadbook-api/internal/ports/out/idempotency"
	notificationrepoport "github.com/Overland-East-Bay/roadbook-api/internal/ports/out/notificationrepo"
	triprepoport "github.com/Overland-East-Bay/roadbook-api/internal/ports/out/triprepo"
	userrepoport "github.com/Overland-East-Bay/roadbook-api/internal/ports/out/userrepo"
)

type CleanupFunc = func()

type UserRepoFactory func(t *testing.T) (userrepoport.Repository, CleanupFunc)
type TripRepoFactory func(t *testing.T) (triprepoport.Repository, CleanupFunc)
type NotificationRepoFactory func(t *testing.T) (notificationrepoport.Repository, CleanupFunc)
type IdemStoreFactory func(t *testing.T) (idempotencyport.Store, CleanupFunc)

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func RunIdempotencyStore(t *testing.T, newStore IdemStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	fp := idempotencyport.Fingerprint{
		Key:      idempotencyport.Key("k-" + newID()),
		Method:   "POST",
		Route:    "/trip/add",
		BodyHash: "",
	}
	if _, ok, err := store.Get(ctx, fp); err != nil || ok {
		t.Fatalf("Get before Put: ok=%v err=%v", ok, err)
	}
	rec := idempotencyport.Record{
		StatusCode:  0,
		ContentType: "text/plain",
		Body:        []byte("hash-abc"),
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := store.Put(ctx, fp, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if string(got.Body) != "hash-abc" || got.ContentType != "text/plain" || got.StatusCode != 0 {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Overwrite semantics.
	rec2 := rec
	rec2.Body = []byte("hash-def")
	if err := store.Put(ctx, fp, rec2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok, err = store.Get(ctx, fp)
	if err != nil || !ok || string(got.Body) != "hash-def" {
		t.Fatalf("expected overwritten record, got ok=%v err=%v body=%q", ok, err, string(got.Body))
	}
}

func RunUserRepo(t *testing.T, newRepo UserRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(1000, 0).UTC()
	aID := domain.UserID(newID())
	email := "alice-" + string(aID) + "@example.com"
	if err := repo.Create(ctx, userrepoport.User{
		ID:           aID,
		FirstName:    "Alice",
		LastName:     "Johnson",
		Email:        email,
		PasswordHash: []byte("$2a$10$hash"),
		CreatedAt:    now,
	}); err != nil {
		t.Fatalf("Create a: %v", err)
	}

	got, err := repo.GetByEmail(ctx, email)
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.ID != aID || got.FirstName != "Alice" || got.LastName != "Johnson" || string(got.PasswordHash) != "$2a$10$hash" {
		t.Fatalf("unexpected user: %#v", got)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("createdAt=%v, want %v", got.CreatedAt, now)
	}
	if _, err := repo.GetByID(ctx, aID); err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	// Email uniqueness is enforced by the store itself.
	err = repo.Create(ctx, userrepoport.User{
		ID:           domain.UserID(newID()),
		FirstName:    "Other",
		LastName:     "Person",
		Email:        email,
		PasswordHash: []byte("x"),
		CreatedAt:    now,
	})
	if !errors.Is(err, userrepoport.ErrEmailTaken) {
		t.Fatalf("duplicate email err=%v, want ErrEmailTaken", err)
	}

	if _, err := repo.GetByEmail(ctx, "missing-"+newID()+"@example.com"); !errors.Is(err, userrepoport.ErrNotFound) {
		t.Fatalf("GetByEmail missing err=%v, want ErrNotFound", err)
	}
	if _, err := repo.GetByID(ctx, domain.UserID(newID())); !errors.Is(err, userrepoport.ErrNotFound) {
		t.Fatalf("GetByID missing err=%v, want ErrNotFound", err)
	}
}

func RunTripRepo(t *testing.T, newRepo TripRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	before, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List empty: %v", err)
	}
	if before == nil {
		t.Fatalf("List returned nil slice, want empty")
	}

	d1 := time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2031, 2, 1, 0, 0, 0, 0, time.UTC)
	d3 := time.Date(2031, 3, 1, 0, 0, 0, 0, time.UTC)
	created := time.Unix(3000, 0).UTC()

	// Insert out of date order.
	ids := map[time.Time]domain.TripID{}
	for _, d := range []time.Time{d2, d3, d1} {
		id := domain.TripID(newID())
		ids[d] = id
		if err := repo.Create(ctx, triprepoport.Trip{
			ID:        id,
			Name:      "Trip " + d.Format("Jan"),
			Date:      d,
			Budget:    1250.5,
			CreatedAt: created,
		}); err != nil {
			t.Fatalf("Create %s: %v", d, err)
		}
	}

	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var mine []triprepoport.Trip
	for _, tr := range got {
		for _, id := range ids {
			if tr.ID == id {
				mine = append(mine, tr)
			}
		}
	}
	if len(mine) != 3 {
		t.Fatalf("found %d seeded trips, want 3", len(mine))
	}
	if mine[0].ID != ids[d1] || mine[1].ID != ids[d2] || mine[2].ID != ids[d3] {
		t.Fatalf("unexpected ordering: %#v", mine)
	}
	if !mine[0].Date.Equal(d1) || mine[0].Budget != 1250.5 || mine[0].Name != "Trip Jan" {
		t.Fatalf("unexpected trip fields: %#v", mine[0])
	}

	if err := repo.Delete(ctx, ids[d2]); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	// Deleting an unknown id is not an error.
	if err := repo.Delete(ctx, domain.TripID(newID())); err != nil {
		t.Fatalf("Delete unknown: %v", err)
	}
	got, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("List after delete: %v", err)
	}
	for _, tr := range got {
		if tr.ID == ids[d2] {
			t.Fatalf("trip %s still listed after delete", tr.ID)
		}
	}
}

func RunNotificationRepo(t *testing.T, newRepo NotificationRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	first := notificationrepoport.Notification{
		ID:        domain.NotificationID(newID()),
		Message:   "first",
		Type:      "info",
		CreatedAt: time.Unix(5000, 0).UTC(),
	}
	second := notificationrepoport.Notification{
		ID:        domain.NotificationID(newID()),
		Message:   "second",
		Type:      "alert",
		CreatedAt: time.Unix(5001, 0).UTC(),
	}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create first: %v", err)
	}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("Create second: %v", err)
	}

	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var mine []notificationrepoport.Notification
	for _, n := range got {
		if n.ID == first.ID || n.ID == second.ID {
			mine = append(mine, n)
		}
	}
	if len(mine) != 2 || mine[0].ID != second.ID || mine[1].ID != first.ID {
		t.Fatalf("unexpected ordering: %#v", mine)
	}
	if mine[0].Message != "second" || mine[0].Type != "alert" || !mine[0].CreatedAt.Equal(second.CreatedAt) {
		t.Fatalf("unexpected fields: %#v", mine[0])
	}

	if err := repo.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, domain.NotificationID(newID())); err != nil {
		t.Fatalf("Delete unknown: %v", err)
	}
	got, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("List after delete: %v", err)
	}
	for _, n := range got {
		if n.ID == first.ID {
			t.Fatalf("notification %s still listed after delete", n.ID)
		}
	}
}
