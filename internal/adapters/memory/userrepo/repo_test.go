package userrepo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Overland-East-Bay/roadbook-api/internal/domain"
	"github.com/Overland-East-Bay/roadbook-api/internal/ports/out/userrepo"
)

func TestRepo_Create_ConcurrentSameEmail_OneWins(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	now := time.Unix(100, 0).UTC()

	const n = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		taken   int
		unknown []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := r.Create(context.Background(), userrepo.User{
				ID:           domain.UserID(string(rune('a' + i))),
				Email:        "race@example.com",
				PasswordHash: []byte("h"),
				CreatedAt:    now,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, userrepo.ErrEmailTaken):
				taken++
			default:
				unknown = append(unknown, err)
			}
		}(i)
	}
	wg.Wait()

	if ok != 1 || taken != n-1 || len(unknown) != 0 {
		t.Fatalf("ok=%d taken=%d unknown=%v", ok, taken, unknown)
	}
}

func TestRepo_GetByEmail_ReturnsCopy(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	_ = r.Create(context.Background(), userrepo.User{ID: "u1", Email: "a@example.com", PasswordHash: []byte("hash")})

	got, err := r.GetByEmail(context.Background(), "a@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	got.PasswordHash[0] = 'X'

	again, _ := r.GetByEmail(context.Background(), "a@example.com")
	if string(again.PasswordHash) != "hash" {
		t.Fatalf("stored hash mutated: %q", again.PasswordHash)
	}
}
