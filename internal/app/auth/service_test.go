package auth_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	memclock "github.com/Overland-East-Bay/roadbook-api/internal/adapters/memory/clock"
	memidentity "github.com/Overland-East-Bay/roadbook-api/internal/adapters/memory/identity"
	memmailer "github.com/Overland-East-Bay/roadbook-api/internal/adapters/memory/mailer"
	memuserrepo "github.com/Overland-East-Bay/roadbook-api/internal/adapters/memory/userrepo"
	"github.com/Overland-East-Bay/roadbook-api/internal/app/auth"
	"github.com/Overland-East-Bay/roadbook-api/internal/domain"
	"github.com/Overland-East-Bay/roadbook-api/internal/platform/auth/password"
	"github.com/Overland-East-Bay/roadbook-api/internal/platform/auth/token"
	"github.com/Overland-East-Bay/roadbook-api/internal/platform/config"
	portuserrepo "github.com/Overland-East-Bay/roadbook-api/internal/ports/out/userrepo"
)

type fixture struct {
	svc      *auth.Service
	users    *memuserrepo.Repo
	identity *memidentity.Provider
	outbox   *memmailer.Outbox
	clock    *memclock.ManualClock
	tokens   *token.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	clk := memclock.NewManualClock(time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC))
	tokens := token.NewWithClock(config.AuthConfig{
		Secret: []byte("test-secret"),
		Issuer: "roadbook-api",
		TTL:    time.Hour,
	}, clk)
	f := fixture{
		users:    memuserrepo.NewRepo(),
		identity: memidentity.NewProvider("https://id.example.com/reset"),
		outbox:   memmailer.NewOutbox(),
		clock:    clk,
		tokens:   tokens,
	}
	f.svc = auth.NewService(f.users, password.NewHasher(bcrypt.MinCost), tokens, f.identity, f.outbox, clk)
	return f
}

func requireAppError(t *testing.T, err error, status int, code string) *auth.Error {
	t.Helper()
	var ae *auth.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected *auth.Error, got %T: %v", err, err)
	}
	if ae.Status != status || ae.Code != code {
		t.Fatalf("status/code=%d/%s, want %d/%s", ae.Status, ae.Code, status, code)
	}
	return ae
}

func signupAlice(t *testing.T, f fixture) {
	t.Helper()
	if _, err := f.svc.Signup(context.Background(), auth.SignupInput{
		FirstName: "Alice",
		LastName:  "Johnson",
		Email:     "alice@example.com",
		Password:  "hunter22",
	}); err != nil {
		t.Fatalf("Signup: %v", err)
	}
}

func TestService_Signup_StoresHashedPassword(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.svc.SetNewUserIDForTest(func() domain.UserID { return "u1" })

	created, err := f.svc.Signup(context.Background(), auth.SignupInput{
		FirstName: "  Alice ",
		LastName:  "Johnson",
		Email:     " Alice@Example.com ",
		Password:  "hunter22",
	})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if created.ID != "u1" || created.Email != "alice@example.com" || created.FirstName != "Alice" {
		t.Fatalf("created=%+v", created)
	}

	u, err := f.users.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if u.ID != "u1" || u.FirstName != "Alice" || u.LastName != "Johnson" {
		t.Fatalf("user=%+v", u)
	}
	if string(u.PasswordHash) == "hunter22" {
		t.Fatalf("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte("hunter22")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
	if !u.CreatedAt.Equal(f.clock.Now()) {
		t.Fatalf("createdAt=%v", u.CreatedAt)
	}
}

func TestService_Signup_MissingFields(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.svc.Signup(context.Background(), auth.SignupInput{FirstName: "Alice", Email: "  "})
	ae := requireAppError(t, err, 400, "VALIDATION_ERROR")
	for _, field := range []string{"lastName", "email", "password"} {
		if _, ok := ae.Details[field]; !ok {
			t.Fatalf("details missing %q: %v", field, ae.Details)
		}
	}
	if _, ok := ae.Details["firstName"]; ok {
		t.Fatalf("firstName should not be reported: %v", ae.Details)
	}
	if _, err := f.users.GetByEmail(context.Background(), ""); !errors.Is(err, portuserrepo.ErrNotFound) {
		t.Fatalf("nothing should be persisted, err=%v", err)
	}
}

func TestService_Signup_DuplicateEmail(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	signupAlice(t, f)

	_, err := f.svc.Signup(context.Background(), auth.SignupInput{
		FirstName: "Other",
		LastName:  "Alice",
		Email:     "ALICE@example.com",
		Password:  "different",
	})
	requireAppError(t, err, 400, "EMAIL_ALREADY_IN_USE")
}

func TestService_Signup_PasswordLongerThanBcryptLimit(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.svc.Signup(context.Background(), auth.SignupInput{
		FirstName: "Alice",
		LastName:  "Johnson",
		Email:     "alice@example.com",
		Password:  strings.Repeat("x", password.MaxBytes+1),
	})
	ae := requireAppError(t, err, 400, "VALIDATION_ERROR")
	if ae.Details["password"] != "too long" {
		t.Fatalf("details=%v", ae.Details)
	}
	if _, err := f.users.GetByEmail(context.Background(), "alice@example.com"); !errors.Is(err, portuserrepo.ErrNotFound) {
		t.Fatalf("nothing should be persisted, err=%v", err)
	}

	// Exactly at the limit is accepted.
	if _, err := f.svc.Signup(context.Background(), auth.SignupInput{
		FirstName: "Alice",
		LastName:  "Johnson",
		Email:     "alice@example.com",
		Password:  strings.Repeat("x", password.MaxBytes),
	}); err != nil {
		t.Fatalf("Signup at limit: %v", err)
	}
}

func TestService_Signup_ConcurrentSameEmail_ExactlyOneWins(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	const n = 8
	var (
		wg       sync.WaitGroup
		ok       atomic.Int32
		conflict atomic.Int32
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Signup(context.Background(), auth.SignupInput{
				FirstName: "Racer",
				LastName:  "X",
				Email:     "race@example.com",
				Password:  "pw",
			})
			var ae *auth.Error
			switch {
			case err == nil:
				ok.Add(1)
			case errors.As(err, &ae) && ae.Code == "EMAIL_ALREADY_IN_USE":
				conflict.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok.Load() != 1 || conflict.Load() != n-1 {
		t.Fatalf("ok=%d conflict=%d", ok.Load(), conflict.Load())
	}
}

func TestService_Login_IssuesVerifiableToken(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.svc.SetNewUserIDForTest(func() domain.UserID { return "u-alice" })
	signupAlice(t, f)

	res, err := f.svc.Login(context.Background(), auth.LoginInput{Email: "Alice@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token == "" || res.UserID != "u-alice" {
		t.Fatalf("res=%+v", res)
	}
	if want := f.clock.Now().Add(time.Hour); !res.ExpiresAt.Equal(want) {
		t.Fatalf("expiresAt=%v, want %v", res.ExpiresAt, want)
	}

	claims, err := f.svc.VerifyToken(context.Background(), res.Token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.UserID != "u-alice" || claims.Email != "alice@example.com" {
		t.Fatalf("claims=%+v", claims)
	}

	f.clock.Advance(time.Hour + time.Second)
	if _, err := f.svc.VerifyToken(context.Background(), res.Token); !errors.Is(err, token.ErrUnauthorized) {
		t.Fatalf("expired token err=%v, want ErrUnauthorized", err)
	}
}

func TestService_Login_Failures(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	signupAlice(t, f)

	tests := []struct {
		name   string
		in     auth.LoginInput
		code   string
		status int
	}{
		{"missing password", auth.LoginInput{Email: "alice@example.com"}, "VALIDATION_ERROR", 400},
		{"missing email", auth.LoginInput{Password: "hunter22"}, "VALIDATION_ERROR", 400},
		{"unknown user", auth.LoginInput{Email: "nobody@example.com", Password: "hunter22"}, "USER_NOT_FOUND", 400},
		{"wrong password", auth.LoginInput{Email: "alice@example.com", Password: "wrong"}, "INVALID_CREDENTIALS", 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Login(context.Background(), tt.in)
			requireAppError(t, err, tt.status, tt.code)
		})
	}
}

func TestService_ResetPassword_EmailsLink(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.identity.Register("alice@example.com")

	res, err := f.svc.ResetPassword(context.Background(), " alice@example.com ")
	if err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if !strings.HasPrefix(res.Link, "https://id.example.com/reset?") {
		t.Fatalf("link=%q", res.Link)
	}

	sent := f.outbox.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent=%d, want 1", len(sent))
	}
	if sent[0].To != "alice@example.com" || !strings.Contains(sent[0].Body, res.Link) {
		t.Fatalf("message=%+v", sent[0])
	}
}

func TestService_ResetPassword_Failures(t *testing.T) {
	t.Parallel()

	t.Run("missing email", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.ResetPassword(context.Background(), "")
		requireAppError(t, err, 400, "VALIDATION_ERROR")
	})

	t.Run("provider rejects email", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.ResetPassword(context.Background(), "unknown@example.com")
		requireAppError(t, err, 500, "IDENTITY_PROVIDER_ERROR")
		if len(f.outbox.Sent()) != 0 {
			t.Fatalf("no mail should be sent")
		}
	})

	t.Run("provider outage", func(t *testing.T) {
		f := newFixture(t)
		f.identity.Err = errors.New("503 from provider")
		_, err := f.svc.ResetPassword(context.Background(), "alice@example.com")
		requireAppError(t, err, 500, "IDENTITY_PROVIDER_ERROR")
		if !errors.Is(err, f.identity.Err) {
			t.Fatalf("cause not preserved: %v", err)
		}
	})

	t.Run("mail relay failure", func(t *testing.T) {
		f := newFixture(t)
		f.identity.Register("alice@example.com")
		f.outbox.Err = errors.New("relay down")
		_, err := f.svc.ResetPassword(context.Background(), "alice@example.com")
		requireAppError(t, err, 500, "MAIL_DELIVERY_FAILED")
	})
}
