package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/roadbook-api/internal/domain"
	"github.com/Overland-East-Bay/roadbook-api/internal/platform/auth/password"
	"github.com/Overland-East-Bay/roadbook-api/internal/platform/auth/token"
	"github.com/Overland-East-Bay/roadbook-api/internal/ports/out/clock"
	"github.com/Overland-East-Bay/roadbook-api/internal/ports/out/identity"
	"github.com/Overland-East-Bay/roadbook-api/internal/ports/out/mailer"
	"github.com/Overland-East-Bay/roadbook-api/internal/ports/out/userrepo"
)

const resetSubject = "Reset your password"

type Service struct {
	users    userrepo.Repository
	hasher   password.Hasher
	tokens   *token.Service
	identity identity.Provider
	mail     mailer.Mailer
	clock    clock.Clock

	newUserID func() domain.UserID
}

func NewService(
	usersRepo userrepo.Repository,
	hasher password.Hasher,
	tokens *token.Service,
	idp identity.Provider,
	mail mailer.Mailer,
	clk clock.Clock,
) *Service {
	return &Service{
		users:    usersRepo,
		hasher:   hasher,
		tokens:   tokens,
		identity: idp,
		mail:     mail,
		clock:    clk,
		newUserID: func() domain.UserID {
			return domain.UserID(uuid.Must(uuid.NewV7()).String())
		},
	}
}

// SetNewUserIDForTest overrides user ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewUserIDForTest(fn func() domain.UserID) {
	if fn != nil {
		s.newUserID = fn
	}
}

// Signup registers a new account. The returned user carries no credential material.
func (s *Service) Signup(ctx context.Context, in SignupInput) (domain.User, error) {
	firstName := domain.NormalizeHumanName(in.FirstName)
	lastName := domain.NormalizeHumanName(in.LastName)
	email := domain.NormalizeEmail(in.Email)

	missing := map[string]any{}
	if firstName == "" {
		missing["firstName"] = "required"
	}
	if lastName == "" {
		missing["lastName"] = "required"
	}
	if email == "" {
		missing["email"] = "required"
	}
	if in.Password == "" {
		missing["password"] = "required"
	}
	if len(missing) > 0 {
		return domain.User{}, validationError(missing)
	}

	// Fast path only; Create below is what actually guarantees uniqueness.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.User{}, emailInUse()
	} else if !errors.Is(err, userrepo.ErrNotFound) {
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if errors.Is(err, password.ErrTooLong) {
		return domain.User{}, passwordTooLong()
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := userrepo.User{
		ID:           s.newUserID(),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now().UTC(),
	}
	err = s.users.Create(ctx, u)
	if err != nil {
		if errors.Is(err, userrepo.ErrEmailTaken) {
			return domain.User{}, emailInUse()
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return domain.User{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}, nil
}

func emailInUse() *Error {
	return &Error{Status: 400, Code: "EMAIL_ALREADY_IN_USE", Message: "email already in use"}
}

// Login verifies credentials and issues a token.
// Unknown users and wrong passwords are reported with different codes.
func (s *Service) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	email := domain.NormalizeEmail(in.Email)

	missing := map[string]any{}
	if email == "" {
		missing["email"] = "required"
	}
	if in.Password == "" {
		missing["password"] = "required"
	}
	if len(missing) > 0 {
		return LoginResult{}, validationError(missing)
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return LoginResult{}, &Error{Status: 400, Code: "USER_NOT_FOUND", Message: "user not found"}
		}
		return LoginResult{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.hasher.Compare(u.PasswordHash, in.Password); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return LoginResult{}, &Error{Status: 400, Code: "INVALID_CREDENTIALS", Message: "invalid credentials"}
		}
		return LoginResult{}, fmt.Errorf("compare password: %w", err)
	}

	signed, exp, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: signed, ExpiresAt: exp, UserID: u.ID}, nil
}

// ResetPassword asks the identity provider for a reset link and emails it to the account.
func (s *Service) ResetPassword(ctx context.Context, email string) (ResetResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return ResetResult{}, validationError(map[string]any{"email": "required"})
	}

	link, err := s.identity.PasswordResetLink(ctx, email)
	if err != nil {
		msg := "could not generate reset link"
		if errors.Is(err, identity.ErrUnknownAccount) {
			msg = "identity provider rejected the email"
		}
		return ResetResult{}, &Error{Status: 500, Code: "IDENTITY_PROVIDER_ERROR", Message: msg, cause: err}
	}

	err = s.mail.Send(ctx, mailer.Message{
		To:      email,
		Subject: resetSubject,
		Body:    resetBody(link),
	})
	if err != nil {
		return ResetResult{}, &Error{Status: 500, Code: "MAIL_DELIVERY_FAILED", Message: "could not send reset email", cause: err}
	}
	return ResetResult{Link: link}, nil
}

func resetBody(link string) string {
	var b strings.Builder
	b.WriteString("We received a request to reset your password.\n\n")
	b.WriteString("Follow this link to choose a new one:\n")
	b.WriteString(link)
	b.WriteString("\n\nIf you did not ask for this, you can ignore this email.\n")
	return b.String()
}

// VerifyToken validates a bearer token issued by Login.
func (s *Service) VerifyToken(ctx context.Context, raw string) (token.Claims, error) {
	return s.tokens.Verify(ctx, raw)
}
