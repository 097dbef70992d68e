package userrepo

import (
	"context"
	"time"

	"github.com/Overland-East-Bay/roadbook-api/internal/domain"
)

// User is the persistence shape used by the user repository.
// It carries the password hash and is never used as an HTTP DTO.
type User struct {
	ID        domain.UserID
	FirstName string
	LastName  string
	// Email is stored normalized (see domain.NormalizeEmail).
	Email        string
	PasswordHash []byte

	CreatedAt time.Time
}

// Repository provides access to persisted users.
type Repository interface {
	// Create persists a new user. It returns ErrEmailTaken when the email is already registered,
	// which is the authoritative uniqueness check.
	Create(ctx context.Context, u User) error

	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id domain.UserID) (User, error)
}
