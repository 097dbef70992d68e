package auth

import (
	"time"

	"github.com/Overland-East-Bay/roadbook-api/internal/domain"
)

type SignupInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the signed token handed back to the client.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	UserID    domain.UserID
}

// ResetResult is returned once the reset link has been emailed.
type ResetResult struct {
	Link string
}
