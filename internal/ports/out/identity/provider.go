package identity

import (
	"context"
	"errors"
)

// ErrUnknownAccount is returned when the provider has no account for the email.
var ErrUnknownAccount = errors.New("identity provider: unknown account")

// Provider is the external identity provider that owns password reset links.
type Provider interface {
	// PasswordResetLink asks the provider to issue a reset link for the account keyed by email.
	PasswordResetLink(ctx context.Context, email string) (string, error)
}
