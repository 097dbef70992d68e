// Package firebase implements identity.Provider on top of Firebase Authentication.
package firebase

import (
	"context"
	"fmt"

	firebasesdk "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/Overland-East-Bay/roadbook-api/internal/ports/out/identity"
)

// linkGenerator is the subset of *auth.Client used here.
type linkGenerator interface {
	PasswordResetLink(ctx context.Context, email string) (string, error)
	PasswordResetLinkWithSettings(ctx context.Context, email string, settings *auth.ActionCodeSettings) (string, error)
}

// Provider asks Firebase to generate password reset links.
type Provider struct {
	client      linkGenerator
	continueURL string
}

type Options struct {
	CredentialsFile string
	ProjectID       string

	// ContinueURL, when set, is passed as the action code continue URL.
	ContinueURL string
}

// NewProvider initializes a Firebase app from a service account file and returns a Provider.
func NewProvider(ctx context.Context, opts Options) (*Provider, error) {
	var cfg *firebasesdk.Config
	if opts.ProjectID != "" {
		cfg = &firebasesdk.Config{ProjectID: opts.ProjectID}
	}
	var clientOpts []option.ClientOption
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}

	app, err := firebasesdk.NewApp(ctx, cfg, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	return newProvider(client, opts.ContinueURL), nil
}

func newProvider(client linkGenerator, continueURL string) *Provider {
	return &Provider{client: client, continueURL: continueURL}
}

func (p *Provider) PasswordResetLink(ctx context.Context, email string) (string, error) {
	var (
		link string
		err  error
	)
	if p.continueURL != "" {
		link, err = p.client.PasswordResetLinkWithSettings(ctx, email, &auth.ActionCodeSettings{URL: p.continueURL})
	} else {
		link, err = p.client.PasswordResetLink(ctx, email)
	}
	if err != nil {
		if auth.IsUserNotFound(err) {
			return "", identity.ErrUnknownAccount
		}
		return "", fmt.Errorf("firebase password reset link: %w", err)
	}
	return link, nil
}
