package identity

import (
	"context"
	"net/url"
	"sync"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/roadbook-api/internal/ports/out/identity"
)

// Provider is an in-memory identity provider for local development and tests.
// Accounts must be registered before a reset link can be issued, mirroring a real provider
// rejecting unknown emails.
type Provider struct {
	mu       sync.RWMutex
	baseURL  string
	accounts map[string]struct{}
	issued   []string

	// Err, when set, is returned by every PasswordResetLink call.
	Err error
}

func NewProvider(baseURL string) *Provider {
	if baseURL == "" {
		baseURL = "http://localhost:8080/reset"
	}
	return &Provider{
		baseURL:  baseURL,
		accounts: make(map[string]struct{}),
	}
}

// Register marks email as a known account.
func (p *Provider) Register(email string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accounts[email] = struct{}{}
}

func (p *Provider) PasswordResetLink(ctx context.Context, email string) (string, error) {
	_ = ctx
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return "", p.Err
	}
	if _, ok := p.accounts[email]; !ok {
		return "", identity.ErrUnknownAccount
	}

	q := url.Values{}
	q.Set("mode", "resetPassword")
	q.Set("oobCode", uuid.NewString())
	link := p.baseURL + "?" + q.Encode()
	p.issued = append(p.issued, link)
	return link, nil
}

// Issued returns every link handed out so far, oldest first.
func (p *Provider) Issued() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.issued...)
}
