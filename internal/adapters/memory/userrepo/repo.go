package userrepo

import (
	"bytes"
	"context"
	"sync"

	"github.com/Overland-East-Bay/roadbook-api/internal/domain"
	"github.com/Overland-East-Bay/roadbook-api/internal/ports/out/userrepo"
)

// Repo is an in-memory implementation of userrepo.Repository.
// It is safe for concurrent use; the email index is checked and written under one lock,
// which makes Create the authoritative uniqueness check.
type Repo struct {
	mu sync.RWMutex

	byID      map[domain.UserID]userrepo.User
	idByEmail map[string]domain.UserID
}

func NewRepo() *Repo {
	return &Repo{
		byID:      make(map[domain.UserID]userrepo.User),
		idByEmail: make(map[string]domain.UserID),
	}
}

func (r *Repo) Create(ctx context.Context, u userrepo.User) error {
	_ = ctx
	if u.ID == "" {
		return userrepo.ErrAlreadyExists // treat empty ID as invalid
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[u.ID]; ok {
		return userrepo.ErrAlreadyExists
	}
	if _, ok := r.idByEmail[u.Email]; ok {
		return userrepo.ErrEmailTaken
	}

	r.byID[u.ID] = cloneUser(u)
	r.idByEmail[u.Email] = u.ID
	return nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (userrepo.User, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.idByEmail[email]
	if !ok {
		return userrepo.User{}, userrepo.ErrNotFound
	}
	u, ok := r.byID[id]
	if !ok {
		return userrepo.User{}, userrepo.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.UserID) (userrepo.User, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return userrepo.User{}, userrepo.ErrNotFound
	}
	return cloneUser(u), nil
}

func cloneUser(u userrepo.User) userrepo.User {
	out := u
	out.PasswordHash = bytes.Clone(u.PasswordHash)
	return out
}
