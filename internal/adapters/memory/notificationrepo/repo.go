package notificationrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/Overland-East-Bay/roadbook-api/internal/domain"
	"github.com/Overland-East-Bay/roadbook-api/internal/ports/out/notificationrepo"
)

// Repo is an in-memory implementation of notificationrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu   sync.RWMutex
	byID map[domain.NotificationID]notificationrepo.Notification
}

func NewRepo() *Repo {
	return &Repo{
		byID: make(map[domain.NotificationID]notificationrepo.Notification),
	}
}

func (r *Repo) Create(ctx context.Context, n notificationrepo.Notification) error {
	_ = ctx
	if n.ID == "" {
		return notificationrepo.ErrAlreadyExists // treat empty ID as invalid
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[n.ID]; ok {
		return notificationrepo.ErrAlreadyExists
	}
	r.byID[n.ID] = n
	return nil
}

func (r *Repo) List(ctx context.Context) ([]notificationrepo.Notification, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]notificationrepo.Notification, 0, len(r.byID))
	for _, n := range r.byID {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return string(out[i].ID) > string(out[j].ID)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id domain.NotificationID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}
