package triprepo

import (
	"context"
	"sort"
	"sync"

	"github.com/Overland-East-Bay/roadbook-api/internal/domain"
	"github.com/Overland-East-Bay/roadbook-api/internal/ports/out/triprepo"
)

// Repo is an in-memory implementation of triprepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu   sync.RWMutex
	byID map[domain.TripID]triprepo.Trip
}

func NewRepo() *Repo {
	return &Repo{
		byID: make(map[domain.TripID]triprepo.Trip),
	}
}

func (r *Repo) Create(ctx context.Context, t triprepo.Trip) error {
	_ = ctx
	if t.ID == "" {
		return triprepo.ErrAlreadyExists // treat empty ID as invalid
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[t.ID]; ok {
		return triprepo.ErrAlreadyExists
	}
	r.byID[t.ID] = t
	return nil
}

func (r *Repo) List(ctx context.Context) ([]triprepo.Trip, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]triprepo.Trip, 0, len(r.byID))
	for _, t := range r.byID {
		out = append(out, t)
	}
	sortTrips(out)
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id domain.TripID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func sortTrips(ts []triprepo.Trip) {
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].Date.Equal(ts[j].Date) {
			return string(ts[i].ID) < string(ts[j].ID)
		}
		return ts[i].Date.Before(ts[j].Date)
	})
}
