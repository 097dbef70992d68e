package triprepo

import (
	"context"
	"time"

	"github.com/Overland-East-Bay/roadbook-api/internal/domain"
)

// Trip is the persistence shape used by the trip repository.
// It is not an HTTP DTO.
type Trip struct {
	ID     domain.TripID
	Name   string
	Date   time.Time
	Budget float64

	CreatedAt time.Time
}

// Repository provides access to persisted trips.
//
// Result ordering expectations:
// - List returns trips ordered by Date ascending, then ID ascending.
type Repository interface {
	Create(ctx context.Context, t Trip) error
	List(ctx context.Context) ([]Trip, error)

	// Delete removes the trip with the given ID. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id domain.TripID) error
}
