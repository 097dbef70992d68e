package trips

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/roadbook-api/internal/domain"
	"github.com/Overland-East-Bay/roadbook-api/internal/ports/out/clock"
	"github.com/Overland-East-Bay/roadbook-api/internal/ports/out/triprepo"
)

type Service struct {
	trips triprepo.Repository
	clock clock.Clock

	newTripID func() domain.TripID
}

func NewService(tripsRepo triprepo.Repository, clk clock.Clock) *Service {
	return &Service{
		trips: tripsRepo,
		clock: clk,
		newTripID: func() domain.TripID {
			return domain.TripID(uuid.Must(uuid.NewV7()).String())
		},
	}
}

// SetNewTripIDForTest overrides trip ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewTripIDForTest(fn func() domain.TripID) {
	if fn != nil {
		s.newTripID = fn
	}
}

func (s *Service) AddTrip(ctx context.Context, in AddTripInput) (domain.Trip, error) {
	name := domain.NormalizeHumanName(in.Name)

	missing := map[string]any{}
	if name == "" {
		missing["name"] = "required"
	}
	if in.Date == nil || in.Date.IsZero() {
		missing["date"] = "required"
	}
	if in.Budget == nil {
		missing["budget"] = "required"
	}
	if len(missing) > 0 {
		return domain.Trip{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "missing required fields", Details: missing}
	}

	d := in.Date.UTC()
	t := triprepo.Trip{
		ID:        s.newTripID(),
		Name:      name,
		Date:      time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC),
		Budget:    *in.Budget,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.trips.Create(ctx, t); err != nil {
		if errors.Is(err, triprepo.ErrAlreadyExists) {
			// Extremely unlikely (UUID collision); treat as conflict.
			return domain.Trip{}, &Error{Status: 409, Code: "TRIP_ID_CONFLICT", Message: "trip id conflict"}
		}
		return domain.Trip{}, fmt.Errorf("create trip: %w", err)
	}
	return toDomain(t), nil
}

// ListTrips returns every trip ordered by date, earliest first.
func (s *Service) ListTrips(ctx context.Context) ([]domain.Trip, error) {
	ts, err := s.trips.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	out := make([]domain.Trip, 0, len(ts))
	for _, t := range ts {
		out = append(out, toDomain(t))
	}
	return out, nil
}

// DeleteTrip removes a trip. An id that matches nothing still succeeds.
func (s *Service) DeleteTrip(ctx context.Context, id domain.TripID) error {
	if err := s.trips.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	return nil
}

func toDomain(t triprepo.Trip) domain.Trip {
	return domain.Trip{
		ID:        t.ID,
		Name:      t.Name,
		Date:      t.Date,
		Budget:    t.Budget,
		CreatedAt: t.CreatedAt,
	}
}
