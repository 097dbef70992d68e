package triprepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/Overland-East-Bay/roadbook-api/internal/adapters/postgres"
	"github.com/Overland-East-Bay/roadbook-api/internal/domain"
	"github.com/Overland-East-Bay/roadbook-api/internal/ports/out/triprepo"
)

// Repo is a Postgres implementation of triprepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, t triprepo.Trip) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(t.ID))
	if err != nil {
		return fmt.Errorf("invalid trip id: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO trips (id, name, trip_date, budget, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		id,
		t.Name,
		pgtype.Date{Time: t.Date.UTC(), Valid: true},
		t.Budget,
		t.CreatedAt.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return triprepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) List(ctx context.Context) ([]triprepo.Trip, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, trip_date, budget, created_at
		FROM trips
		ORDER BY trip_date ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]triprepo.Trip, 0)
	for rows.Next() {
		var (
			id        uuid.UUID
			t         triprepo.Trip
			date      pgtype.Date
			createdAt time.Time
		)
		if err := rows.Scan(&id, &t.Name, &date, &t.Budget, &createdAt); err != nil {
			return nil, err
		}
		t.ID = domain.TripID(id.String())
		t.Date = date.Time.UTC()
		t.CreatedAt = createdAt.UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repo) Delete(ctx context.Context, id domain.TripID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(id))
	if err != nil {
		// Not a key we could have issued; nothing to delete.
		return nil
	}
	_, err = r.pool.Exec(ctx, `DELETE FROM trips WHERE id = $1`, uid)
	return err
}
