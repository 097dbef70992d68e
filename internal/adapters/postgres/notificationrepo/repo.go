package notificationrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/Overland-East-Bay/roadbook-api/internal/adapters/postgres"
	"github.com/Overland-East-Bay/roadbook-api/internal/domain"
	"github.com/Overland-East-Bay/roadbook-api/internal/ports/out/notificationrepo"
)

// Repo is a Postgres implementation of notificationrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, n notificationrepo.Notification) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(n.ID))
	if err != nil {
		return fmt.Errorf("invalid notification id: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO notifications (id, message, type, created_at)
		VALUES ($1, $2, $3, $4)
	`, id, n.Message, n.Type, n.CreatedAt.UTC())
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return notificationrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) List(ctx context.Context) ([]notificationrepo.Notification, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, message, type, created_at
		FROM notifications
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]notificationrepo.Notification, 0)
	for rows.Next() {
		var (
			id        uuid.UUID
			n         notificationrepo.Notification
			createdAt time.Time
		)
		if err := rows.Scan(&id, &n.Message, &n.Type, &createdAt); err != nil {
			return nil, err
		}
		n.ID = domain.NotificationID(id.String())
		n.CreatedAt = createdAt.UTC()
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *Repo) Delete(ctx context.Context, id domain.NotificationID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return nil
	}
	_, err = r.pool.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, uid)
	return err
}
