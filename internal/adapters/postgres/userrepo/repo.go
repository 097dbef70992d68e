package userrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/Overland-East-Bay/roadbook-api/internal/adapters/postgres"
	"github.com/Overland-East-Bay/roadbook-api/internal/domain"
	"github.com/Overland-East-Bay/roadbook-api/internal/ports/out/userrepo"
)

// Repo is a Postgres implementation of userrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, u userrepo.User) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(u.ID))
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO users (
			id,
			first_name,
			last_name,
			email,
			password_hash,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`,
		id,
		u.FirstName,
		u.LastName,
		u.Email,
		u.PasswordHash,
		u.CreatedAt.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			switch pe.ConstraintName {
			case "users_email_unique":
				return userrepo.ErrEmailTaken
			case "users_pkey":
				return userrepo.ErrAlreadyExists
			}
		}
		return err
	}
	return nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (userrepo.User, error) {
	if r.pool == nil {
		return userrepo.User{}, errors.New("nil postgres pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT id, first_name, last_name, email, password_hash, created_at
		FROM users
		WHERE email = $1
	`, email)
	return scanUser(row)
}

func (r *Repo) GetByID(ctx context.Context, id domain.UserID) (userrepo.User, error) {
	if r.pool == nil {
		return userrepo.User{}, errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return userrepo.User{}, userrepo.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `
		SELECT id, first_name, last_name, email, password_hash, created_at
		FROM users
		WHERE id = $1
	`, uid)
	return scanUser(row)
}

func scanUser(row pgx.Row) (userrepo.User, error) {
	var (
		id        uuid.UUID
		u         userrepo.User
		createdAt time.Time
	)
	if err := row.Scan(&id, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return userrepo.User{}, userrepo.ErrNotFound
		}
		return userrepo.User{}, err
	}
	u.ID = domain.UserID(id.String())
	u.CreatedAt = createdAt.UTC()
	return u, nil
}
