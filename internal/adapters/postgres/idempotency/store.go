package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Overland-East-Bay/roadbook-api/internal/ports/out/idempotency"
)

const (
	selectRecordSQL = `
		SELECT status_code, content_type, body, created_at
		FROM idempotency_keys
		WHERE idempotency_key = $1 AND method = $2 AND route = $3 AND body_hash = $4
		  AND created_at > $5`

	upsertRecordSQL = `
		INSERT INTO idempotency_keys
			(idempotency_key, method, route, body_hash, status_code, content_type, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (idempotency_key, method, route, body_hash) DO UPDATE SET
			status_code  = EXCLUDED.status_code,
			content_type = EXCLUDED.content_type,
			body         = EXCLUDED.body,
			created_at   = EXCLUDED.created_at`

	purgeSQL = `DELETE FROM idempotency_keys WHERE created_at <= $1`
)

// Store is a Postgres implementation of idempotency.Store.
// Records older than the retention window are invisible to Get and removed by Purge.
type Store struct {
	pool      *pgxpool.Pool
	retention time.Duration
	now       func() time.Time
}

// NewStore returns a store with the given retention. A non-positive retention keeps records forever.
func NewStore(pool *pgxpool.Pool, retention time.Duration) *Store {
	return &Store{
		pool:      pool,
		retention: retention,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// cutoff is the creation time at or before which a record has expired.
func (s *Store) cutoff() time.Time {
	if s.retention <= 0 {
		return time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return s.now().Add(-s.retention)
}

func (s *Store) Get(ctx context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	if s.pool == nil {
		return idempotency.Record{}, false, errors.New("nil postgres pool")
	}
	var rec idempotency.Record
	err := s.pool.QueryRow(ctx, selectRecordSQL, string(fp.Key), fp.Method, fp.Route, fp.BodyHash, s.cutoff()).
		Scan(&rec.StatusCode, &rec.ContentType, &rec.Body, &rec.CreatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return idempotency.Record{}, false, nil
	case err != nil:
		return idempotency.Record{}, false, err
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, true, nil
}

func (s *Store) Put(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	if rec.Body == nil {
		rec.Body = []byte{}
	}
	_, err := s.pool.Exec(ctx, upsertRecordSQL,
		string(fp.Key), fp.Method, fp.Route, fp.BodyHash,
		rec.StatusCode, rec.ContentType, rec.Body, rec.CreatedAt.UTC(),
	)
	return err
}

// Purge deletes expired records and reports how many were removed.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	if s.retention <= 0 {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx, purgeSQL, s.cutoff())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
