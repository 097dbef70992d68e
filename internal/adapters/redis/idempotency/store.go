// Package idempotency stores Idempotency-Key replay records in Redis with a bounded lifetime.
package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Overland-East-Bay/roadbook-api/internal/ports/out/idempotency"
)

const keyPrefix = "roadbook:idempotency:"

type recordJSON struct {
	StatusCode  int       `json:"statusCode"`
	ContentType string    `json:"contentType"`
	Body        []byte    `json:"body"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Store implements idempotency.Store on top of a Redis client.
type Store struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewStore returns a store whose records expire after ttl. A non-positive ttl keeps records forever.
func NewStore(client redis.UniversalClient, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func redisKey(fp idempotency.Fingerprint) string {
	return keyPrefix + strings.Join([]string{fp.Method, fp.Route, string(fp.Key), fp.BodyHash}, "|")
}

func (s *Store) Get(ctx context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	raw, err := s.client.Get(ctx, redisKey(fp)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return idempotency.Record{}, false, nil
		}
		return idempotency.Record{}, false, err
	}
	var rec recordJSON
	if err := json.Unmarshal(raw, &rec); err != nil {
		return idempotency.Record{}, false, err
	}
	return idempotency.Record{
		StatusCode:  rec.StatusCode,
		ContentType: rec.ContentType,
		Body:        rec.Body,
		CreatedAt:   rec.CreatedAt.UTC(),
	}, true, nil
}

func (s *Store) Put(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	raw, err := json.Marshal(recordJSON{
		StatusCode:  rec.StatusCode,
		ContentType: rec.ContentType,
		Body:        rec.Body,
		CreatedAt:   rec.CreatedAt.UTC(),
	})
	if err != nil {
		return err
	}
	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	return s.client.Set(ctx, redisKey(fp), raw, ttl).Err()
}
