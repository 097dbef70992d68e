package idempotency

import (
	"context"
	"time"
)

// Key is the value of the Idempotency-Key request header.
type Key string

// Fingerprint addresses one stored record.
//
// Two records exist per key and route: a marker with an empty BodyHash whose Body holds the hash
// of the first payload seen, and the replayable response stored under that hash.
type Fingerprint struct {
	Key      Key
	Method   string
	Route    string
	BodyHash string
}

// Record is either a marker (StatusCode 0) or a response that can be written back verbatim.
type Record struct {
	StatusCode  int
	ContentType string
	Body        []byte
	CreatedAt   time.Time
}

// Store persists records so retried create requests do not create duplicates.
// Put overwrites any record stored under the same fingerprint.
type Store interface {
	Get(ctx context.Context, fp Fingerprint) (Record, bool, error)
	Put(ctx context.Context, fp Fingerprint, rec Record) error
}
