// Package password hashes and checks user passwords with bcrypt.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch indicates the plaintext does not match the stored hash.
var ErrMismatch = errors.New("password mismatch")

// ErrTooLong is returned by Hash for plaintexts longer than MaxBytes.
var ErrTooLong = errors.New("password too long")

// MaxBytes is the longest plaintext bcrypt accepts.
const MaxBytes = 72

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 10

type Hasher struct {
	cost int
}

func NewHasher(cost int) Hasher {
	if cost == 0 {
		cost = DefaultCost
	}
	return Hasher{cost: cost}
}

// Hash returns a salted bcrypt hash of plaintext.
func (h Hasher) Hash(plaintext string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, ErrTooLong
	}
	return hash, err
}

// Compare returns ErrMismatch when plaintext does not match hash.
func (h Hasher) Compare(hash []byte, plaintext string) error {
	err := bcrypt.CompareHashAndPassword(hash, []byte(plaintext))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return err
}
