package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Overland-East-Bay/roadbook-api/internal/domain"
	"github.com/Overland-East-Bay/roadbook-api/internal/platform/config"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
)

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Claims is the payload of a login token.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Service issues and verifies HS256 login tokens using a server-held secret.
type Service struct {
	cfg   config.AuthConfig
	clock Clock
}

func New(cfg config.AuthConfig) *Service {
	return NewWithClock(cfg, nil)
}

func NewWithClock(cfg config.AuthConfig, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{cfg: cfg, clock: clock}
}

// Issue signs a token encoding {userId, email} that expires after the configured TTL.
func (s *Service) Issue(userID domain.UserID, email string) (string, time.Time, error) {
	if len(s.cfg.Secret) == 0 {
		return "", time.Time{}, errors.New("token: empty signing secret")
	}
	now := s.clock.Now()
	exp := now.Add(s.cfg.TTL)
	claims := Claims{
		UserID: string(userID),
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   string(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify checks signature, issuer and expiry and returns the token claims.
// Every failure collapses to ErrUnauthorized.
func (s *Service) Verify(ctx context.Context, raw string) (Claims, error) {
	_ = ctx
	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil || !tok.Valid {
		return Claims{}, ErrUnauthorized
	}
	if claims.UserID == "" {
		return Claims{}, ErrUnauthorized
	}
	return claims, nil
}
