package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// AuthConfig configures password hashing and token issuance.
type AuthConfig struct {
	// Secret is the HMAC key used to sign and verify HS256 tokens.
	Secret []byte
	Issuer string
	TTL    time.Duration

	BcryptCost int
}

func LoadAuthConfigFromEnv() (AuthConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return AuthConfig{}, fmt.Errorf("missing required env var: JWT_SECRET")
	}

	cfg := AuthConfig{
		Secret:     []byte(secret),
		Issuer:     getenv("JWT_ISSUER", "roadbook-api"),
		TTL:        time.Hour,
		BcryptCost: 10,
	}

	if v := os.Getenv("JWT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return AuthConfig{}, fmt.Errorf("JWT_TTL must be a duration (e.g. 1h): %w", err)
		}
		if d <= 0 {
			return AuthConfig{}, fmt.Errorf("JWT_TTL must be positive")
		}
		cfg.TTL = d
	}
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return AuthConfig{}, fmt.Errorf("BCRYPT_COST must be an integer: %w", err)
		}
		if n < bcrypt.MinCost || n > bcrypt.MaxCost {
			return AuthConfig{}, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
		}
		cfg.BcryptCost = n
	}

	return cfg, nil
}
