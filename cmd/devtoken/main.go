package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Overland-East-Bay/roadbook-api/internal/domain"
	"github.com/Overland-East-Bay/roadbook-api/internal/platform/auth/token"
	"github.com/Overland-East-Bay/roadbook-api/internal/platform/config"
)

// Dev-only token minter.
//
// Prints a bearer token signed with JWT_SECRET, for calling a local API started with
// PROTECT_RESOURCES=true without going through /signup and /login.
func main() {
	userID := flag.String("user", "dev-user", "userId claim (also used as sub)")
	email := flag.String("email", "dev@example.com", "email claim")
	ttl := flag.Duration("ttl", 0, "token lifetime (defaults to JWT_TTL)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadAuthConfigFromEnv()
	if err != nil {
		log.Fatalf("invalid auth config: %v", err)
	}
	if *ttl > 0 {
		cfg.TTL = *ttl
	}

	signed, exp, err := token.New(cfg).Issue(domain.UserID(*userID), domain.NormalizeEmail(*email))
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}
	fmt.Fprintf(os.Stderr, "expires %s\n", exp.UTC().Format(time.RFC3339))
	fmt.Println(signed)
}
