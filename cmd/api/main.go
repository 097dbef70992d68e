package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	firebaseidentity "github.com/Overland-East-Bay/roadbook-api/internal/adapters/firebase"
	"github.com/Overland-East-Bay/roadbook-api/internal/adapters/httpapi"
	memidempotency "github.com/Overland-East-Bay/roadbook-api/internal/adapters/memory/idempotency"
	memidentity "github.com/Overland-East-Bay/roadbook-api/internal/adapters/memory/identity"
	memmailer "github.com/Overland-East-Bay/roadbook-api/internal/adapters/memory/mailer"
	memnotificationrepo "github.com/Overland-East-Bay/roadbook-api/internal/adapters/memory/notificationrepo"
	memtriprepo "github.com/Overland-East-Bay/roadbook-api/internal/adapters/memory/triprepo"
	memuserrepo "github.com/Overland-East-Bay/roadbook-api/internal/adapters/memory/userrepo"
	"github.com/Overland-East-Bay/roadbook-api/internal/adapters/mongodb"
	mongoidempotency "github.com/Overland-East-Bay/roadbook-api/internal/adapters/mongodb/idempotency"
	mongonotificationrepo "github.com/Overland-East-Bay/roadbook-api/internal/adapters/mongodb/notificationrepo"
	mongotriprepo "github.com/Overland-East-Bay/roadbook-api/internal/adapters/mongodb/triprepo"
	mongouserrepo "github.com/Overland-East-Bay/roadbook-api/internal/adapters/mongodb/userrepo"
	postgres "github.com/Overland-East-Bay/roadbook-api/internal/adapters/postgres"
	pgidempotency "github.com/Overland-East-Bay/roadbook-api/internal/adapters/postgres/idempotency"
	pgnotificationrepo "github.com/Overland-East-Bay/roadbook-api/internal/adapters/postgres/notificationrepo"
	pgtriprepo "github.com/Overland-East-Bay/roadbook-api/internal/adapters/postgres/triprepo"
	pguserrepo "github.com/Overland-East-Bay/roadbook-api/internal/adapters/postgres/userrepo"
	redisidempotency "github.com/Overland-East-Bay/roadbook-api/internal/adapters/redis/idempotency"
	smtpmailer "github.com/Overland-East-Bay/roadbook-api/internal/adapters/smtp"
	"github.com/Overland-East-Bay/roadbook-api/internal/app/auth"
	"github.com/Overland-East-Bay/roadbook-api/internal/app/notifications"
	"github.com/Overland-East-Bay/roadbook-api/internal/app/trips"
	"github.com/Overland-East-Bay/roadbook-api/internal/platform/auth/password"
	"github.com/Overland-East-Bay/roadbook-api/internal/platform/auth/token"
	platformclock "github.com/Overland-East-Bay/roadbook-api/internal/platform/clock"
	"github.com/Overland-East-Bay/roadbook-api/internal/platform/config"
	idempotencyport "github.com/Overland-East-Bay/roadbook-api/internal/ports/out/idempotency"
	identityport "github.com/Overland-East-Bay/roadbook-api/internal/ports/out/identity"
	mailerport "github.com/Overland-East-Bay/roadbook-api/internal/ports/out/mailer"
	notificationrepoport "github.com/Overland-East-Bay/roadbook-api/internal/ports/out/notificationrepo"
	triprepoport "github.com/Overland-East-Bay/roadbook-api/internal/ports/out/triprepo"
	userrepoport "github.com/Overland-East-Bay/roadbook-api/internal/ports/out/userrepo"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run returns instead of exiting so that deferred cleanups always close the database clients.
func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: .env not loaded: %v", err)
	}

	serverCfg, err := config.LoadServerConfigFromEnv()
	if err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}
	authCfg, err := config.LoadAuthConfigFromEnv()
	if err != nil {
		return fmt.Errorf("invalid auth config: %w", err)
	}
	idemCfg, err := config.LoadIdempotencyConfigFromEnv()
	if err != nil {
		return fmt.Errorf("invalid idempotency config: %w", err)
	}

	ctx := context.Background()
	clk := platformclock.NewSystemClock()

	var (
		userRepo  userrepoport.Repository
		tripRepo  triprepoport.Repository
		notifRepo notificationrepoport.Repository
		idemStore idempotencyport.Store
		cleanups  []func()
	)

	defer func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}()

	switch serverCfg.StorageBackend {
	case "mongo":
		mongoCfg, err := config.LoadMongoConfigFromEnv()
		if err != nil {
			return fmt.Errorf("invalid mongo config: %w", err)
		}
		client, err := mongodb.Connect(ctx, mongoCfg.URI, mongoCfg.ConnectTimeout)
		if err != nil {
			return fmt.Errorf("mongo: %w", err)
		}
		cleanups = append(cleanups, func() { _ = client.Disconnect(context.Background()) })

		db := client.Database(mongoCfg.Database)
		if err := mongodb.EnsureIndexes(ctx, db, idemCfg.TTL); err != nil {
			return fmt.Errorf("mongo indexes: %w", err)
		}
		userRepo = mongouserrepo.NewRepo(db)
		tripRepo = mongotriprepo.NewRepo(db)
		notifRepo = mongonotificationrepo.NewRepo(db)
		idemStore = mongoidempotency.NewStore(db, idemCfg.TTL)
		log.Printf("storage: mongo database %q", mongoCfg.Database)
	case "postgres":
		pgCfg, err := config.LoadPostgresConfigFromEnv()
		if err != nil {
			return fmt.Errorf("invalid postgres config: %w", err)
		}
		pool, err := postgres.NewPool(ctx, pgCfg.DSN, postgres.PoolOptions{})
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		cleanups = append(cleanups, pool.Close)

		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			return fmt.Errorf("postgres schema: %w", err)
		}
		userRepo = pguserrepo.NewRepo(pool)
		tripRepo = pgtriprepo.NewRepo(pool)
		notifRepo = pgnotificationrepo.NewRepo(pool)
		pgIdem := pgidempotency.NewStore(pool, idemCfg.TTL)
		if n, err := pgIdem.Purge(ctx); err != nil {
			log.Printf("warning: idempotency purge failed: %v", err)
		} else if n > 0 {
			log.Printf("idempotency: purged %d expired records", n)
		}
		idemStore = pgIdem
		log.Printf("storage: postgres")
	default:
		userRepo = memuserrepo.NewRepo()
		tripRepo = memtriprepo.NewRepo()
		notifRepo = memnotificationrepo.NewRepo()
		idemStore = memidempotency.NewStore()
		log.Printf("storage: memory (data is lost on restart)")
	}

	if idemCfg.Backend == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     idemCfg.RedisAddr,
			Password: idemCfg.RedisPassword,
			DB:       idemCfg.RedisDB,
		})
		cleanups = append(cleanups, func() { _ = rdb.Close() })
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		idemStore = redisidempotency.NewStore(rdb, idemCfg.TTL)
	}

	idp, err := newIdentityProvider(ctx)
	if err != nil {
		return fmt.Errorf("identity provider: %w", err)
	}
	mail, err := newMailer()
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}

	authSvc := auth.NewService(userRepo, password.NewHasher(authCfg.BcryptCost), token.New(authCfg), idp, mail, clk)
	tripSvc := trips.NewService(tripRepo, clk)
	notifSvc := notifications.NewService(notifRepo, clk)

	api := httpapi.NewServer(authSvc, tripSvc, notifSvc, idemStore)
	api.ResetLinkInResponse = serverCfg.ResetLinkInResponse

	handler := httpapi.NewRouterWithOptions(api, httpapi.RouterOptions{
		ProtectResources: serverCfg.ProtectResources,
		LogRequests:      true,
	})

	srv := &http.Server{
		Addr:              ":" + serverCfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("api listening on :%s", serverCfg.Port)
	return serve(sigCtx, srv)
}

// serve runs srv until ctx is done and then shuts it down.
// A listen failure is returned to the caller instead of exiting the process.
func serve(ctx context.Context, srv *http.Server) error {
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}
	log.Printf("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newIdentityProvider(ctx context.Context) (identityport.Provider, error) {
	cfg, err := config.LoadIdentityConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if cfg.Backend == "memory" {
		// Local development: every email is accepted as a known account.
		return devIdentity{memidentity.NewProvider(cfg.ContinueURL)}, nil
	}
	return firebaseidentity.NewProvider(ctx, firebaseidentity.Options{
		CredentialsFile: cfg.CredentialsFile,
		ProjectID:       cfg.ProjectID,
		ContinueURL:     cfg.ContinueURL,
	})
}

// devIdentity registers accounts on demand so the in-memory provider never rejects an email.
type devIdentity struct {
	*memidentity.Provider
}

func (d devIdentity) PasswordResetLink(ctx context.Context, email string) (string, error) {
	d.Register(email)
	return d.Provider.PasswordResetLink(ctx, email)
}

func newMailer() (mailerport.Mailer, error) {
	cfg, err := config.LoadMailConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if cfg.Backend == "log" {
		outbox := memmailer.NewOutbox()
		outbox.Logger = log.Default()
		return outbox, nil
	}
	return smtpmailer.NewMailer(smtpmailer.Options{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
	})
}
