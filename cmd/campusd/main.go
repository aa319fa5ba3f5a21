// Campus Core - campus services platform
//
// This is the main entry point for the Campus Core application: account
// registration and activation, session-based access control, the student
// request queue, and the campus cat feeding-site registry.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/campuscore/campus-core/migrations"

	"github.com/campuscore/campus-core/internal/api"
	"github.com/campuscore/campus-core/internal/audit"
	"github.com/campuscore/campus-core/internal/auth"
	"github.com/campuscore/campus-core/internal/feeding"
	"github.com/campuscore/campus-core/internal/infrastructure/config"
	"github.com/campuscore/campus-core/internal/infrastructure/database"
	"github.com/campuscore/campus-core/internal/infrastructure/logging"
	"github.com/campuscore/campus-core/internal/infrastructure/redis"
	"github.com/campuscore/campus-core/internal/request"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on interrupt signals for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Campus Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	hasher, err := auth.NewHasher(cfg.Security.PasswordScheme)
	if err != nil {
		return fmt.Errorf("configuring password hasher: %w", err)
	}

	// Session store: Redis when enabled (native TTL expiry), SQLite with a
	// background reaper otherwise.
	userRepo := auth.NewUserRepository(db.DB)
	var sessionRepo auth.SessionRepository
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.Connect(cfg.Redis)
		if err != nil {
			return fmt.Errorf("connecting to Redis: %w", err)
		}
		defer func() {
			log.Info("closing Redis connection")
			if closeErr := redisClient.Close(); closeErr != nil {
				log.Error("error closing Redis", "error", closeErr)
			}
		}()
		log.Info("Redis connected", "addr", cfg.Redis.Addr)
		sessionRepo = auth.NewRedisSessionRepository(redisClient.Raw(), cfg.SessionTTL())
	} else {
		log.Info("Redis disabled, using SQLite session store")
		sessionRepo = auth.NewSessionRepository(db.DB, cfg.SessionTTL())
	}

	authService := auth.NewService(userRepo, sessionRepo, hasher, cfg.SessionTTL(), log.Logger)

	// First-boot seeding. A generated admin password is logged by SeedAdmin.
	if _, err := auth.SeedAdmin(ctx, userRepo, hasher, cfg.Bootstrap.AdminPassword, log.Logger); err != nil {
		return fmt.Errorf("seeding admin account: %w", err)
	}

	feedingService := feeding.NewService(feeding.NewRepository(db.DB), log.Logger)
	if cfg.Bootstrap.SeedFeedingSites {
		seeded, seedErr := feeding.SeedSites(ctx, feeding.NewRepository(db.DB), log.Logger)
		if seedErr != nil {
			return fmt.Errorf("seeding feeding sites: %w", seedErr)
		}
		if seeded > 0 {
			log.Info("feeding sites seeded", "count", seeded)
		}
	}

	// Expired sessions in SQLite are swept by a background reaper; Redis
	// expires keys natively.
	if !cfg.Redis.Enabled {
		go authService.ReapExpiredSessions(ctx, cfg.GetReapInterval())
	}

	server, err := api.New(api.Deps{
		Config:   cfg.Server,
		Session:  cfg.Session,
		Metrics:  cfg.Metrics,
		Logger:   log,
		Auth:     authService,
		Users:    userRepo,
		Requests: request.NewService(request.NewRepository(db.DB), log.Logger),
		Feeding:  feedingService,
		Audit:    audit.NewSQLiteRepository(db.DB),
		HealthFunc: func(ctx context.Context) error {
			if err := db.HealthCheck(ctx); err != nil {
				return fmt.Errorf("database: %w", err)
			}
			if redisClient != nil {
				if err := redisClient.HealthCheck(ctx); err != nil {
					return fmt.Errorf("redis: %w", err)
				}
			}
			return nil
		},
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil && !errors.Is(closeErr, context.DeadlineExceeded) {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()
	log.Info("API server started",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"tls", cfg.Server.TLS.Enabled,
	)

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("Campus Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses CAMPUSCORE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("CAMPUSCORE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
