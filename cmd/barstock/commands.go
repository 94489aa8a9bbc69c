package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"BarStock/internal/auth"
	"BarStock/internal/config"
	"BarStock/internal/inventory"
	"BarStock/pkg/kit"
)

func newServeCommand(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the inventory HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *envFile)
		},
	}
}

func newNormalizeCommand(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize",
		Short: "Rewrite the stored document in normalized form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			log, err := kit.NewLogger(service, cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			store, closeStore, err := openStore(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer closeStore()

			d, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.Save(cmd.Context(), d); err != nil {
				return err
			}

			log.Info("inventory normalized",
				zap.Int("alcohols", len(d.Alcohols)),
				zap.Int("shishas", len(d.Shishas)),
				zap.Int("misc", len(d.Misc)),
			)
			return nil
		},
	}
}

func newHashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <secret>",
		Short: "Print a bcrypt hash for APP_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}

func runServe(ctx context.Context, envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	log, err := kit.NewLogger(service, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.PasswordFromFallback {
		log.Warn("APP_PASSWORD not set; using the fallback password")
	}

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		if jwtSecret, err = randomSecret(); err != nil {
			return err
		}
		log.Warn("JWT_SECRET not set; session tokens will not survive a restart")
	}

	verifier, err := auth.NewVerifier(cfg.Password, cfg.PasswordHash)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &inventory.Server{
		Service: inventory.NewService(store, log, inventory.NewMetrics(reg)),
		Log:     log,
	}
	a := &auth.Server{
		Log:      log,
		Verifier: verifier,
		JWT:      auth.NewTokenMaker(jwtSecret),
		TokenTTL: cfg.TokenTTL,
		Limiter:  kit.NewIPRateLimiter(cfg.LoginLimitPerMin, time.Minute),
	}

	h := inventory.NewHandler(s, a, inventory.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,
		CORSOrigin:     cfg.CORSOrigin,
	})

	log.Info("inventory store ready",
		zap.String("driver", cfg.StoreDriver),
		zap.String("path", cfg.DataPath),
	)

	if err := kit.RunHTTPServer(ctx, cfg.Addr(), h, log); err != nil {
		log.Error("http server stopped", zap.Error(err))
		return err
	}
	return nil
}

func loadConfig(envFile string) (config.Config, error) {
	dotenv, err := config.ReadDotenv(envFile)
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(os.Getenv, dotenv)
}

func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (inventory.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return inventory.NewMemStore(), func() {}, nil
	case config.DriverPostgres:
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		store := inventory.NewPostgresStore(db, log)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("create inventory schema: %w", err)
		}
		return store, func() { _ = db.Close() }, nil
	default:
		return inventory.NewFileStore(cfg.DataPath, log), func() {}, nil
	}
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
