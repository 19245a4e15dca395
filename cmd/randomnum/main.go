package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"

	"github.com/neomorfeo/randomnum/internal/adapter/entropy"
	"github.com/neomorfeo/randomnum/internal/adapter/fsm"
	otelAdapter "github.com/neomorfeo/randomnum/internal/adapter/otel"
	riverAdapter "github.com/neomorfeo/randomnum/internal/adapter/river"
	"github.com/neomorfeo/randomnum/internal/adapter/sqlite"
	"github.com/neomorfeo/randomnum/internal/app"
	"github.com/neomorfeo/randomnum/internal/domain"

	handler "github.com/neomorfeo/randomnum/internal/adapter/http"
)

const serviceName = "randomnum"

// config is the process configuration read from the environment.
type config struct {
	Port         string        `env:"PORT"                    envDefault:"8080"`
	DatabasePath string        `env:"DATABASE_PATH"           envDefault:"randomnum.db"`
	Owner        string        `env:"RANDOMNUM_OWNER"`
	TokenSecret  string        `env:"RANDOMNUM_TOKEN_SECRET"`
	TokenTTL     time.Duration `env:"RANDOMNUM_TOKEN_TTL"     envDefault:"24h"`
	EntropyBytes int           `env:"RANDOMNUM_ENTROPY_BYTES" envDefault:"32"`
	AuditWorkers int           `env:"RANDOMNUM_AUDIT_WORKERS" envDefault:"2"`
}

func loadConfig() (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("parsing env: %w", err)
	}
	return cfg, nil
}

func main() {
	var err error
	if len(os.Args) > 2 && os.Args[1] == "token" {
		err = issueToken(os.Args[2])
	} else {
		err = run()
	}
	if err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

// issueToken prints a bearer token for the hex identity id.
func issueToken(id string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	identity, err := domain.ParseIdentity(id)
	if err != nil {
		return err
	}
	token, err := handler.NewGate(cfg.TokenSecret).Issue(identity, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("issuing token: %w", err)
	}
	fmt.Println(token)
	return nil
}

// ownerIdentity parses RANDOMNUM_OWNER. An unset or anonymous owner would
// let every caller without a token act as the owner.
func ownerIdentity(value string) (domain.Identity, error) {
	if value == "" {
		return "", errors.New("RANDOMNUM_OWNER is required")
	}
	owner, err := domain.ParseIdentity(value)
	if err != nil {
		return "", fmt.Errorf("RANDOMNUM_OWNER: %w", err)
	}
	if owner.IsAnonymous() {
		return "", errors.New("RANDOMNUM_OWNER must not be the anonymous identity")
	}
	return owner, nil
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	owner, err := ownerIdentity(cfg.Owner)
	if err != nil {
		return err
	}

	ctx := context.Background()

	// --- Observability ---
	otelCfg, err := otelAdapter.ConfigFromEnv()
	if err != nil {
		return err
	}
	providers, err := otelAdapter.Setup(ctx, otelCfg)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			slog.Error("otel shutdown", "error", err)
		}
	}()

	// --- Adapters (out) ---
	db, err := otelAdapter.OpenDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	repo, err := sqlite.NewFromDB(db)
	if err != nil {
		db.Close()
		return fmt.Errorf("database: %w", err)
	}
	defer repo.Close()

	riverClient, err := riverAdapter.Setup(ctx, db, riverAdapter.Options{
		Workers: cfg.AuditWorkers,
		Logger:  slog.Default(),
	})
	if err != nil {
		return fmt.Errorf("river: %w", err)
	}
	if err := riverClient.Start(ctx); err != nil {
		return fmt.Errorf("river start: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := riverClient.Stop(stopCtx); err != nil {
			slog.Error("river stop", "error", err)
		}
	}()

	source, err := entropy.New(cfg.EntropyBytes)
	if err != nil {
		return fmt.Errorf("entropy: %w", err)
	}
	tracedSource, err := otelAdapter.NewTracingEntropy(source)
	if err != nil {
		return fmt.Errorf("entropy metrics: %w", err)
	}

	store := otelAdapter.NewTracingStore(repo)
	publisher := otelAdapter.NewTracingPublisher(riverAdapter.NewPublisher(riverClient))

	// --- Application ---
	svc := app.NewRandomService(app.NewState(store), tracedSource, publisher, fsm.New())

	if err := svc.Initialize(ctx, owner); err != nil {
		return fmt.Errorf("initializing owner: %w", err)
	}
	if cfg.TokenSecret == "" {
		slog.Warn("RANDOMNUM_TOKEN_SECRET is empty; every caller is anonymous")
	}

	// --- Adapters (in) ---
	router := chi.NewMux()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(router)))

	api := humachi.New(router, huma.DefaultConfig(serviceName, otelCfg.ServiceVersion))
	handler.Register(api, svc, handler.NewGate(cfg.TokenSecret))

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(done)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("randomnum listening", "addr", srv.Addr, "docs", "http://localhost:"+cfg.Port+"/docs")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-done:
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	slog.Info("stopped")
	return nil
}
