package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/recipebox/recipebox-go/internal/cache"
	"github.com/recipebox/recipebox-go/internal/config"
	"github.com/recipebox/recipebox-go/internal/crypto"
	"github.com/recipebox/recipebox-go/internal/handler"
	"github.com/recipebox/recipebox-go/internal/repository"
	"github.com/recipebox/recipebox-go/internal/respond"
	"github.com/recipebox/recipebox-go/internal/service"
	"github.com/recipebox/recipebox-go/internal/storage"
)

const adminPasswordLength = 20

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.IsDevelopment() {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	users, recipes, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	statsCache, closeCache := openCache(ctx, cfg, logger)
	defer closeCache()

	var presigner storage.Presigner
	if cfg.S3.Enabled() {
		s3p, err := storage.NewS3Presigner(ctx, storage.S3Options{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		})
		if err != nil {
			return err
		}
		presigner = s3p
	} else {
		logger.Warn("S3 not configured, image uploads disabled")
	}

	issuer := crypto.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	authService := service.NewAuthService(users, issuer, logger)
	recipeService := service.NewRecipeService(recipes, statsCache, cfg.Redis.TTL, presigner, logger)

	if cfg.Admin.Email != "" {
		if err := bootstrapAdmin(ctx, cfg, authService, logger, os.Stderr); err != nil {
			return err
		}
	}

	router := handler.NewRouter(handler.RouterConfig{
		Context:        ctx,
		Auth:           authService,
		Recipes:        recipeService,
		Responder:      respond.New(logger, cfg.IsDevelopment()),
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// bootstrapAdmin creates the configured admin account. Without ADMIN_PASSWORD
// a random password is generated and written once to out, never to the log.
func bootstrapAdmin(ctx context.Context, cfg config.Config, auth *service.AuthService, logger *slog.Logger, out io.Writer) error {
	password := cfg.Admin.Password
	generated := password == ""
	if generated {
		var err error
		if password, err = crypto.RandomPassword(adminPasswordLength); err != nil {
			return fmt.Errorf("generating admin password: %w", err)
		}
	}

	created, err := auth.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Email, password)
	if err != nil {
		return err
	}
	if created && generated {
		logger.Warn("admin account created with a generated password, change it after first login", "email", cfg.Admin.Email)
		fmt.Fprintf(out, "generated admin password for %s: %s\n", cfg.Admin.Email, password)
	}
	return nil
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (service.UserStore, service.RecipeStore, func(), error) {
	switch strings.ToLower(cfg.Store) {
	case "memory":
		logger.Warn("using in-memory store, data is lost on restart")
		users, recipes := repository.NewMemoryRepositories()
		return users, recipes, func() {}, nil

	case "mysql":
		db, err := repository.NewDB(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := repository.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		closeDB := func() {
			if err := db.Close(); err != nil {
				logger.Warn("closing database", "error", err)
			}
		}
		return repository.NewUserRepository(db), repository.NewRecipeRepository(db), closeDB, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown STORE %q (want mysql or memory)", cfg.Store)
	}
}

func openCache(ctx context.Context, cfg config.Config, logger *slog.Logger) (cache.Cache, func()) {
	if cfg.Redis.Addr == "" {
		return cache.Nop{}, func() {}
	}

	rc := cache.NewRedis(cache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Prefix:   "recipebox:",
	})
	if err := rc.Ping(ctx); err != nil {
		// Cache errors are logged per call and never fail a request.
		logger.Warn("redis unreachable, continuing without a working cache", "addr", cfg.Redis.Addr, "error", err)
	}
	return rc, func() {
		if err := rc.Close(); err != nil {
			logger.Warn("closing redis", "error", err)
		}
	}
}
