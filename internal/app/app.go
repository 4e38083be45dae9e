package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/handlers"
	"github.com/vidtube/backend/internal/httpserver"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/storage"
)

const tokenIssuer = "vidtube"

// Run dispatches the CLI commands and returns a process exit code.
func Run(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	command := "serve"
	if len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "serve":
		if err := serve(cfg, logger); err != nil {
			logger.Error("server exited with error", "error", err)
			return 1
		}
		return 0
	case "ensure-indexes":
		if err := ensureIndexes(cfg, logger); err != nil {
			logger.Error("failed to ensure indexes", "error", err)
			return 1
		}
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (expected serve or ensure-indexes)\n", command)
		return 2
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// mongoHealth adapts the driver client to the health check interface.
type mongoHealth struct {
	client *mongo.Client
}

func (m mongoHealth) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return m.client.Ping(ctx, readpref.Primary())
}

func serve(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Warn("failed to disconnect mongo client", "error", err)
		}
	}()

	database := client.Database(cfg.MongoDatabase)
	if err := repositories.EnsureIndexes(ctx, database); err != nil {
		return err
	}

	objectStore, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
	if err != nil {
		return err
	}

	router := handlers.NewRouter(handlers.Dependencies{
		Logger: logger,
		Config: cfg,

		Users:         repositories.NewMongoUserRepository(database),
		Videos:        repositories.NewMongoVideoRepository(database),
		Comments:      repositories.NewMongoCommentRepository(database),
		Likes:         repositories.NewMongoLikeRepository(database),
		Subscriptions: repositories.NewMongoSubscriptionRepository(database),
		Playlists:     repositories.NewMongoPlaylistRepository(database),
		Tweets:        repositories.NewMongoTweetRepository(database),

		Tokens: auth.NewTokenManager(tokenIssuer, cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		Media:  objectStore,
		Prober: media.NewFFProbeProvider(cfg.FFProbePath, cfg.FFProbeTimeout),
		DB:     mongoHealth{client: client},

		Started: time.Now().UTC(),
	})

	server := httpserver.New(cfg.AppPort, router)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "port", cfg.AppPort)
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return nil
}

func ensureIndexes(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Warn("failed to disconnect mongo client", "error", err)
		}
	}()

	if err := repositories.EnsureIndexes(ctx, client.Database(cfg.MongoDatabase)); err != nil {
		return err
	}

	logger.Info("indexes ensured", "database", cfg.MongoDatabase)
	return nil
}
