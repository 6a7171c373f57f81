// Package uzeedbackend assembles the API service: storage, cache, payment
// provider and the HTTP server.
package uzeedbackend

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/uzeed/uzeed-backend/internal/cache"
	"github.com/uzeed/uzeed-backend/internal/config"
	"github.com/uzeed/uzeed-backend/internal/khipu"
	"github.com/uzeed/uzeed-backend/internal/lib/jwt"
	"github.com/uzeed/uzeed-backend/internal/migrations"
	authservice "github.com/uzeed/uzeed-backend/internal/services/auth"
	directoryservice "github.com/uzeed/uzeed-backend/internal/services/directory"
	feedservice "github.com/uzeed/uzeed-backend/internal/services/feed"
	membershipservice "github.com/uzeed/uzeed-backend/internal/services/membership"
	messageservice "github.com/uzeed/uzeed-backend/internal/services/message"
	paymentservice "github.com/uzeed/uzeed-backend/internal/services/payment"
	postservice "github.com/uzeed/uzeed-backend/internal/services/post"
	subscriptionservice "github.com/uzeed/uzeed-backend/internal/services/subscription"
	"github.com/uzeed/uzeed-backend/internal/storage/repository"
)

// App holds the running service and its resources.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

// New wires the whole service together and runs the migrations.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	maker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	provider := khipu.NewClient(cfg.ReceiverID, cfg.Secret, cfg.BaseURL)

	membershipSvc := membershipservice.New(db, logger)
	paymentSvc := paymentservice.New(db, provider, membershipSvc, paymentservice.Config{
		AmountCLP:     cfg.AmountCLP,
		DurationDays:  cfg.Days,
		AppURL:        cfg.AppURL,
		APIURL:        cfg.APIURL,
		WebhookSecret: cfg.WebhookSecret,
	}, logger)
	subscriptionSvc := subscriptionservice.New(db, logger)
	postSvc := postservice.New(db, logger)
	feedSvc := feedservice.New(db, cacheRedis, logger)
	directorySvc := directoryservice.New(db, logger)
	messageSvc := messageservice.New(db, logger)
	authSvc := authservice.New(db, maker, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, maker, db,
		authSvc, feedSvc, subscriptionSvc, paymentSvc, postSvc, directorySvc, messageSvc)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.db.DB.Close()
		return err
	}
}
