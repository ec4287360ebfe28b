package tourbooking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/tour-booking/internal/cache"
	"github.com/magabrotheeeer/tour-booking/internal/config"
	"github.com/magabrotheeeer/tour-booking/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tour-booking/internal/http/session"
	"github.com/magabrotheeeer/tour-booking/internal/lib/jwt"
	"github.com/magabrotheeeer/tour-booking/internal/lib/password"
	"github.com/magabrotheeeer/tour-booking/internal/lib/sl"
	"github.com/magabrotheeeer/tour-booking/internal/lib/smtp"
	"github.com/magabrotheeeer/tour-booking/internal/migrations"
	"github.com/magabrotheeeer/tour-booking/internal/models"
	"github.com/magabrotheeeer/tour-booking/internal/rabbitmq"
	authservice "github.com/magabrotheeeer/tour-booking/internal/services/auth"
	"github.com/magabrotheeeer/tour-booking/internal/services/resource"
	reviewservice "github.com/magabrotheeeer/tour-booking/internal/services/review"
	senderservice "github.com/magabrotheeeer/tour-booking/internal/services/sender"
	tourservice "github.com/magabrotheeeer/tour-booking/internal/services/tour"
	userservice "github.com/magabrotheeeer/tour-booking/internal/services/user"
	"github.com/magabrotheeeer/tour-booking/internal/storage/mongodb"
)

const shutdownTimeout = 15 * time.Second

// App — HTTP API бронирования туров.
type App struct {
	server  *http.Server
	logger  *slog.Logger
	db      *mongodb.Storage
	cache   *cache.Cache
	amqp    *amqp.Connection
	limiter *middlewarectx.RateLimiter
	window  time.Duration
}

// New подключает хранилище, применяет миграции и собирает маршруты.
// Redis и RabbitMQ необязательны: без них API работает без кеша туров и приветственных писем.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.tourbooking.New"

	db, err := mongodb.New(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTimeout)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.Client, cfg.MongoDatabase, cfg.MigrationsPath); err != nil {
		_ = db.Close(context.Background())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app := &App{
		logger: logger,
		db:     db,
		window: cfg.Window,
	}

	var (
		tourOpts    []resource.Option[models.Tour, *models.Tour]
		reviewCache reviewservice.Cache
	)
	if cfg.AddressRedis != "" {
		c, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			logger.Warn("redis is unavailable, tours are not cached", sl.Err(err))
		} else {
			app.cache = c
			tourOpts = append(tourOpts, resource.WithCache[models.Tour, *models.Tour](c))
			reviewCache = c
		}
	}

	var authOpts []authservice.Option
	if cfg.RabbitMQURL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
		if err != nil {
			logger.Warn("rabbitmq is unavailable, welcome emails are disabled", sl.Err(err))
		} else {
			ch, err := rabbitmq.SetupChannel(conn, rabbitmq.MailQueues())
			if err != nil {
				_ = conn.Close()
				_ = app.close()
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			app.amqp = conn
			authOpts = append(authOpts, authservice.WithPublisher(rabbitmq.NewPublisher(ch, rabbitmq.Exchange)))
		}
	}

	users, tours, reviews := db.Users(), db.Tours(), db.Reviews()

	mailer := senderservice.NewSenderService(logger, smtp.NewTransport(cfg.SMTP, logger))
	authService := authservice.NewAuthService(
		users,
		jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL),
		password.NewHasher(cfg.BcryptCost),
		mailer,
		logger,
		authOpts...,
	)
	tourService := tourservice.NewTourService(tours, users, reviews, logger)
	reviewService := reviewservice.NewReviewService(reviews, tours, users, reviewCache, logger)

	tourCRUD := resource.New[models.Tour, *models.Tour](resource.Kind[models.Tour]{
		Name:          "tour",
		Collection:    mongodb.ToursCollection,
		DefaultFilter: mongodb.PublicTours,
		Populate:      tourService.PopulateGuides,
		PopulateOne:   tourService.PopulateReviews,
		CacheTTL:      cfg.TourTTL,
	}, tours, logger, tourOpts...)
	userCRUD := resource.New[models.User, *models.User](resource.Kind[models.User]{
		Name:          "user",
		Collection:    mongodb.UsersCollection,
		DefaultFilter: mongodb.ActiveUsers,
		Protect:       userservice.Protect,
	}, users, logger)
	reviewCRUD := resource.New[models.Review, *models.Review](resource.Kind[models.Review]{
		Name:       "review",
		Collection: mongodb.ReviewsCollection,
		Populate:   reviewService.Populate,
		Protect:    reviewservice.Protect,
		PostWrite:  reviewService.PostWrite,
	}, reviews, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app.limiter = middlewarectx.NewRateLimiter(cfg.Requests, cfg.Window)

	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Log:         logger,
		Production:  cfg.IsProduction(),
		Registry:    registry,
		RateLimiter: app.limiter,
		Cookies:     session.New(cfg.CookieTTL, cfg.IsProduction()),
		DB:          db,
		Auth:        authService,
		Users:       userservice.NewUserService(users, logger),
		Reports:     tourService,
		TourCRUD:    tourCRUD,
		UserCRUD:    userCRUD,
		ReviewCRUD:  reviewCRUD,
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// Run запускает HTTP-сервер и блокируется до отмены ctx или ошибки сервера.
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
	go a.cleanupVisitors(ctx)

	select {
	case err := <-errCh:
		_ = a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		return errors.Join(err, a.close())
	}
}

// cleanupVisitors раз в окно лимита забывает неактивные IP.
func (a *App) cleanupVisitors(ctx context.Context) {
	if a.window <= 0 {
		return
	}
	ticker := time.NewTicker(a.window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.limiter.Cleanup(); n > 0 {
				a.logger.Debug("rate limiter visitors removed", slog.Int("count", n))
			}
		}
	}
}

func (a *App) close() error {
	var errs []error
	if a.amqp != nil {
		errs = append(errs, a.amqp.Close())
	}
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	errs = append(errs, a.db.Close(ctx))
	return errors.Join(errs...)
}
