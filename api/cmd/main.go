package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/application/publish"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/application/universal"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/config"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/domain"
	rediscache "github.com/baechuer/real-time-ressys/services/syndication-service/internal/infrastructure/caching/redis"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/infrastructure/db/postgres"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/infrastructure/downstream"
	rabbitpub "github.com/baechuer/real-time-ressys/services/syndication-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/infrastructure/platforms/bandsintown"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/infrastructure/platforms/eventbrite"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/infrastructure/platforms/facebook"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/infrastructure/platforms/residentadvisor"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/transport/http/handlers"
	authmw "github.com/baechuer/real-time-ressys/services/syndication-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/transport/http/router"
)

// sysClock implements publish.Clock using system time
type sysClock struct{}

func (sysClock) Now() time.Time { return time.Now().UTC() }

// App holds all dependencies for the service
type App struct {
	Config *config.Config
	Server *http.Server
	DB     *sql.DB

	Publisher *rabbitpub.Publisher
	Cache     *rediscache.Client
}

func (a *App) Close() {
	if a.Publisher != nil {
		_ = a.Publisher.Close()
	}
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
}

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("config load failed")
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	if u, err := url.Parse(cfg.DatabaseURL); err == nil {
		zlog.Info().
			Str("db_user", u.User.Username()).
			Str("db_host", u.Host).
			Str("db_db", u.Path).
			Msg("db config loaded")
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal().Err(err).Msg("db open failed")
	}
	defer db.Close()

	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			zlog.Fatal().Err(err).Msg("db ping failed")
		}
		if err := postgres.New(db).Migrate(ctx); err != nil {
			zlog.Fatal().Err(err).Msg("db migrate failed")
		}
	}

	app, err := NewApp(cfg, db)
	if err != nil {
		zlog.Fatal().Err(err).Msg("app init failed")
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		zlog.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		zlog.Info().Msg("shutting down")
	case err := <-errCh:
		zlog.Error().Err(err).Msg("server crashed")
	}

	// let in-flight fan-outs finish their platform calls
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.PlatformTimeout+5*time.Second)
	defer cancel()
	if err := app.Server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func NewApp(cfg *config.Config, db *sql.DB) (*App, error) {
	app := &App{Config: cfg, DB: db}

	// 1) Infrastructure
	repo := postgres.New(db)

	// platform lookups go uncached without redis
	var cache downstream.Cache
	if cfg.RedisURL != "" {
		c, err := rediscache.New(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis init: %w", err)
		}
		app.Cache = c
		cache = c
		zlog.Info().Msg("redis cache ready")
	} else {
		zlog.Warn().Msg("REDIS_URL empty: platform lookups are not cached")
	}

	var events publish.EventPublisher = publish.NoopPublisher{}
	if cfg.RabbitURL != "" {
		p, err := rabbitpub.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("rabbit publisher init: %w", err)
		}
		app.Publisher = p
		events = p
		zlog.Info().Str("exchange", cfg.RabbitExchange).Msg("rabbit publisher ready")
	} else {
		zlog.Warn().Msg("RABBIT_URL empty: domain events will not be published")
	}

	// 2) Platforms
	clock := sysClock{}
	httpClient := &http.Client{}
	httpCfg := downstream.DefaultClientConfig()

	registry := publish.NewRegistry(
		facebook.New(facebook.Config{
			GraphURL: cfg.FacebookGraphURL,
			CacheTTL: cfg.PlatformCacheTTL,
			HTTP:     httpCfg,
		}, httpClient, cache, clock),
		eventbrite.New(eventbrite.Config{
			APIURL:   cfg.EventbriteAPIURL,
			CacheTTL: cfg.PlatformCacheTTL,
			Region:   cfg.HomeRegion,
			HTTP:     httpCfg,
		}, httpClient, cache),
		residentadvisor.New(),
		bandsintown.New(bandsintown.Config{
			APIURL: cfg.BandsintownAPIURL,
			Region: cfg.HomeRegion,
			HTTP:   httpCfg,
		}, httpClient),
	)

	updatable := make([]domain.Platform, 0, len(cfg.UpdatePlatforms))
	for _, name := range cfg.UpdatePlatforms {
		p, err := domain.ParsePlatform(name)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("UPDATE_PLATFORMS: %w", err)
		}
		updatable = append(updatable, p)
	}

	// 3) Application
	svc := publish.New(repo, registry, clock,
		publish.WithEvents(events),
		publish.WithHome(universal.Home{
			Timezone: cfg.HomeTimezone,
			Currency: cfg.HomeCurrency,
			Region:   cfg.HomeRegion,
		}),
		publish.WithParallelism(cfg.PublishParallelism),
		publish.WithPlatformTimeout(cfg.PlatformTimeout),
		publish.WithUpdatePlatforms(updatable...),
	)

	// 4) Transport
	h := handlers.NewPublicationsHandler(svc)
	auth := authmw.NewAuth(cfg.JWTSecret, cfg.JWTIssuer)
	z := handlers.NewHealthHandler(healthChecks(app))

	// 5) Server
	app.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router.New(h, auth, z, cfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
	return app, nil
}

func healthChecks(app *App) map[string]handlers.Check {
	checks := map[string]handlers.Check{
		"db": app.DB.PingContext,
	}
	if app.Cache != nil {
		checks["redis"] = app.Cache.Ping
	}
	if app.Publisher != nil {
		p := app.Publisher
		checks["rabbitmq"] = func(context.Context) error {
			if !p.Healthy() {
				return errors.New("rabbitmq channel closed")
			}
			return nil
		}
	}
	return checks
}
