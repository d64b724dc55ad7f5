package main

import (
	"context"
	"errors"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"regbot/internal/config"
	"regbot/internal/infrastructure"
	"regbot/internal/interfaces"
	"regbot/internal/interfaces/http"
	"regbot/internal/repository"
	"regbot/internal/usecases"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

type stores struct {
	users    interfaces.UserStore
	settings interfaces.SettingsStore
	close    func()
}

// openStores picks the backend from the database URL: sqlite paths go to
// modernc sqlite through sqlx, everything else to Postgres through pgx.
func openStores(ctx context.Context, url string, log zerolog.Logger) (*stores, error) {
	if path, ok := infrastructure.SQLitePath(url); ok {
		client, err := infrastructure.NewSQLiteClient(ctx, path)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", path).Msg("using sqlite store")
		return &stores{
			users:    repository.NewSQLiteUserRepository(client.DB),
			settings: repository.NewSQLiteSettingsRepository(client.DB),
			close: func() {
				if err := client.Close(); err != nil {
					log.Warn().Err(err).Msg("close sqlite")
				}
			},
		}, nil
	}

	client, err := infrastructure.NewPostgresClient(ctx, url)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("using postgres store")
	return &stores{
		users:    repository.NewUserRepository(client.Pool),
		settings: repository.NewSettingsRepository(client.Pool),
		close:    client.Close,
	}, nil
}

// openSessions uses Redis when configured and process memory otherwise.
func openSessions(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (interfaces.SessionStore, func(), error) {
	if cfg.URL == "" {
		log.Info().Msg("using in-memory session store")
		return infrastructure.NewMemorySessionStore(), func() {}, nil
	}

	client, err := infrastructure.NewRedisClient(ctx, cfg.URL, cfg.Password, cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Msg("using redis session store")
	return infrastructure.NewRedisSessionStore(client), func() {
		if err := client.Close(); err != nil {
			log.Warn().Err(err).Msg("close redis")
		}
	}, nil
}

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("config")
	}
	log := infrastructure.NewLogger(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openStores(ctx, cfg.Database.URL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.close()

	sessions, closeSessions, err := openSessions(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer closeSessions()

	settings, err := usecases.LoadSettings(ctx, db.settings, cfg.SeedAdminIDs, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load settings")
	}

	telegramClient, err := infrastructure.NewTelegramClient(cfg.Telegram.Token)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start telegram bot")
	}
	log.Info().Str("bot", telegramClient.Username()).Msg("telegram bot authorized")

	// Usecases
	botService := usecases.NewBotService(db.users, sessions, telegramClient, settings, log)
	broadcastUsecase := usecases.NewBroadcastUsecase(db.users, telegramClient, log)
	dashboardUsecase := usecases.NewDashboardUsecase(db.users, settings)

	poller := infrastructure.NewTelegramPoller(telegramClient, cfg.Telegram.PollTimeoutSeconds, botService.HandleUpdate, log)
	pollerDone := make(chan struct{})
	go func() {
		defer close(pollerDone)
		poller.Run(ctx)
	}()

	// HTTP
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	middleware := http.NewMiddleware(cfg.HTTP.CORSOrigins, cfg.HTTP.RateRPS, cfg.HTTP.RateBurst, log)
	adminHandler := http.NewAdminHandler(dashboardUsecase, broadcastUsecase, log)
	dashboardHandler := http.NewDashboardHandler(dashboardUsecase, infrastructure.BotLink(telegramClient.Username()), log)
	if err := http.SetupRoutes(r, adminHandler, dashboardHandler, middleware); err != nil {
		log.Fatal().Err(err).Msg("failed to set up routes")
	}

	srv := &nethttp.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	<-pollerDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	log.Info().Msg("bye")
}
