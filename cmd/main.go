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

	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"

	"sorabackend/cache"
	discordclient "sorabackend/clients/discord"
	"sorabackend/config"
	"sorabackend/db"
	"sorabackend/handlers"
	"sorabackend/logging"
	"sorabackend/metrics"
	"sorabackend/middleware"
	"sorabackend/services/guildaccess"
	starboardservice "sorabackend/services/starboard"
	"sorabackend/services/txmanager"
	"sorabackend/usecases/dashboard"
	"sorabackend/usecases/starboard"
)

const (
	discordStateMaxMessages = 500
	rateLimitCleanupPeriod  = time.Minute
	shutdownTimeout         = 10 * time.Second
	redisKeyPrefix          = "sorabot"
)

func main() {
	if err := run(); err != nil {
		slog.Error("❌ Fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	if err := logging.Init(os.Stdout, cfg.LogLevel, cfg.LogFormat); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	ctx := context.Background()
	clock := clockwork.NewRealClock()

	// Initialize error alert middleware
	alertMiddleware := middleware.NewErrorAlertMiddleware(middleware.SlackAlertConfig{
		WebhookURL:  cfg.AlertConfig.SlackWebhookURL,
		Environment: cfg.Environment,
		AppName:     "sorabackend",
		LogsURL:     cfg.AlertConfig.ServerLogsURL,
	}, clock)
	defer alertMiddleware.Wait()

	// Initialize database connection
	dbConn, err := db.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if err := db.RunMigrations(ctx, dbConn, cfg.DatabaseSchema); err != nil {
		return err
	}

	registry := metrics.NewRegistry()
	appMetrics := metrics.New(registry)

	starboardCache, stopCache, err := newCache(ctx, cfg, clock, appMetrics)
	if err != nil {
		return err
	}
	defer stopCache()

	// Initialize repositories and services with shared connection
	starboardRepo := db.NewPostgresStarboardRepository(dbConn, cfg.DatabaseSchema)
	txManager := txmanager.NewTransactionManager(dbConn)
	starboardService := starboardservice.NewStarboardService(starboardRepo, txManager)

	session, err := discordgo.New("Bot " + cfg.DiscordConfig.BotToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	session.State.MaxMessageCount = discordStateMaxMessages

	messageStore := discordclient.NewMessageStore(session)
	guildAccessService := guildaccess.NewGuildAccessService(messageStore)

	starboardUseCase := starboard.NewStarboardUseCase(
		starboardCache,
		messageStore,
		starboardService,
		appMetrics,
		cfg.StarboardConfig.SuppressionTTL,
	)
	eventsHandler := handlers.NewDiscordEventsHandler(
		session,
		starboardUseCase,
		alertMiddleware,
		cfg.StarboardConfig.Workers,
	)
	if err := eventsHandler.StartBot(); err != nil {
		return err
	}
	defer eventsHandler.StopBot()

	dashboardUseCase := dashboard.NewDashboardUseCase(
		messageStore,
		starboardService,
		guildAccessService,
		dashboard.Counters{
			MessagesReceived: eventsHandler.MessagesReceived,
			ReactionsHandled: starboardUseCase.ReactionsHandled,
		},
	)
	dashboardHandler := handlers.NewDashboardAPIHandler(dashboardUseCase, clock)
	dashboardHTTPHandler := handlers.NewDashboardHTTPHandler(dashboardHandler)
	authMiddleware := middleware.NewClerkAuthMiddleware(cfg.ClerkConfig.SecretKey, cfg.TestingMode)

	router := mux.NewRouter()
	dashboardHTTPHandler.SetupEndpoints(router, authMiddleware)
	router.Handle("/metrics", metrics.Handler(registry)).Methods("GET")

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			slog.Error("❌ Failed to write health check response", "error", err)
		}
	}).Methods("GET")

	rateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitConfig.RequestsPerSecond, cfg.RateLimitConfig.Burst, clock)
	stopRateLimitCleanup := rateLimiter.StartCleanupTimer(rateLimitCleanupPeriod)
	defer stopRateLimitCleanup()

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           alertMiddleware.HTTPMiddleware(c.Handler(rateLimiter.Middleware(router))),
		ReadHeaderTimeout: 30 * time.Second,
	}

	return handleGracefulShutdown(server)
}

// newCache builds the configured cache backend. The returned func releases its resources.
func newCache(
	ctx context.Context,
	cfg *config.AppConfig,
	clock clockwork.Clock,
	m *metrics.Metrics,
) (cache.Cache, func(), error) {
	switch cfg.CacheConfig.Backend {
	case config.CacheBackendRedis:
		rdb, err := cache.NewRedisClient(ctx, cfg.CacheConfig.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("✅ Using redis cache backend")
		return cache.NewRedisCache(rdb, redisKeyPrefix, m), func() {
			if err := rdb.Close(); err != nil {
				slog.Error("❌ Failed to close redis client", "error", err)
			}
		}, nil
	default:
		memoryCache := cache.NewMemoryCache(clock, m)
		stop := memoryCache.StartEvictionTimer(cfg.CacheConfig.EvictionInterval)
		slog.Info("✅ Using in-memory cache backend", "eviction_interval", cfg.CacheConfig.EvictionInterval)
		return memoryCache, stop, nil
	}
}

func handleGracefulShutdown(server *http.Server) error {
	// Channel to listen for interrupt signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("✅ Listening", "addr", "http://localhost"+server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-stop:
		slog.Info("🛑 Shutdown signal received, cleaning up...")
	case err := <-serverErr:
		return fmt.Errorf("failed to serve HTTP: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("❌ Server shutdown error", "error", err)
		return err
	}

	slog.Info("✅ Server stopped gracefully")
	return nil
}
