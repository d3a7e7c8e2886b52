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

	"github.com/SAP-F-2025/tutoring-service/internal/auth"
	"github.com/SAP-F-2025/tutoring-service/internal/config"
	"github.com/SAP-F-2025/tutoring-service/internal/events"
	"github.com/SAP-F-2025/tutoring-service/internal/handlers"
	"github.com/SAP-F-2025/tutoring-service/internal/repositories"
	"github.com/SAP-F-2025/tutoring-service/internal/repositories/memory"
	"github.com/SAP-F-2025/tutoring-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/tutoring-service/internal/repositories/redisstore"
	"github.com/SAP-F-2025/tutoring-service/internal/services"
	"github.com/SAP-F-2025/tutoring-service/internal/utils"
	"github.com/SAP-F-2025/tutoring-service/internal/validator"
	"github.com/SAP-F-2025/tutoring-service/pkg"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Service stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := utils.NewLogger(cfg.IsProduction())
	slogger := logger.Slog()
	slog.SetDefault(slogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, slogger)
	if err != nil {
		return err
	}
	repo := repositories.NewRepository(store)
	defer func() {
		if err := repo.Close(); err != nil {
			slogger.Error("Failed to close store", "error", err)
		}
	}()

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		slogger.Error("Failed to create event publisher, falling back to mock", "error", err)
		publisher = events.NewMockEventPublisher(slogger)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			slogger.Error("Failed to close event publisher", "error", err)
		}
	}()

	tokens := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiryMinutes)
	verifiers := []auth.TokenVerifier{tokens}
	if cfg.Casdoor.Enabled() {
		verifiers = append(verifiers, auth.NewCasdoorVerifier(
			cfg.Casdoor.Endpoint,
			cfg.Casdoor.ClientID,
			cfg.Casdoor.ClientSecret,
			cfg.Casdoor.Certificate,
			cfg.Casdoor.OrganizationName,
			cfg.Casdoor.ApplicationName,
		))
		slogger.Info("Casdoor tokens accepted", "endpoint", cfg.Casdoor.Endpoint)
	}

	var bot auth.BotVerifier = auth.NoopBotVerifier{}
	if cfg.TurnstileSecret != "" {
		bot = auth.NewTurnstileVerifier(cfg.TurnstileSecret)
	} else {
		slogger.Warn("TURNSTILE_SECRET not set, bot verification disabled")
	}

	v := validator.New()
	serviceManager := services.NewServiceManager(services.ServiceDeps{
		Repo:               repo,
		Publisher:          publisher,
		Validator:          v,
		Logger:             slogger,
		Tokens:             tokens,
		Verifier:           auth.NewChainVerifier(verifiers...),
		Bot:                bot,
		StrictRequestAuthz: cfg.StrictRequestAuthz,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestIDMiddleware(), utils.LoggerMiddleware(logger))
	handlers.NewHandlerManager(serviceManager, repo, v, logger).SetupRoutes(router)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", utils.RequestIDHeader},
		ExposedHeaders:   []string{utils.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           corsHandler.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slogger.Info("Tutoring service started", "addr", server.Addr, "store", cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slogger.Info("Shutting down tutoring service")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openStore builds the KVStore selected by STORE_DRIVER.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.KVStore, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		logger.Warn("Using in-memory store, data is lost on restart")
		return memory.NewKVMemory(), nil
	case config.StoreRedis:
		client, err := pkg.NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("Connected to Redis", "namespace", cfg.RedisNamespace)
		return redisstore.NewKVRedis(client, cfg.RedisNamespace), nil
	case config.StorePostgres:
		db, err := pkg.InitDatabase(cfg)
		if err != nil {
			return nil, err
		}
		store, err := postgres.NewKVPostgreSQL(db)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare kv table: %w", err)
		}
		logger.Info("Connected to PostgreSQL")
		return store, nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
