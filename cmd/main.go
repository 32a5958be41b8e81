package main

//go:generate swag init -g cmd/main.go -o docs --dir ../

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

	"github.com/Dosada05/slot-arena/config"
	"github.com/Dosada05/slot-arena/db"
	"github.com/Dosada05/slot-arena/handlers"
	"github.com/Dosada05/slot-arena/metrics"
	"github.com/Dosada05/slot-arena/middleware"
	"github.com/Dosada05/slot-arena/realtime"
	api "github.com/Dosada05/slot-arena/routes"
	"github.com/Dosada05/slot-arena/services"
	"github.com/Dosada05/slot-arena/storage"
	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

// @title Slot Arena API
// @version 1.0
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("application failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("store", cfg.StoreDriver))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := db.OpenStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer closeStore()
	logger.Info("store ready", slog.String("driver", cfg.StoreDriver))

	// Cloudflare R2, либо data: URL в режиме разработки
	var uploader storage.FileUploader
	if cfg.R2Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		uploader = storage.NewDataURLUploader()
		logger.Warn("R2 is not configured, uploads are returned as data URLs")
	}

	metrics.Register()

	hub := realtime.NewHub(logger)

	// Инициализация сервисов
	tournamentService := services.NewTournamentService(store, hub, logger)
	registrationService := services.NewRegistrationService(store, tournamentService, logger)
	dashboardService := services.NewDashboardService(store, tournamentService)
	authService := services.NewAuthService(store, logger)
	uploadService := services.NewUploadService(uploader, logger)

	reconciler, err := services.NewReconciler(tournamentService, cfg.ReconcileInterval, logger)
	if err != nil {
		return err
	}

	// Инициализация обработчиков HTTP
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:         handlers.NewAuthHandler(authService, cfg.JWTSecretKey, cfg.JWTTTL),
		Registration: handlers.NewRegistrationHandler(registrationService),
		Tournament:   handlers.NewTournamentHandler(tournamentService),
		Upload:       handlers.NewUploadHandler(uploadService, tournamentService),
		Dashboard:    handlers.NewDashboardHandler(dashboardService),
		WebSocket:    handlers.NewWebSocketHandler(hub, cfg.AllowedOrigins, logger),
		Health:       handlers.NewHealthHandler(store.Health, cfg.StoreDriver),
	}, api.Options{
		JWTSecret:      []byte(cfg.JWTSecretKey),
		AllowedOrigins: cfg.AllowedOrigins,
		PublicLimiter:  middleware.NewRateLimiter(cfg.SubmitRatePerMinute, cfg.SubmitRateBurst),
		Logger:         logger,
	})
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		if err := reconciler.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		return reconciler.Stop()
	})

	g.Go(func() error {
		logger.Info("starting server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			_ = server.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server shutdown complete")
		return nil
	})

	return g.Wait()
}
