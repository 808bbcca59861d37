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

	"github.com/Dosada05/skyblock-api/cache"
	"github.com/Dosada05/skyblock-api/config"
	"github.com/Dosada05/skyblock-api/db"
	"github.com/Dosada05/skyblock-api/handlers"
	"github.com/Dosada05/skyblock-api/hypixel"
	"github.com/Dosada05/skyblock-api/live"
	"github.com/Dosada05/skyblock-api/repositories"
	api "github.com/Dosada05/skyblock-api/routes"
	"github.com/Dosada05/skyblock-api/services"
	"github.com/Dosada05/skyblock-api/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

const refreshConcurrency = 4 // Parallel upstream fetches during a scheduled refresh

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Кэш для консенсуса по календарю
	store := cache.New(cfg.CacheSizeMB)
	logger.Info("in-memory cache initialized", slog.Int("size_mb", cfg.CacheSizeMB))

	// Клиент Hypixel API с ограничением частоты запросов
	hypixelClient, err := hypixel.NewClient(hypixel.ClientConfig{
		APIKey:            cfg.HypixelAPIKey,
		RequestsPerMinute: cfg.HypixelRequestLimit,
	})
	if err != nil {
		logger.Error("failed to initialize Hypixel client", slog.Any("error", err))
		os.Exit(1)
	}
	defer hypixelClient.Close()
	logger.Info("Hypixel client initialized", slog.Int("requests_per_minute", cfg.HypixelRequestLimit))

	// Архивирование снапшотов (Cloudflare R2), опционально
	var archiver storage.SnapshotArchiver
	if cfg.ArchiverEnabled() {
		archiver, err = storage.NewCloudflareR2Archiver(storage.CloudflareR2ArchiverConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 archiver", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 archiver initialized")
	} else {
		logger.Info("snapshot archiving disabled")
	}

	// Инициализация WebSocket Hub
	wsHub := live.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	profileRepo := repositories.NewPostgresProfileRepository(dbConn)
	memberRepo := repositories.NewPostgresMemberRepository(dbConn)
	accountRepo := repositories.NewPostgresAccountRepository(dbConn)
	jacobRepo := repositories.NewPostgresJacobRepository(dbConn)
	contestRepo := repositories.NewPostgresContestRepository(dbConn)
	participationRepo := repositories.NewPostgresParticipationRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	ingestionService := services.NewIngestionService(
		profileRepo,
		memberRepo,
		accountRepo,
		jacobRepo,
		contestRepo,
		participationRepo,
		archiver,
		logger,
	)
	refreshService := services.NewRefreshService(hypixelClient, ingestionService, accountRepo, wsHub, refreshConcurrency, logger)
	contestService := services.NewContestService(contestRepo, participationRepo, memberRepo, logger)
	calendarService := services.NewCalendarService(store, contestRepo, wsHub, logger)
	logger.Info("Services initialized")

	// Фоновое обновление известных аккаунтов
	go func() {
		ticker := time.NewTicker(cfg.RefreshInterval)
		defer ticker.Stop()
		logger.Info("account refresh scheduler started", slog.Duration("interval", cfg.RefreshInterval))

		for range ticker.C {
			uuids, err := accountRepo.ListStale(context.Background(), cfg.RefreshInterval)
			if err != nil {
				logger.Error("scheduler: failed to list stale accounts", slog.Any("error", err))
				continue
			}
			if len(uuids) == 0 {
				continue
			}
			logger.Info("scheduler: refreshing stale accounts", slog.Int("count", len(uuids)))
			if err := refreshService.RefreshAccounts(context.Background(), uuids); err != nil {
				logger.Error("scheduler: refresh run failed", slog.Any("error", err))
			}
		}
	}()

	// Инициализация обработчиков HTTP
	profileHandler := handlers.NewProfileHandler(refreshService, contestService, logger)
	contestHandler := handlers.NewContestHandler(contestService, calendarService, logger)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, profileHandler, contestHandler, webSocketHandler)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
