package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/vibesync/vibesync/internal/ai"
	httpapi "github.com/vibesync/vibesync/internal/api/http"
	"github.com/vibesync/vibesync/internal/api/http/middleware"
	"github.com/vibesync/vibesync/internal/auth"
	"github.com/vibesync/vibesync/internal/config"
	"github.com/vibesync/vibesync/internal/realtime"
	"github.com/vibesync/vibesync/internal/repository"
	"github.com/vibesync/vibesync/internal/repository/model"
	"github.com/vibesync/vibesync/internal/service"
	"github.com/vibesync/vibesync/lib/logger/slogpretty"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.MustLoad()
	log := setupLogger(cfg.Env)

	db, err := connectDatabase(cfg.Database)
	if err != nil {
		log.Error("failed to connect database", slog.Any("error", err))
		os.Exit(1)
	}

	registry, err := setupRegistry(cfg.Redis)
	if err != nil {
		log.Error("failed to connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	hub := realtime.NewHub(registry, log)

	userRepo := repository.NewGormUserRepository(db)
	taskRepo := repository.NewGormTaskRepository(db)
	messageRepo := repository.NewGormMessageRepository(db)

	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	hasher := auth.NewPasswordHasher()

	var generator ai.Generator = ai.StaticGenerator{}
	if cfg.AI.APIKey != "" {
		generator = ai.NewGeminiGenerator(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.BaseURL, cfg.AI.Timeout, log)
	} else {
		log.Warn("no AI api key configured, daily prompts use the built-in pool")
	}

	authService := service.NewAuthService(userRepo, tokens, hasher, hub, cfg.App.FrontendURL, log)
	partnerService := service.NewPartnerService(userRepo, hub, log)
	taskService := service.NewTaskService(taskRepo, userRepo, generator, hub, log)
	chatService := service.NewChatService(messageRepo, log)
	insightService := service.NewInsightService(taskRepo, userRepo, log)

	controllers := httpapi.Controllers{
		Auth:     httpapi.NewAuthController(authService),
		Partners: httpapi.NewPartnerController(partnerService),
		Tasks:    httpapi.NewTaskController(taskService),
		Messages: httpapi.NewMessageController(chatService),
		Charts:   httpapi.NewChartController(insightService),
		Socket:   httpapi.NewSocketController(hub, authService, chatService, taskService, log),
	}

	router := httpapi.SetupRouter(controllers, middleware.NewAuthMiddleware(tokens), cfg.HTTP.AllowedOrigins)

	log.Info("starting application", slog.String("addr", cfg.HTTP.Address))
	if err := router.Run(cfg.HTTP.Address); err != nil {
		log.Error("http server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = setupPrettySlog()
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}

func connectDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database dsn is empty")
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, errors.New("unknown database driver: " + cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Task{},
		&model.TaskResponse{},
		&model.TaskFeedback{},
		&model.ChatMessage{},
	); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

func setupRegistry(cfg config.RedisConfig) (realtime.Registry, error) {
	if cfg.URL == "" {
		return realtime.NewInMemoryRegistry(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return realtime.NewRedisRegistry(ctx, cfg.URL)
}
