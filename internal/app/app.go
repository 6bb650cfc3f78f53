package app

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

	"github.com/redis/go-redis/v9"

	"go-account-service/internal/config"
	"go-account-service/internal/database"
	"go-account-service/internal/handler"
	"go-account-service/internal/mailer"
	"go-account-service/internal/middleware"
	"go-account-service/internal/objectstore"
	"go-account-service/internal/repository"
	"go-account-service/internal/router"
	"go-account-service/internal/service"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	slog.Info("redis connected")

	userRepo := repository.NewUserRepository(db.Pool)
	sessionRegistry := repository.NewSessionRegistry(redisClient, cfg.RefreshTokenTTL)

	tokenService, err := service.NewTokenService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	smtpMailer, err := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFromAddress, cfg.MailFromName)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}

	avatarStore, err := objectstore.New(context.Background(), cfg.S3Endpoint, cfg.S3Region, cfg.S3Bucket, cfg.S3AccessKey, cfg.S3SecretKey)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize object store: %w", err)
	}

	authService := service.NewAuthService(userRepo, sessionRegistry, tokenService, smtpMailer,
		cfg.ClientURL, cfg.VerificationCodeTTL, cfg.ResetCodeTTL)
	userService := service.NewUserService(userRepo, sessionRegistry, avatarStore, smtpMailer)

	cookies := handler.CookieConfig{
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
		Secure:     cfg.IsProduction(),
	}

	authMiddleware := middleware.NewAuthMiddleware(tokenService)
	authHandler := handler.NewAuthHandler(authService, cookies)
	userHandler := handler.NewUserHandler(userService, cookies, cfg.MaxAvatarSize)

	appRouter := router.New(cfg, authMiddleware, authHandler, userHandler)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      appRouter,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		cleanupFuncs: []func(){
			func() {
				db.Close()
			},
			func() {
				if err := redisClient.Close(); err != nil {
					slog.Warn("redis close failed", "error", err)
				}
			},
		},
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	slog.Info("server stopped")
	return nil
}
