package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"tablestore/config"
	"tablestore/config/database"
	"tablestore/internal/auth"
	tableRepository "tablestore/internal/table/repository"
	tableService "tablestore/internal/table/service"
	userService "tablestore/internal/user/service"
	"tablestore/pkg/logger"
	"tablestore/pkg/metrics"
	"tablestore/router"
	"tablestore/socket"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables from OS")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DatabaseURL, cfg.DBConnectRetries)
	if err != nil {
		logger.Sugar.Fatalf("Database unavailable: %v", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		logger.Sugar.Fatalf("Failed to prepare schema: %v", err)
	}

	provider, err := newProvider(ctx, cfg)
	if err != nil {
		logger.Sugar.Fatalf("Failed to initialize identity provider: %v", err)
	}

	m := metrics.New("tablestore")

	hub := socket.NewHub()
	go hub.Run(ctx)

	repo := tableRepository.NewTableRepository(db, m)
	tables := tableService.NewTableService(repo, provider, hub, m)
	users := userService.NewUserService(repo, provider, tables)

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.Setup(router.Deps{
			Config:  cfg,
			Tables:  tables,
			Users:   users,
			Hub:     hub,
			Metrics: m,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Sugar.Errorf("Server shutdown: %v", err)
		}
	}()

	logger.Sugar.Infof("Listening on %s (auth provider: %s)", srv.Addr, cfg.AuthProvider)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Sugar.Fatalf("Server failed: %v", err)
	}
}

func newProvider(ctx context.Context, cfg *config.Config) (auth.Provider, error) {
	if cfg.AuthProvider == config.AuthJWT {
		return auth.NewJWTProvider(cfg.JWTSecret), nil
	}
	return auth.NewFirebaseProvider(ctx, cfg.FirebaseCredentials)
}
