// Command devapi serves an in-memory stand-in for the field operations API so
// the web frontend can run locally without the real backend.
package main

import (
	"errors"
	"log"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-fieldops/internal/devapi"
	"github.com/FACorreiaa/go-fieldops/internal/pkg/config"
	"github.com/FACorreiaa/go-fieldops/internal/server"
	"github.com/FACorreiaa/go-fieldops/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(logger.ParseLevel(cfg.LogLevel), zap.String("service", "fieldops-devapi")); err != nil {
		return err
	}
	l := logger.Log
	defer func() { _ = l.Sync() }()

	store := devapi.NewStore()
	if err := devapi.Seed(store, cfg.DevAPI); err != nil {
		return err
	}
	jwtService := devapi.NewJWTService(devapi.JWTConfig{
		SecretKey:       cfg.DevAPI.JWTSecret,
		TokenExpiration: cfg.DevAPI.TokenTTL,
		Logger:          l,
	})
	router := devapi.NewRouter(devapi.NewHandler(store, jwtService, l),
		ginzap.Ginzap(l, time.RFC3339, true),
		ginzap.RecoveryWithZap(l, true))

	httpServer := &http.Server{
		Addr:              ":" + cfg.DevAPI.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan bool, 1)
	go server.GracefulShutdown(httpServer, l, done)

	l.Info("Development API starting",
		zap.String("port", cfg.DevAPI.Port),
		zap.String("admin", cfg.DevAPI.AdminEmail),
		zap.String("staff", cfg.DevAPI.StaffEmail))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}
