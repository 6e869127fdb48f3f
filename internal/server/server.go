package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-fieldops/internal/app/apiclient"
	"github.com/FACorreiaa/go-fieldops/internal/app/session"
	"github.com/FACorreiaa/go-fieldops/internal/pkg/config"
)

// Server holds the dependencies for the HTTP server
type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	redis   *redis.Client
	backend session.Backend
	api     *apiclient.Client
	router  http.Handler
}

// New creates a new Server instance with all dependencies
func New(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logger,
	}

	api, err := apiclient.New(apiclient.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, apiclient.TokenSourceFunc(session.TokenFromContext), logger.Named("apiclient"))
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	s.api = api

	backend, err := s.setupSessionBackend(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to setup session backend: %w", err)
	}
	s.backend = backend

	return s, nil
}

// setupSessionBackend picks where visitors' tokens are kept.
func (s *Server) setupSessionBackend(ctx context.Context) (session.Backend, error) {
	sc := s.cfg.Session
	switch sc.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     sc.Redis.Addr,
			Password: sc.Redis.Password,
			DB:       sc.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping %s: %w", sc.Redis.Addr, err)
		}
		s.redis = client
		s.logger.Info("Session backend ready", zap.String("backend", "redis"), zap.String("addr", sc.Redis.Addr))
		return &session.RedisBackend{Client: client, TTL: sc.TTL}, nil
	case "memory":
		s.logger.Warn("Using in-memory session backend; sessions are lost on restart")
		return session.NewMemoryBackend(sc.TTL), nil
	default:
		s.logger.Info("Session backend ready", zap.String("backend", "cookie"))
		return session.CookieBackend{}, nil
	}
}

// HTTPServer creates and configures the HTTP server
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         ":" + s.cfg.ServerPort,
		Handler:      s.router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// SetRouter sets the HTTP router/handler
func (s *Server) SetRouter(router http.Handler) {
	s.router = router
}

func (s *Server) Backend() session.Backend { return s.backend }

func (s *Server) API() *apiclient.Client { return s.api }

// GetLogger returns the logger instance
func (s *Server) GetLogger() *zap.Logger {
	return s.logger
}

// GetConfig returns the configuration
func (s *Server) GetConfig() *config.Config {
	return s.cfg
}

// Close closes all server resources
func (s *Server) Close() {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}
}
