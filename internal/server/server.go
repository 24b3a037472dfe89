// Package server собирает HTTP сервер синхронизации: хранилище,
// реестр секвенсоров, хабы сессий и ретрансляцию атомов.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"github.com/iudanet/gophtext/internal/ot"
	"github.com/iudanet/gophtext/internal/server/config"
	"github.com/iudanet/gophtext/internal/server/handlers"
	"github.com/iudanet/gophtext/internal/server/hub"
	"github.com/iudanet/gophtext/internal/server/middleware"
	"github.com/iudanet/gophtext/internal/server/relay"
	"github.com/iudanet/gophtext/internal/server/storage/sqlite"
)

// Server HTTP сервер документов
type Server struct {
	logger   *slog.Logger
	store    *sqlite.Storage
	registry *ot.Registry
	otHub    *hub.OTHub
	crdtHub  *hub.CRDTHub
	relay    relay.Relay
	limiter  *middleware.RateLimiter
	http     *http.Server
	cfg      config.Config
}

// New открывает хранилище и собирает обработчики. Redis подключается,
// только если задан адрес; иначе атомы ретранслируются внутри процесса.
func New(ctx context.Context, cfg config.Config, version string, logger *slog.Logger) (*Server, error) {
	store, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	if docs, err := store.ListDocuments(ctx); err == nil {
		logger.Info("Storage opened", "path", cfg.DBPath, "ot_documents", len(docs))
	} else {
		logger.Warn("Failed to list stored documents", "error", err)
	}

	checks := map[string]handlers.Pinger{"sqlite": store}

	var rel relay.Relay = relay.NewLocal()
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			// Без Redis экземпляр работает сам по себе, состояние выровняется при подключении клиентов
			logger.Warn("Redis is unavailable", "addr", cfg.RedisAddr, "error", err)
		}
		rel = relay.NewRedis(client, logger)
		checks["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}

	s := &Server{
		logger:   logger,
		store:    store,
		registry: ot.NewRegistry(store, logger, ot.WithSubscriberBuffer(cfg.SubscriberBuffer)),
		relay:    rel,
		cfg:      cfg,
	}
	s.otHub = hub.NewOTHub(s.registry, logger)
	s.crdtHub = hub.NewCRDTHub(store, rel, logger)

	middlewares := []mux.MiddlewareFunc{
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingWithSkip(logger, []string{"/api/v1/health"}),
	}
	if cfg.RateLimit > 0 {
		s.limiter = middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow, logger)
		middlewares = append(middlewares, middleware.WriteLimitMiddleware(s.limiter))
	}

	router := handlers.NewRouter(
		handlers.NewHealthHandler(logger, version, checks),
		handlers.NewOTHandler(logger, s.otHub),
		handlers.NewCRDTHandler(logger, s.crdtHub),
		handlers.Streams{OT: s.otHub.ServeWS, CRDT: s.crdtHub.ServeWS},
		middlewares...,
	)

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ShutdownTimeout,
	}
	return s, nil
}

// Handler возвращает маршрутизатор сервера
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run обслуживает запросы до отмены ctx, затем завершает сервер
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", "addr", s.cfg.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	err := s.http.Shutdown(shutdownCtx)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Graceful shutdown failed", "error", err)
	}
	s.Close()
	return nil
}

// Close останавливает секвенсоры и хабы и закрывает хранилище.
// Websocket сессии OT завершаются вместе с подписками секвенсоров.
func (s *Server) Close() {
	s.registry.Close()
	s.otHub.Wait()
	s.crdtHub.Close()

	if err := s.relay.Close(); err != nil {
		s.logger.Error("Failed to close relay", "error", err)
	}
	if s.limiter != nil {
		s.limiter.Stop()
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error("Failed to close storage", "error", err)
	}
	s.logger.Info("Server stopped")
}
