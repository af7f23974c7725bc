// Package ui provides the local gateway server the browser dashboard
// talks to. It renders cache-first, reconciles with the remote backend
// in the background, and exposes every dashboard operation as JSON.
package ui

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/querydeck/querydeck/internal/backend"
	"github.com/querydeck/querydeck/internal/cache"
	"github.com/querydeck/querydeck/internal/ui/notifier"
	"github.com/querydeck/querydeck/internal/ui/router"
	"github.com/querydeck/querydeck/internal/ui/state"
	"golang.org/x/sync/errgroup"
)

// Server is the gateway HTTP server.
type Server struct {
	registry     *state.Registry
	sessionStore *sessions.CookieStore
	port         int
	defaultUser  string
	logger       *slog.Logger
	notifier     *notifier.Notifier
}

// Config holds configuration for the gateway server.
type Config struct {
	Client        backend.Client
	Cache         cache.Store
	Port          int
	DefaultUser   string
	SessionSecret string
	Debounce      time.Duration
	Logger        *slog.Logger
}

// NewServer creates a gateway server instance.
func NewServer(cfg Config) *Server {
	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		// Ephemeral secret: cookies only need to survive one process.
		secret = make([]byte, 32)
		_, _ = rand.Read(secret)
	}
	sessionStore := sessions.NewCookieStore(secret)
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	notify := notifier.New()
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		registry:     state.NewRegistry(cfg.Client, cfg.Cache, logger, notify, cfg.Debounce),
		sessionStore: sessionStore,
		port:         cfg.Port,
		defaultUser:  cfg.DefaultUser,
		logger:       logger,
		notifier:     notify,
	}
}

// Handler builds the gateway's HTTP handler; exposed separately so
// tests can drive it through httptest.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)
	if err := router.SetupRoutes(r, s.registry, s.sessionStore, s.notifier, s.defaultUser); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the gateway and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting gateway", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	handler, err := s.Handler()
	if err != nil {
		return err
	}

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down gateway...")
		s.registry.Close()
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Notifier returns the server's change notifier.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}
