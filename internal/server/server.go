package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackzampolin/promptdice/internal/api"
	"github.com/jackzampolin/promptdice/internal/clipboard"
	"github.com/jackzampolin/promptdice/internal/config"
	"github.com/jackzampolin/promptdice/internal/dice"
	"github.com/jackzampolin/promptdice/internal/home"
	"github.com/jackzampolin/promptdice/internal/server/endpoints"
	"github.com/jackzampolin/promptdice/internal/session"
	"github.com/jackzampolin/promptdice/internal/storage"
	"github.com/jackzampolin/promptdice/internal/svcctx"
)

// Server is the main promptdice HTTP server.
// It opens the configured storage on start and closes it on shutdown.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	configMgr  *config.Manager
	home       *home.Dir
	logger     *slog.Logger
	logLevel   *slog.LevelVar
	clipboard  session.Clipboard
	roller     dice.Roller

	// services is nil until storage is open and the session loaded
	services atomic.Pointer[svcctx.Services]

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu        sync.RWMutex
	running   bool
	boundAddr string
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: server.host from config)
	Host string
	// Port is the port to listen on (default: server.port from config)
	Port string
	// ConfigManager provides configuration with hot-reload support.
	// When nil, config.DefaultConfig() is used.
	ConfigManager *config.Manager
	// Home locates on-disk storage when storage.path is empty.
	Home *home.Dir
	// Logger is the structured logger to use
	Logger *slog.Logger
	// LogLevel, when set, is updated on config reload.
	LogLevel *slog.LevelVar
	// Clipboard overrides the clipboard.enabled setting.
	Clipboard session.Clipboard
	// Roller overrides random selection for the session and generate endpoint.
	Roller dice.Roller
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		configMgr: cfg.ConfigManager,
		home:      cfg.Home,
		logger:    cfg.Logger,
		logLevel:  cfg.LogLevel,
		clipboard: cfg.Clipboard,
		roller:    cfg.Roller,
	}

	appCfg := s.appConfig()
	if cfg.Host == "" {
		cfg.Host = appCfg.Server.Host
	}
	if cfg.Port == "" {
		cfg.Port = appCfg.Server.Port
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All(endpoints.Config{Roller: cfg.Roller}) {
		s.endpointRegistry.Register(ep)
	}

	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)
	s.handler = s.withRequestLogging(s.withServices(mux))

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

func (s *Server) appConfig() *config.Config {
	if s.configMgr != nil {
		return s.configMgr.Get()
	}
	return config.DefaultConfig()
}

// Start opens storage, loads the session and serves HTTP.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		s.setNotRunning()
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	s.mu.Lock()
	s.boundAddr = ln.Addr().String()
	s.mu.Unlock()

	// Serve before storage is ready so /health and /ready answer while
	// a slow backend (redis) is still connecting.
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	if err := s.initServices(ctx); err != nil {
		_ = s.shutdown()
		return err
	}
	s.watchConfig()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			_ = s.shutdown()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// initServices opens storage and loads the session.
func (s *Server) initServices(ctx context.Context) error {
	appCfg := s.appConfig()

	opts := storage.Options{
		Driver:      appCfg.Storage.Driver,
		Path:        appCfg.Storage.Path,
		RedisAddr:   config.ResolveEnvVars(appCfg.Storage.RedisAddr),
		RedisPrefix: appCfg.Storage.RedisPrefix,
	}
	if opts.Path == "" && s.home != nil {
		opts.Path = s.home.StoragePath(opts.Driver)
	}

	s.logger.Info("opening storage", "driver", opts.Driver, "path", opts.Path)
	store, err := storage.Open(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}

	clip := s.clipboard
	if clip == nil && appCfg.Clipboard.Enabled {
		if clipboard.Available() {
			clip = clipboard.New()
		} else {
			s.logger.Warn("clipboard enabled but not available on this platform; copies are returned to the caller only")
		}
	}

	sess, err := session.New(ctx, session.Config{
		Store:        store,
		Template:     appCfg.Template,
		Clipboard:    clip,
		CopiedWindow: appCfg.Clipboard.CopiedWindow,
		Roller:       s.roller,
		Logger:       s.logger,
	})
	if err != nil {
		store.Close()
		return fmt.Errorf("failed to load session: %w", err)
	}

	s.services.Store(&svcctx.Services{
		Session: sess,
		Store:   store,
		Config:  s.configMgr,
		Logger:  s.logger,
		Home:    s.home,
	})
	s.logger.Info("session ready", "history", len(sess.History()))
	return nil
}

// watchConfig applies reloadable settings when the config file changes.
func (s *Server) watchConfig() {
	if s.configMgr == nil {
		return
	}
	s.configMgr.OnChange(s.applyConfig)
	s.configMgr.WatchConfig()
}

// applyConfig updates the log level and copied window. Storage, listener
// and template changes need a restart.
func (s *Server) applyConfig(c *config.Config) {
	if s.logLevel != nil {
		s.logLevel.Set(c.Log.SlogLevel())
	}
	if svc := s.services.Load(); svc != nil {
		svc.Session.SetCopiedWindow(c.Clipboard.CopiedWindow)
	}
	s.logger.Info("config reloaded", "log_level", c.Log.SlogLevel().String(), "copied_window", c.Clipboard.CopiedWindow)
}

// shutdown performs graceful shutdown of the HTTP server and storage.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	if svc := s.services.Swap(nil); svc != nil {
		if err := svc.Store.Close(); err != nil {
			s.logger.Error("storage close error", "error", err)
		}
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.boundAddr = ""
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Session returns the prompt session.
// Returns nil if the server hasn't started yet.
func (s *Server) Session() *session.Session {
	if svc := s.services.Load(); svc != nil {
		return svc.Session
	}
	return nil
}

// Addr returns the server's listen address. While running it is the bound
// address, so a configured port of "0" resolves to the chosen port.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.boundAddr != "" {
		return s.boundAddr
	}
	return s.httpServer.Addr
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc := s.services.Load(); svc != nil {
			ctx = svcctx.WithServices(ctx, svc)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the server is fully initialized.
// Returns 503 Service Unavailable until the session is loaded.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.services.Load() == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}
