// Package dash provides the web dashboard server.
package dash

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/apidash/internal/client"
	"github.com/leapstack-labs/apidash/internal/session"
)

const sessionCookie = "apidash_session"

// Config holds configuration for the dashboard server.
type Config struct {
	Client        *client.Client
	Port          int
	Watch         bool
	ConfigFile    string
	SessionSecret string
	Logger        *slog.Logger
	// Reload rebuilds the API client from the current config file. Used by
	// the watcher when the file changes.
	Reload func() (*client.Client, error)
}

// Server is the web dashboard server. Each browser gets its own session
// store keyed by a cookie, so concurrent visitors never see each other's
// last fetch.
type Server struct {
	port         int
	watch        bool
	configFile   string
	reload       func() (*client.Client, error)
	logger       *slog.Logger
	sessionStore *sessions.CookieStore

	mu       sync.RWMutex
	client   *client.Client
	sessions map[string]*session.Store
}

// NewServer creates a new dashboard server instance.
func NewServer(cfg Config) *Server {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400) // one day
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Server{
		port:         cfg.Port,
		watch:        cfg.Watch,
		configFile:   cfg.ConfigFile,
		reload:       cfg.Reload,
		logger:       logger,
		sessionStore: sessionStore,
		client:       cfg.Client,
		sessions:     make(map[string]*session.Store),
	}
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting dashboard server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch && s.configFile != "" && s.reload != nil {
		eg.Go(func() error {
			return s.watchConfig(egctx)
		})
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

		s.logger.Debug("shutting down dashboard server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Routes builds the HTTP handler tree.
func (s *Server) Routes() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/resources", s.handleResources)
		r.Get("/session", s.handleSession)
		r.Route("/{resource}", func(r chi.Router) {
			r.Get("/", s.handleFetch)
			r.Get("/insights", s.handleInsights)
			r.Get("/export", s.handleExport)
		})
	})

	return r
}

// apiClient returns the current API client. The watcher may swap it when the
// config file changes.
func (s *Server) apiClient() *client.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

// browserSession resolves the per-browser session store, creating the cookie
// and store on first contact.
func (s *Server) browserSession(w http.ResponseWriter, r *http.Request) *session.Store {
	cookie, _ := s.sessionStore.Get(r, sessionCookie)

	id, _ := cookie.Values["id"].(string)
	if id == "" {
		id = uuid.NewString()
		cookie.Values["id"] = id
		if err := cookie.Save(r, w); err != nil {
			s.logger.Warn("failed to save session cookie", "error", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	store, ok := s.sessions[id]
	if !ok {
		store = session.NewStore()
		s.sessions[id] = store
	}
	return store
}

// watchConfig watches the config file and swaps the API client when it
// changes.
func (s *Server) watchConfig(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(s.configFile); err != nil {
		s.logger.Error("failed to watch config file", "file", s.configFile, "error", err)
		// Continue without watching rather than killing the server.
		<-ctx.Done()
		return nil
	}

	var debounceTimer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				c, err := s.reload()
				if err != nil {
					s.logger.Error("config reload failed", "error", err)
					return
				}
				s.mu.Lock()
				s.client = c
				s.mu.Unlock()
				s.logger.Info("config reloaded", "base_url", c.BaseURL())
			})

		case err := <-watcher.Errors:
			s.logger.Error("watcher error", "error", err)
		}
	}
}
