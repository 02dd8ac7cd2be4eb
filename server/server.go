package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/feedpulse/feedpulse/pkg/domain"
	"github.com/feedpulse/feedpulse/pkg/feed"
	"github.com/feedpulse/feedpulse/pkg/websub"
)

//go:generate moq -out mocks/feed_store.go -pkg mocks -skip-ensure -fmt goimports . FeedStore
//go:generate moq -out mocks/entry_store.go -pkg mocks -skip-ensure -fmt goimports . EntryStore
//go:generate moq -out mocks/scheduler.go -pkg mocks -skip-ensure -fmt goimports . Scheduler
//go:generate moq -out mocks/sub_manager.go -pkg mocks -skip-ensure -fmt goimports . SubManager
//go:generate moq -out mocks/prober.go -pkg mocks -skip-ensure -fmt goimports . Prober

// Server represents HTTP server instance
type Server struct {
	config    Config
	feeds     FeedStore
	entries   EntryStore
	scheduler Scheduler
	subs      SubManager
	prober    Prober
	version   string
	debug     bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// Config holds HTTP server settings
type Config struct {
	Listen       string
	Timeout      time.Duration
	MaxBodySize  int64 // push delivery body cap, matches the fetch cap
	PageSize     int   // default entries page size
	WebSubEnable bool
}

// FeedStore interface for feed persistence operations
type FeedStore interface {
	CreateFeed(ctx context.Context, feed *domain.Feed) error
	GetFeed(ctx context.Context, id int64) (*domain.Feed, error)
	ListFeeds(ctx context.Context, includeRetired bool) ([]domain.Feed, error)
	RetireFeed(ctx context.Context, id int64) error
}

// EntryStore interface for entry retrieval
type EntryStore interface {
	GetEntries(ctx context.Context, feedID int64, limit int) ([]domain.Entry, error)
}

// Scheduler interface for on-demand operations
type Scheduler interface {
	FetchFeedNow(ctx context.Context, feedID int64) error
}

// SubManager interface for push subscription callbacks
type SubManager interface {
	HandleVerify(ctx context.Context, feedID int64, query url.Values) websub.VerifyResult
	HandleDelivery(feedID int64, body []byte) error
	Unsubscribe(ctx context.Context, f *domain.Feed) error
}

// Prober validates a candidate feed URL at subscription time
type Prober interface {
	Probe(ctx context.Context, feedURL string) (*feed.ProbeResult, error)
}

// New initializes a new server instance
func New(cfg Config, feeds FeedStore, entries EntryStore, sched Scheduler, subs SubManager, prober Prober, version string, debug bool) *Server {
	if cfg.MaxBodySize == 0 {
		cfg.MaxBodySize = 10 * 1024 * 1024
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = 50
	}
	s := &Server{
		config:    cfg,
		feeds:     feeds,
		entries:   entries,
		scheduler: sched,
		subs:      subs,
		prober:    prober,
		version:   version,
		debug:     debug,
		router:    routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	lgr.Printf("[INFO] starting server on %s", s.config.Listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:         s.config.Listen,
		Handler:      s.router,
		ReadTimeout:  s.config.Timeout,
		WriteTimeout: s.config.Timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		lgr.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			lgr.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// Router exposes the configured handler, used by tests
func (s *Server) Router() http.Handler {
	return s.router
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("feedpulse", "feedpulse", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(s.config.MaxBodySize))
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("POST /feeds", s.createFeedHandler)
		r.HandleFunc("GET /feeds", s.listFeedsHandler)
		r.HandleFunc("GET /feeds/{id}", s.getFeedHandler)
		r.HandleFunc("DELETE /feeds/{id}", s.retireFeedHandler)
		r.HandleFunc("GET /feeds/{id}/entries", s.feedEntriesHandler)
		r.HandleFunc("POST /feeds/{id}/refresh", s.refreshFeedHandler)
	})

	if s.config.WebSubEnable {
		s.router.HandleFunc("GET /websub/{id}", s.websubVerifyHandler)
		s.router.HandleFunc("POST /websub/{id}", s.websubDeliveryHandler)
	}
}

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().UTC(),
	}
	RenderJSON(w, r, http.StatusOK, status)
}

// RenderJSON sends JSON response
func RenderJSON(w http.ResponseWriter, _ *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			lgr.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// RenderError sends error response as JSON
func RenderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	RenderJSON(w, r, code, map[string]string{"error": errMsg})
}
