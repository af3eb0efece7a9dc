package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/regwatch/regwatch/pkg/domain"
	"github.com/regwatch/regwatch/pkg/repository"
	"github.com/regwatch/regwatch/pkg/search"
)

// Server represents HTTP server instance
type Server struct {
	config     ConfigProvider
	db         Database
	interests  InterestStore
	scheduler  Scheduler
	searcher   Searcher
	brief      BriefGenerator
	classifier Classifier
	expander   *search.Expander
	version    string
	debug      bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// Database interface for record operations
type Database interface {
	ListRecords(ctx context.Context, req repository.ListRequest) ([]*domain.Record, error)
	GetRecord(ctx context.Context, id int64) (*domain.Record, error)
	GetByURL(ctx context.Context, url string) (*domain.Record, error)
	CreateRecord(ctx context.Context, rec *domain.Record) error
	ApplyUpdate(ctx context.Context, id int64, upd domain.RecordUpdate) (*domain.Record, error)
	SetHidden(ctx context.Context, id int64, hidden bool) error
	ToggleSaved(ctx context.Context, id int64) (bool, error)
	Stats(ctx context.Context) (*repository.Stats, error)
}

// InterestStore accumulates user activity signals
type InterestStore interface {
	UpsertInterest(ctx context.Context, keyword string, weight float64, origin domain.InterestOrigin) error
}

// Scheduler interface for on-demand operations
type Scheduler interface {
	TriggerScan()
}

// Searcher runs the on-demand search chain
type Searcher interface {
	Search(ctx context.Context, query string) search.Result
}

// BriefGenerator writes an executive brief over records
type BriefGenerator interface {
	Generate(ctx context.Context, records []*domain.Record) string
}

// Classifier classifies manually added entries
type Classifier interface {
	Classify(c domain.Candidate) domain.ClassifiedItem
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
}

// New initializes a new server instance
func New(cfg ConfigProvider, db Database, interests InterestStore, scheduler Scheduler,
	searcher Searcher, brief BriefGenerator, classifier Classifier, expander *search.Expander,
	version string, debug bool) *Server {
	s := &Server{
		config:     cfg,
		db:         db,
		interests:  interests,
		scheduler:  scheduler,
		searcher:   searcher,
		brief:      brief,
		classifier: classifier,
		expander:   expander,
		version:    version,
		debug:      debug,
		router:     routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	lgr.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:         listen,
		Handler:      s.router,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
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

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("regwatch", "regwatch", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)

		r.HandleFunc("GET /records", s.listRecordsHandler)
		r.HandleFunc("POST /records", s.addRecordHandler)
		r.HandleFunc("PATCH /records/{id}", s.updateRecordHandler)
		r.HandleFunc("DELETE /records/{id}", s.hideRecordHandler)
		r.HandleFunc("POST /records/{id}/toggle-save", s.toggleSaveHandler)

		r.HandleFunc("POST /search", s.searchHandler)
		r.HandleFunc("POST /brief", s.briefHandler)
		r.HandleFunc("POST /scan", s.scanHandler)
		r.HandleFunc("GET /stats", s.statsHandler)
		r.HandleFunc("GET /export", s.exportHandler)
	})
}
