// Package server implements the local control panel: start a run, watch its status and read the ideas.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/ideascope/pkg/pipeline"
)

//go:generate moq -out mocks/config.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/runner.go -pkg mocks -skip-ensure -fmt goimports . Runner

// Server represents HTTP server instance
type Server struct {
	config  ConfigProvider
	runner  Runner
	version string
	debug   bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle

	runLock   sync.Mutex
	running   bool
	closing   bool               // set on shutdown, no new runs accepted
	baseCtx   context.Context    // parent of background runs, canceled on shutdown
	cancelRun context.CancelFunc // cancels the active run
	last      *pipeline.Result
	lastErr   error
	finished  time.Time
	runWg     sync.WaitGroup
}

var (
	errRunInProgress = errors.New("run already in progress")
	errNoActiveRun   = errors.New("no active run")
	errShuttingDown  = errors.New("server is shutting down")
)

// Runner executes a single pipeline run
type Runner interface {
	Run(ctx context.Context) (pipeline.Result, error)
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
}

// New initializes a new server instance
func New(cfg ConfigProvider, runner Runner, version string, debug bool) *Server {
	s := &Server{
		config:  cfg,
		runner:  runner,
		version: version,
		debug:   debug,
		router:  routegroup.New(http.NewServeMux()),
		baseCtx: context.Background(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown.
// Canceling ctx also cancels a run in progress and waits for it to finish.
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	log.Printf("[INFO] starting server on %s", listen)

	s.runLock.Lock()
	s.baseCtx = ctx
	s.runLock.Unlock()

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           s.router,
		ReadHeaderTimeout: timeout,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down server")
		s.runLock.Lock()
		s.closing = true
		s.runLock.Unlock()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	err := s.httpServer.ListenAndServe()
	s.Wait()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// Wait blocks until a background run, if any, is finished
func (s *Server) Wait() {
	s.runWg.Wait()
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("ideascope", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(64 * 1024))
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("POST /run", s.runHandler)
		r.HandleFunc("POST /stop", s.stopHandler)
		r.HandleFunc("GET /ideas", s.ideasHandler)
	})

	s.router.HandleFunc("GET /rss", s.rssHandler)
}

// startRun launches a background run unless one is already running or the server is closing
func (s *Server) startRun() error {
	s.runLock.Lock()
	defer s.runLock.Unlock()
	if s.closing {
		return errShuttingDown
	}
	if s.running {
		return errRunInProgress
	}
	s.running = true
	ctx, cancel := context.WithCancel(s.baseCtx)
	s.cancelRun = cancel

	s.runWg.Add(1)
	go func() {
		defer s.runWg.Done()
		defer cancel()
		log.Printf("[INFO] run started from control panel")
		res, err := s.runner.Run(ctx)
		if err != nil {
			log.Printf("[WARN] run failed: %v", err)
		}

		s.runLock.Lock()
		s.running = false
		s.cancelRun = nil
		s.last = &res
		s.lastErr = err
		s.finished = time.Now()
		s.runLock.Unlock()
	}()
	return nil
}

// stopRun cancels the active run, the run still exports what it collected
func (s *Server) stopRun() error {
	s.runLock.Lock()
	defer s.runLock.Unlock()
	if !s.running || s.cancelRun == nil {
		return errNoActiveRun
	}
	log.Printf("[INFO] run stop requested from control panel")
	s.cancelRun()
	return nil
}
