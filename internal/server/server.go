// Package server exposes the schema editor over HTTP.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tordrt/mockschema/internal/runner"
)

// Options configures a Server.
type Options struct {
	Addr string
	// Mode is the gin mode: debug, release or test.
	Mode string
	// Runner runs the external generator. Nil disables POST /generate.
	Runner     *runner.Runner
	MinVersion runner.Version
}

// Server serves one workspace.
type Server struct {
	opts       Options
	ws         *Workspace
	runner     *runner.Runner
	minVersion runner.Version
	registry   *prometheus.Registry
	router     *gin.Engine

	// genMu serializes generator runs; they share the schema file.
	genMu sync.Mutex
}

// New builds the router for ws.
func New(opts Options, ws *Workspace) *Server {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	if opts.MinVersion == (runner.Version{}) {
		opts.MinVersion = runner.MinimumVersion
	}

	s := &Server{
		opts:       opts,
		ws:         ws,
		runner:     opts.Runner,
		minVersion: opts.MinVersion,
		registry:   prometheus.NewRegistry(),
	}
	s.router = s.routes(NewMetrics(s.registry))
	return s
}

func (s *Server) routes(metrics *Metrics) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(Cors())
	router.Use(RequestID())
	router.Use(metrics.Middleware())

	router.GET("/health", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := router.Group("/api/v1")
	{
		api.GET("/schema", s.getSchema)
		api.PUT("/schema", s.putSchema)
		api.POST("/generate", s.generate)

		tables := api.Group("/tables")
		tables.POST("", s.createTable)
		tables.PATCH("/:table", s.updateTable)
		tables.DELETE("/:table", s.deleteTable)
		tables.POST("/:table/attributes", s.createAttribute)
		tables.DELETE("/:table/attributes/:attribute", s.deleteAttribute)
		tables.GET("/:table/attributes/:attribute/form", s.attributeForm)
		tables.POST("/:table/attributes/:attribute/events", s.attributeEvent)
	}
	return router
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s, editing %s\n", srv.Addr, s.ws.Path())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server gracefully ...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Println("Server exiting")
	return nil
}
