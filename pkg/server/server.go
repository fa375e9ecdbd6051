// Package server wires the ecgcore analysis pipeline into an HTTP
// service: single-recording and batch endpoints, health/debug
// endpoints, and an optional pprof listener.
package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/kacperjurak/ecgcore/internal/batch"
	"github.com/kacperjurak/ecgcore/internal/config"
	"github.com/kacperjurak/ecgcore/internal/webhook"
	"github.com/kacperjurak/ecgcore/pkg/handlers"
	"github.com/kacperjurak/ecgcore/pkg/models"
	"github.com/kacperjurak/ecgcore/pkg/profiling"
)

// Server represents the HTTP server with all dependencies.
type Server struct {
	config        *config.Config
	serverConfig  *config.ServerConfig
	workerPool    *batch.Pool
	webhookClient *webhook.Client
	httpServer    *http.Server
	profiler      *profiling.Profiler
	middleware    *profiling.Middleware
	memProfiler   *profiling.MemoryProfiler
}

// Options holds configuration for creating a new server.
type Options struct {
	Config       *config.Config
	ServerConfig *config.ServerConfig
}

// New creates a new server instance.
func New(opts Options) *Server {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.ServerConfig == nil {
		opts.ServerConfig = config.DefaultServerConfig()
	}

	webhookClient := webhook.NewClient(opts.ServerConfig.WebhookURL, opts.Config)

	workerPool := batch.New(batch.Options{
		Workers:      opts.ServerConfig.WorkerCount,
		LogWorkStats: opts.ServerConfig.EnableProfiling,
		OnWebhook: func(item models.WebhookItem) {
			if err := webhookClient.Send(item); err != nil {
				log.Printf("webhook delivery failed for %s: %v", item.RequestID, err)
			}
		},
	})

	profiler := profiling.New(opts.ServerConfig)
	profiler.SetPool(workerPool)
	middleware := profiling.NewMiddleware(opts.ServerConfig.EnableProfiling)

	var memProfiler *profiling.MemoryProfiler
	if opts.ServerConfig.EnableProfiling {
		memProfiler = profiling.NewMemoryProfiler(30 * time.Second)
	}

	server := &Server{
		config:        opts.Config,
		serverConfig:  opts.ServerConfig,
		workerPool:    workerPool,
		webhookClient: webhookClient,
		profiler:      profiler,
		middleware:    middleware,
		memProfiler:   memProfiler,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	mux := http.NewServeMux()

	analyzeHandler := handlers.NewAnalyzeHandler(s.config)
	batchHandler := handlers.NewBatchHandler(s.config, s.workerPool)

	mux.Handle("/analyze", s.middleware.ProfiledHandler("analyze-single", analyzeHandler))
	mux.Handle("/analyze/batch", s.middleware.ProfiledHandler("analyze-batch", batchHandler))
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/debug/gc", s.gcHandler)
	mux.HandleFunc("/debug/memory", s.memoryHandler)

	s.httpServer = &http.Server{
		Addr:         ":" + s.serverConfig.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":"%s"}`, time.Now().Format(time.RFC3339))
}

func (s *Server) gcHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	profiling.ForceGC()
	stats := profiling.GetGCStats()

	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{
		"gc_runs": %d,
		"pause_total_ms": %.3f,
		"pause_recent_us": %.3f,
		"cpu_percent": %.2f,
		"last_gc": "%s",
		"timestamp": "%s"
	}`,
		stats.NumGC,
		float64(stats.PauseTotal.Nanoseconds())/1000000.0,
		float64(stats.PauseRecent.Nanoseconds())/1000.0,
		stats.GCCPUPercent,
		stats.LastGC.Format(time.RFC3339),
		time.Now().Format(time.RFC3339))
}

func (s *Server) memoryHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	profiling.LogGCStats()

	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"message":"Memory stats logged to console","timestamp":"%s"}`,
		time.Now().Format(time.RFC3339))
}

// Start starts the HTTP server and, if enabled, the profiling server.
func (s *Server) Start() error {
	if err := s.profiler.Start(); err != nil {
		log.Printf("failed to start profiler: %v", err)
	}
	if s.memProfiler != nil {
		s.memProfiler.Start()
	}

	log.Println("starting HTTP server on port", s.serverConfig.Port)
	log.Printf("  - Single: http://localhost:%s/analyze", s.serverConfig.Port)
	log.Printf("  - Batch:  http://localhost:%s/analyze/batch", s.serverConfig.Port)
	log.Printf("  - Health: http://localhost:%s/health", s.serverConfig.Port)
	log.Printf("  - GC:     http://localhost:%s/debug/gc", s.serverConfig.Port)
	log.Printf("  - Memory: http://localhost:%s/debug/memory", s.serverConfig.Port)

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	log.Println("shutting down server...")

	if err := s.profiler.Stop(); err != nil {
		log.Printf("profiler shutdown error: %v", err)
	}
	if s.memProfiler != nil {
		s.memProfiler.Stop()
	}

	s.workerPool.Shutdown()

	log.Println("server shutdown complete")
	return nil
}
