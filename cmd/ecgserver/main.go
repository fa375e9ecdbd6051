// Command ecgserver exposes the ecgcore pipeline over HTTP, with
// single-recording and batch endpoints backed by a worker pool.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/kacperjurak/ecgcore/internal/config"
	"github.com/kacperjurak/ecgcore/pkg/server"
)

func main() {
	cfg, serverConfig := parseFlags()

	srv := server.New(server.Options{
		Config:       cfg,
		ServerConfig: serverConfig,
	})

	setupGracefulShutdown(srv)

	if err := srv.Start(); err != nil {
		log.Fatal("failed to start server:", err)
	}
}

func parseFlags() (*config.Config, *config.ServerConfig) {
	cfg := config.DefaultConfig()
	serverConfig := config.DefaultServerConfig()

	flag.Float64Var(&cfg.Fs, "fs", cfg.Fs, "Default sample rate in Hz for recordings without one")
	flag.BoolVar(&cfg.Quiet, "quiet", cfg.Quiet, "Suppress verbose output")
	flag.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Enable per-stage logging in Analyze")
	flag.StringVar(&serverConfig.Port, "port", serverConfig.Port, "HTTP server port")
	flag.IntVar(&serverConfig.WorkerCount, "workers", serverConfig.WorkerCount, "Number of worker threads")
	flag.StringVar(&serverConfig.WebhookURL, "webhook", serverConfig.WebhookURL, "Webhook URL for async result notification")
	flag.BoolVar(&serverConfig.EnableProfiling, "profile", serverConfig.EnableProfiling, "Enable pprof profiling")
	flag.StringVar(&serverConfig.ProfilingPort, "profile-port", serverConfig.ProfilingPort, "pprof listener port")

	flag.Parse()

	cfg.EnableProfiling = serverConfig.EnableProfiling

	return cfg, serverConfig
}

func setupGracefulShutdown(srv *server.Server) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("received shutdown signal...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("error during shutdown: %v", err)
		}
		os.Exit(0)
	}()
}
