package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/stackover-dev/stackover/internal/config"
	"github.com/stackover-dev/stackover/internal/logger"
	"github.com/stackover-dev/stackover/internal/router"
	"github.com/stackover-dev/stackover/internal/setup"
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	deps, err := setup.SetupDependencies(cfg)
	if err != nil {
		logger.Log.Error("failed to setup dependencies", "error", err)
		os.Exit(1)
	}
	defer deps.Storage.Cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps.Ledger.StartBackgroundUpdate(ctx, cfg.Public.RevocationRefreshInterval)

	r := router.New(deps.Handler, deps.Auth, cfg)

	httpPort := os.Getenv("PORT")
	if httpPort == "" {
		httpPort = "8080"
	}

	server := &http.Server{Addr: ":" + httpPort, Handler: r}

	go func() {
		<-ctx.Done()
		logger.Log.Info("shutting down")
		server.Shutdown(context.Background())
	}()

	logger.Log.Info("server started", "port", httpPort)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
