package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"taskboard/internal/config"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the task API and browser client",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	baseLogger := newLogger(appCtx, cfg)
	defer baseLogger.Close()
	baseLogger.Info("Application starting...", "env", cfg.AppEnv)

	a, err := newApp(cfg, baseLogger)
	if err != nil {
		baseLogger.Error("Failed to initialize", "error", err)
		return err
	}
	defer a.Close()

	server := &http.Server{Addr: cfg.Server.Addr, Handler: a.router()}

	serveErr := make(chan error, 1)
	go func() {
		baseLogger.Info("Server is listening", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serveErr:
		if ok {
			baseLogger.Error("Failed to start server", "error", err)
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-quit:
	}
	baseLogger.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("Failed to shutdown server", "error", err)
		return err
	}
	baseLogger.Info("Server stopped")
	return nil
}
