package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/panyam/vulnviz/console"
	"github.com/panyam/vulnviz/metrics"
	"github.com/panyam/vulnviz/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the vulnerability dashboard",
	Long: `Start the web dashboard. Each browser session gets its own canvas
holding the last prediction and its charts; canvases idle for longer than
VULNVIZ_SESSION_IDLE are closed.

Example:
  vulnviz serve --addr :9090
  VULNVIZ_API_BASE_URL=http://models:8000 vulnviz serve`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.Addr = serveAddr
		}

		m := metrics.New()
		opts := append(canvasOptions(), console.WithPredictor(newClient()))
		registry := console.NewRegistry(m, opts...)
		defer registry.Close()
		registry.StartReaper(&console.ReaperConfig{
			IdleTimeout: cfg.SessionIdle,
			OnReap:      func(id string) { logger.Debug("closed idle canvas", "canvas", id) },
		})

		app, err := web.NewApp(registry, m, web.Options{
			SessionLifetime: cfg.SessionIdle,
			CookieSecure:    !cfg.Dev(),
			Logger:          logger,
		})
		if err != nil {
			return err
		}
		server := &http.Server{
			Addr:              cfg.Addr,
			Handler:           app.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		serveErr := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
			close(serveErr)
		}()

		out := cmd.OutOrStdout()
		color.New(color.FgGreen, color.Bold).Fprintf(out, "vulnviz dashboard on %s\n", cfg.Addr)
		color.New(color.FgCyan).Fprintf(out, "classification service: %s\n", cfg.APIBaseURL)
		logger.Info("server started", "addr", cfg.Addr, "api", cfg.APIBaseURL, "env", cfg.Env)

		select {
		case err := <-serveErr:
			return err
		case <-sigChan:
		}

		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", "err", err)
			return err
		}
		logger.Info("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address (default: VULNVIZ_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
