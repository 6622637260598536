package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/promptdice/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the promptdice server",
	Long: `Start the promptdice HTTP server.

Storage is opened on start (see storage.driver in the config) and closed
on shutdown via Ctrl+C or SIGTERM. Log level and the copied window reload
when the config file changes.

The server provides:
  - /              - Browser UI
  - /api/...       - JSON API (see /swagger)
  - /api/generate  - Stateless prompt from the built-in values
  - /health        - Basic server health check
  - /ready         - Readiness check (storage open, session loaded)

Examples:
  promptdice serve                    # Start on default port 8080
  promptdice serve --port 3000        # Start on custom port
  promptdice serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		h, mgr, err := loadConfig()
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}
		cfg := mgr.Get()

		// Set up logger
		level := new(slog.LevelVar)
		logger := cfg.Log.NewLogger(os.Stdout, level)
		slog.SetDefault(logger)
		if used := mgr.ConfigFileUsed(); used != "" {
			logger.Info("loaded config", "file", used)
		}

		srv, err := server.New(server.Config{
			Host:          serveHost,
			Port:          servePort,
			ConfigManager: mgr,
			Home:          h,
			Logger:        logger,
			LogLevel:      level,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default: server.host from config)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (default: server.port from config)")

	rootCmd.AddCommand(serveCmd)
}
