package main

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/syllacal/syllacal/internal/config"
	"github.com/syllacal/syllacal/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the syllacal server",
	Long: `Start the syllacal HTTP server.

The server provides:
  - GET  /health         - Server health check
  - POST /api/parse      - Batch syllabus PDF extraction
  - POST /api/parse/llm  - LLM-backed extraction to a calendar file
  - POST /api/ics        - Calendar generation from course records
  - POST /api/preview    - Concrete occurrences in a date window

Examples:
  syllacal serve                    # Start on the configured port
  syllacal serve --port 3000        # Start on custom port
  syllacal serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cm.WatchConfig()

		host := serveHost
		port := servePort
		if host == "" {
			host = cm.Get().Server.Host
		}
		if port == "" {
			port = strconv.Itoa(cm.Get().Server.Port)
		}

		srv, err := server.New(server.Config{
			Host:          host,
			Port:          port,
			ConfigManager: cm,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default from config)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (default from config)")

	rootCmd.AddCommand(serveCmd)
}
