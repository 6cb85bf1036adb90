package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/datasage-io/datasage"
	"github.com/datasage-io/datasage/infrastructure/api"
	"github.com/datasage-io/datasage/internal/config"
	"github.com/datasage-io/datasage/internal/log"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var (
		flags commonFlags
		host  string
		port  int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. YAML config file (--config)
  3. .env file (--env-file, or .env in the current directory)
  4. Environment variables
  5. Command line flags

Environment variables:
  DATASAGE_HOST                Server host to bind to (default: 0.0.0.0)
  DATASAGE_PORT                Server port to listen on (default: 8420)
  DATASAGE_DATA_DIR            Data directory (default: ~/.datasage)
  DATASAGE_DB_URL              Database URL (default: sqlite:///{data_dir}/datasage.db)
  DATASAGE_COLLECTION          Collection table prefix (default: datasage)
  DATASAGE_DIMENSION           Embedding dimension (default: 384)
  DATASAGE_ALPHA               Lexical fusion weight in [0,1] (default: 0.25)
  DATASAGE_SEARCH_LIMIT        Default search result limit (default: 5)
  DATASAGE_LOG_LEVEL           Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  DATASAGE_LOG_FORMAT          Log format: pretty, json (default: pretty)
  DATASAGE_EMBEDDING_BASE_URL  Embedding API base URL
  DATASAGE_EMBEDDING_MODEL     Embedding model (default: text-embedding-3-small)
  DATASAGE_EMBEDDING_API_KEY   Embedding API key

Without embedding endpoint configuration the built-in local model is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(flags, host, port)
		},
	}

	cmd.Flags().StringVar(&flags.envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&flags.configFile, "config", "", "Path to YAML config file")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on")

	return cmd
}

func runServe(flags commonFlags, host string, port int) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	if host != "" {
		cfg = cfg.Apply(config.WithHost(host))
	}
	if port > 0 {
		cfg = cfg.Apply(config.WithPort(port))
	}

	logger := log.NewLogger(cfg)
	logger.SetDefault()
	logger.Slog().LogAttrs(context.Background(), slog.LevelInfo, "configuration loaded", cfg.LogAttrs()...)

	client, err := datasage.New(
		datasage.WithAppConfig(cfg),
		datasage.WithLogger(logger.Slog()),
	)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	defer func() { _ = client.Close() }()

	server := api.NewServer(cfg.Addr(), client)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
