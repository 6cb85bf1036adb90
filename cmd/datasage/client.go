package main

import (
	"fmt"

	"github.com/datasage-io/datasage"
	"github.com/datasage-io/datasage/internal/config"
	"github.com/datasage-io/datasage/internal/log"
)

// commonFlags are the configuration flags shared by every command.
type commonFlags struct {
	envFile    string
	configFile string
}

// loadConfig assembles the effective configuration: defaults, then the
// optional YAML config file, then .env, then environment variables.
func loadConfig(flags commonFlags) (config.AppConfig, error) {
	if err := config.LoadDotEnv(flags.envFile); err != nil {
		return config.AppConfig{}, fmt.Errorf("load env file: %w", err)
	}

	env, err := config.LoadEnv()
	if err != nil {
		return config.AppConfig{}, err
	}
	cfg := env.ToAppConfig()

	if flags.configFile != "" {
		cfg, err = config.LoadFile(flags.configFile, cfg)
		if err != nil {
			return config.AppConfig{}, err
		}
	}
	return cfg, nil
}

// newClient builds a datasage client from the effective configuration.
func newClient(flags commonFlags) (*datasage.Client, *log.Logger, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, nil, err
	}

	logger := log.NewLogger(cfg)
	client, err := datasage.New(
		datasage.WithAppConfig(cfg),
		datasage.WithLogger(logger.Slog()),
	)
	if err != nil {
		return nil, nil, err
	}
	return client, logger, nil
}
