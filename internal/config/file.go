package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig mirrors EnvConfig for YAML config files. Zero values mean
// "not set" and keep the default.
type FileConfig struct {
	Collection  string  `yaml:"collection"`
	Dimension   int     `yaml:"dimension"`
	Alpha       float64 `yaml:"alpha"`
	SearchLimit int     `yaml:"search_limit"`
	DBURL       string  `yaml:"db_url"`
	DataDir     string  `yaml:"data_dir"`
	LogLevel    string  `yaml:"log_level"`
	LogFormat   string  `yaml:"log_format"`
	Host        string  `yaml:"host"`
	Port        int     `yaml:"port"`
	Embedding   struct {
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"embedding"`
}

// LoadFile reads a YAML config file and applies it on top of base.
// A missing file returns base unchanged.
func LoadFile(path string, base AppConfig) (AppConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return base, nil
	}
	if err != nil {
		return AppConfig{}, fmt.Errorf("read config file: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return AppConfig{}, fmt.Errorf("parse config file: %w", err)
	}

	opts := []AppConfigOption{
		WithCollection(fc.Collection),
		WithDimension(fc.Dimension),
		WithSearchLimit(fc.SearchLimit),
	}
	if fc.Alpha > 0 {
		opts = append(opts, WithAlpha(fc.Alpha))
	}
	if fc.DBURL != "" {
		opts = append(opts, WithDBURL(fc.DBURL))
	}
	if fc.DataDir != "" {
		opts = append(opts, WithDataDir(fc.DataDir))
	}
	if fc.LogLevel != "" {
		opts = append(opts, WithLogLevel(fc.LogLevel))
	}
	if fc.LogFormat != "" {
		opts = append(opts, WithLogFormat(LogFormat(fc.LogFormat)))
	}
	if fc.Host != "" {
		opts = append(opts, WithHost(fc.Host))
	}
	if fc.Port > 0 {
		opts = append(opts, WithPort(fc.Port))
	}
	if fc.Embedding.APIKey != "" || fc.Embedding.BaseURL != "" {
		model := fc.Embedding.Model
		if model == "" {
			model = DefaultEmbeddingModel
		}
		opts = append(opts, WithEmbeddingEndpoint(NewEndpointWithOptions(
			WithBaseURL(fc.Embedding.BaseURL),
			WithModel(model),
			WithAPIKey(fc.Embedding.APIKey),
		)))
	}

	return base.Apply(opts...), nil
}
