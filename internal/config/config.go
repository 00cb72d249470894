package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultFileName  = "sdnscreen.yaml"
	DefaultSourceURL = "https://sanctionslistservice.ofac.treas.gov/api/publicationpreview/exports/sdn_advanced.xml"
	DefaultThreshold = 2
)

type ProjectConfig struct {
	Project      string        `yaml:"project"`
	Version      int           `yaml:"version"`
	Source       SourceConfig  `yaml:"source"`
	Output       OutputConfig  `yaml:"output"`
	Store        StoreConfig   `yaml:"store"`
	Neo4j        Neo4jConfig   `yaml:"neo4j"`
	Search       SearchConfig  `yaml:"search"`
	Blob         BlobConfig    `yaml:"blob"`
	Logging      LoggingConfig `yaml:"logging"`
	Metrics      MetricsConfig `yaml:"metrics"`
	CountryCodes string        `yaml:"country_codes"`
}

type SourceConfig struct {
	URL  string `yaml:"url"`
	Path string `yaml:"path"`
}

type OutputConfig struct {
	Path string `yaml:"path"`
}

// StoreConfig selects where the extracted corpus lives. Driver is one of
// file, sqlite, postgres or neo4j; neo4j reads its settings from Neo4j.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type Neo4jConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type SearchConfig struct {
	Threshold *int `yaml:"threshold"`
	Limit     int  `yaml:"limit"`
}

type BlobConfig struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
	Key       string `yaml:"key"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	Textfile   string `yaml:"textfile"`
}

var storeDrivers = map[string]struct{}{
	"file":     {},
	"sqlite":   {},
	"postgres": {},
	"neo4j":    {},
}

func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no project file exists.
func Default() *ProjectConfig {
	cfg := &ProjectConfig{Project: "sdnscreen", Version: 1}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *ProjectConfig) {
	if cfg.Source.URL == "" {
		cfg.Source.URL = DefaultSourceURL
	}
	if cfg.Source.Path == "" {
		cfg.Source.Path = "sdn_advanced.xml"
	}
	if cfg.Output.Path == "" {
		cfg.Output.Path = "sdn_entities.jsonl"
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "file"
	}
	if cfg.Store.Driver == "file" && cfg.Store.DSN == "" {
		cfg.Store.DSN = cfg.Output.Path
	}
	if cfg.Search.Threshold == nil {
		threshold := DefaultThreshold
		cfg.Search.Threshold = &threshold
	}
	if cfg.Blob.Key == "" {
		cfg.Blob.Key = "sdn_advanced.xml"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	if _, ok := storeDrivers[driver]; !ok {
		return fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	cfg.Store.Driver = driver
	switch driver {
	case "neo4j":
		if strings.TrimSpace(cfg.Neo4j.URI) == "" {
			return fmt.Errorf("neo4j uri is required")
		}
	default:
		if strings.TrimSpace(cfg.Store.DSN) == "" {
			return fmt.Errorf("store dsn is required for driver %s", driver)
		}
	}

	if *cfg.Search.Threshold < 0 {
		return fmt.Errorf("search threshold must not be negative: %d", *cfg.Search.Threshold)
	}
	if cfg.Search.Limit < 0 {
		return fmt.Errorf("search limit must not be negative: %d", cfg.Search.Limit)
	}

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level: %s", cfg.Logging.Level)
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format: %s", cfg.Logging.Format)
	}

	if cfg.Blob.Endpoint != "" && strings.TrimSpace(cfg.Blob.Bucket) == "" {
		return fmt.Errorf("blob bucket is required when an endpoint is set")
	}

	return nil
}

// Threshold returns the configured search threshold.
func (c *ProjectConfig) Threshold() int {
	if c.Search.Threshold == nil {
		return DefaultThreshold
	}
	return *c.Search.Threshold
}
