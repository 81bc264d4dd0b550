// Package config loads service configuration and resolves dataset
// identifiers to data sources.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Defaults.
const (
	DefaultSafetyLimit = 50
	DefaultHistorySize = 20
	DefaultHistoryDB   = "nlsql-history.db"
	DefaultListen      = ":8080"
	DefaultModel       = "claude-sonnet-4-5"
	DefaultMaxTokens   = 1024
	DefaultPlanTTL     = "10m"
)

// ErrUnknownDataset is returned for a dataset identifier that is not configured.
var ErrUnknownDataset = errors.New("unknown dataset")

// DatasetConfig locates one dataset. Path is used by sqlite3, DSN by postgres.
type DatasetConfig struct {
	Driver string `yaml:"driver" json:"driver"`
	Path   string `yaml:"path,omitempty" json:"path,omitempty"`
	DSN    string `yaml:"dsn,omitempty" json:"dsn,omitempty"`
}

// PlannerConfig controls the advisory planner.
type PlannerConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Model     string `yaml:"model,omitempty" json:"model,omitempty"`
	MaxTokens int64  `yaml:"max_tokens,omitempty" json:"max_tokens,omitempty"`
	CacheTTL  string `yaml:"cache_ttl,omitempty" json:"cache_ttl,omitempty"`
}

// TTL parses CacheTTL.
func (p PlannerConfig) TTL() (time.Duration, error) {
	return time.ParseDuration(p.CacheTTL)
}

// Config is the service configuration.
type Config struct {
	Datasets    map[string]DatasetConfig `yaml:"datasets" json:"datasets"`
	SafetyLimit int                      `yaml:"safety_limit,omitempty" json:"safety_limit,omitempty"`
	HistorySize int                      `yaml:"history_size,omitempty" json:"history_size,omitempty"`
	HistoryDB   string                   `yaml:"history_db,omitempty" json:"history_db,omitempty"`
	Listen      string                   `yaml:"listen,omitempty" json:"listen,omitempty"`
	Planner     PlannerConfig            `yaml:"planner,omitempty" json:"planner,omitempty"`
}

// DataSource is a resolved dataset: a database/sql driver name and DSN.
type DataSource struct {
	Name   string
	Driver string
	DSN    string
}

// Default returns the built-in configuration with the chinook and
// university sample datasets.
func Default() *Config {
	cfg := &Config{
		Datasets: map[string]DatasetConfig{
			"chinook":    {Driver: DriverSQLite, Path: "db/chinook.db"},
			"university": {Driver: DriverSQLite, Path: "db/university.db"},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads a configuration file. ".cue" files are evaluated with CUE;
// anything else is parsed as YAML with unknown fields rejected. An empty
// path returns Default.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if filepath.Ext(path) == ".cue" {
		if err := decodeCUE(path, data, &cfg); err != nil {
			return nil, err
		}
	} else {
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if len(cfg.Datasets) == 0 {
		cfg.Datasets = Default().Datasets
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decodeCUE(path string, data []byte, cfg *Config) error {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return fmt.Errorf("failed to compile CUE: %w", err)
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid CUE config: %w", err)
	}
	if err := value.Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode CUE config: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.SafetyLimit == 0 {
		c.SafetyLimit = DefaultSafetyLimit
	}
	if c.HistorySize == 0 {
		c.HistorySize = DefaultHistorySize
	}
	if c.HistoryDB == "" {
		c.HistoryDB = DefaultHistoryDB
	}
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.Planner.Model == "" {
		c.Planner.Model = DefaultModel
	}
	if c.Planner.MaxTokens == 0 {
		c.Planner.MaxTokens = DefaultMaxTokens
	}
	if c.Planner.CacheTTL == "" {
		c.Planner.CacheTTL = DefaultPlanTTL
	}
	for name, ds := range c.Datasets {
		if ds.Driver == "" {
			ds.Driver = DriverSQLite
			c.Datasets[name] = ds
		}
	}
}

// Validate checks dataset drivers and numeric limits.
func (c *Config) Validate() error {
	for _, name := range c.DatasetNames() {
		ds := c.Datasets[name]
		switch ds.Driver {
		case DriverSQLite:
			if ds.Path == "" {
				return fmt.Errorf("dataset %q: path is required for %s", name, ds.Driver)
			}
		case DriverPostgres:
			if ds.DSN == "" {
				return fmt.Errorf("dataset %q: dsn is required for %s", name, ds.Driver)
			}
		default:
			return fmt.Errorf("dataset %q: unsupported driver %q", name, ds.Driver)
		}
	}
	if c.SafetyLimit < 1 {
		return fmt.Errorf("safety_limit must be positive, got %d", c.SafetyLimit)
	}
	if c.HistorySize < 1 {
		return fmt.Errorf("history_size must be positive, got %d", c.HistorySize)
	}
	if _, err := c.Planner.TTL(); err != nil {
		return fmt.Errorf("planner.cache_ttl: %w", err)
	}
	return nil
}

// DatasetNames returns the configured dataset identifiers, sorted.
func (c *Config) DatasetNames() []string {
	names := make([]string, 0, len(c.Datasets))
	for name := range c.Datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DataSource resolves a dataset identifier. sqlite datasets are opened
// read-only.
func (c *Config) DataSource(id string) (DataSource, error) {
	ds, ok := c.Datasets[id]
	if !ok {
		return DataSource{}, fmt.Errorf("%w: %q", ErrUnknownDataset, id)
	}
	switch ds.Driver {
	case DriverPostgres:
		return DataSource{Name: id, Driver: DriverPostgres, DSN: ds.DSN}, nil
	default:
		return DataSource{Name: id, Driver: DriverSQLite, DSN: SQLiteReadOnlyDSN(ds.Path)}, nil
	}
}

// SQLiteReadOnlyDSN returns a DSN that opens path read-only and fails if the
// file does not exist.
func SQLiteReadOnlyDSN(path string) string {
	return "file:" + path + "?mode=ro"
}
