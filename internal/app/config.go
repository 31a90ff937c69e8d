package app

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Output formats understood by Render.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// CatalogPaths are catalog files or directories. Empty selects the
	// embedded default catalog.
	CatalogPaths []string

	LogFormat string
	LogLevel  string

	// Target names the label column of loaded datasets. Empty means the
	// dataset has no target.
	Target       string
	Metafeatures []string
	ColumnTypes  map[string]string
	Timeout      time.Duration
	Seed         *int64
	Output       string

	// ListenAddr is the address of the HTTP server started by Serve.
	ListenAddr string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Output == "" {
		cfg.Output = OutputTable
	}
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	var errs []error
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		errs = append(errs, errors.New("invalid log-format: must be 'text' or 'json'"))
	}
	if _, ok := parseLevel(cfg.LogLevel); !ok {
		errs = append(errs, errors.New("invalid log-level: must be 'debug', 'info', 'warn', or 'error'"))
	}
	if cfg.Output != OutputTable && cfg.Output != OutputJSON {
		errs = append(errs, fmt.Errorf("invalid output: must be '%s' or '%s'", OutputTable, OutputJSON))
	}
	if cfg.Timeout < 0 {
		errs = append(errs, errors.New("invalid timeout: must not be negative"))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &cfg, nil
}
