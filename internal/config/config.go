package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/prometheus/common/model"
	"gopkg.in/yaml.v3"

	"github.com/simmtest/simm-analyse/internal/compute"
	"github.com/simmtest/simm-analyse/internal/record"
	"github.com/simmtest/simm-analyse/internal/report"
)

// ErrInvalid is matched (via errors.Is) by every error Validate returns, so
// callers can tell a bad setting from an unreadable or malformed file.
var ErrInvalid = errors.New("invalid setting")

// Default values applied when fields are absent from the config file.
// They describe the upstream SIMM tester: a 4096-byte test region, a log
// that records at most 31 corrupted locations per run, and blocks separated
// by a line of 32 hyphens.
const (
	DefaultSeparator       = record.DefaultSeparator
	DefaultTestedBits      = compute.DefaultTestedBits
	DefaultTruncationLimit = record.DefaultTruncationLimit
	DefaultUndefinedMarker = report.DefaultUndefinedMarker
	DefaultMetricPrefix    = report.DefaultMetricPrefix
	DefaultFormat          = FormatText
)

// Output formats.
const (
	FormatText       = "text"
	FormatPrometheus = "prometheus"
)

// Config is the top-level configuration of simm-analyse.
type Config struct {
	Analysis AnalysisConfig `yaml:"analysis"`
	Output   OutputConfig   `yaml:"output"`
}

// AnalysisConfig holds the assumptions about the upstream tester.
type AnalysisConfig struct {
	// Separator is the line (without newlines) that divides two blocks.
	Separator string `yaml:"separator"`

	// TestedBits is the number of bits checked by one test run.
	TestedBits uint64 `yaml:"tested_bits"`

	// TruncationLimit is the number of locations after which the tester
	// stops recording. A record with exactly this many locations may have a
	// bit flip count larger than its location list.
	TruncationLimit int `yaml:"truncation_limit"`

	// Strict turns zero-denominator table cells into a fatal error instead
	// of rendering them with UndefinedMarker.
	Strict bool `yaml:"strict"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	// Format is one of: text | prometheus.
	Format string `yaml:"format"`

	// UndefinedMarker is printed in the text report for cells whose
	// denominator is zero.
	UndefinedMarker string `yaml:"undefined_marker"`

	// MetricPrefix is prepended to every metric family name in the
	// prometheus report.
	MetricPrefix string `yaml:"metric_prefix"`
}

// Limits returns the parsing limits derived from the analysis settings.
func (c *Config) Limits() record.Limits {
	return record.Limits{
		Separator:       c.Analysis.Separator,
		TruncationLimit: c.Analysis.TruncationLimit,
	}
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with the defaults above.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config pre-populated with default values.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Separator:       DefaultSeparator,
			TestedBits:      DefaultTestedBits,
			TruncationLimit: DefaultTruncationLimit,
		},
		Output: OutputConfig{
			Format:          DefaultFormat,
			UndefinedMarker: DefaultUndefinedMarker,
			MetricPrefix:    DefaultMetricPrefix,
		},
	}
}

// Validate checks structural constraints. It is exported so the CLI can
// re-check a config after applying flag overrides. The returned error wraps
// ErrInvalid.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Analysis.Separator == "" {
		return fmt.Errorf("analysis.separator is required")
	}
	if strings.ContainsAny(c.Analysis.Separator, "\r\n") {
		return fmt.Errorf("analysis.separator must be a single line")
	}
	if c.Analysis.TestedBits == 0 {
		return fmt.Errorf("analysis.tested_bits must be positive")
	}
	if c.Analysis.TruncationLimit <= 0 {
		return fmt.Errorf("analysis.truncation_limit must be positive")
	}
	switch c.Output.Format {
	case FormatText, FormatPrometheus:
	default:
		return fmt.Errorf("output.format: unknown format %q", c.Output.Format)
	}
	if c.Output.UndefinedMarker == "" {
		return fmt.Errorf("output.undefined_marker is required")
	}
	if !model.IsValidMetricName(model.LabelValue(c.Output.MetricPrefix)) {
		return fmt.Errorf("output.metric_prefix: %q is not a valid metric name", c.Output.MetricPrefix)
	}
	return nil
}
