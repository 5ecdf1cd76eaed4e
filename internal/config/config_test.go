package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simmtest/simm-analyse/internal/report"
)

func TestLoad_Valid(t *testing.T) {
	yaml := `
analysis:
  separator: "====="
  tested_bits: 8
  truncation_limit: 4
  strict: true
output:
  format: prometheus
  undefined_marker: "n/a"
  metric_prefix: dram_decay
`
	cfg := loadFromString(t, yaml)

	assert.Equal(t, "=====", cfg.Analysis.Separator)
	assert.Equal(t, uint64(8), cfg.Analysis.TestedBits)
	assert.Equal(t, 4, cfg.Analysis.TruncationLimit)
	assert.True(t, cfg.Analysis.Strict)
	assert.Equal(t, FormatPrometheus, cfg.Output.Format)
	assert.Equal(t, "n/a", cfg.Output.UndefinedMarker)
	assert.Equal(t, "dram_decay", cfg.Output.MetricPrefix)
}

func TestLoad_Defaults(t *testing.T) {
	yaml := `
output:
  format: text
`
	cfg := loadFromString(t, yaml)

	if cfg.Analysis.Separator != DefaultSeparator {
		t.Errorf("default separator: got %q, want %q", cfg.Analysis.Separator, DefaultSeparator)
	}
	if len(cfg.Analysis.Separator) != 32 {
		t.Errorf("default separator length: got %d, want 32", len(cfg.Analysis.Separator))
	}
	if cfg.Analysis.TestedBits != 32768 {
		t.Errorf("default tested_bits: got %d, want 32768", cfg.Analysis.TestedBits)
	}
	if cfg.Analysis.TruncationLimit != DefaultTruncationLimit {
		t.Errorf("default truncation_limit: got %d, want %d", cfg.Analysis.TruncationLimit, DefaultTruncationLimit)
	}
	if cfg.Output.UndefinedMarker != DefaultUndefinedMarker {
		t.Errorf("default undefined_marker: got %q", cfg.Output.UndefinedMarker)
	}
	if cfg.Output.MetricPrefix != DefaultMetricPrefix {
		t.Errorf("default metric_prefix: got %q", cfg.Output.MetricPrefix)
	}
	if cfg.Analysis.Strict {
		t.Error("strict should default to false")
	}
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	cfg := loadFromString(t, "")
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero tested bits", "analysis:\n  tested_bits: 0\n"},
		{"zero truncation limit", "analysis:\n  truncation_limit: 0\n"},
		{"negative truncation limit", "analysis:\n  truncation_limit: -3\n"},
		{"empty separator", "analysis:\n  separator: \"\"\n"},
		{"multi-line separator", "analysis:\n  separator: \"--\\n--\"\n"},
		{"unknown format", "output:\n  format: xml\n"},
		{"empty undefined marker", "output:\n  undefined_marker: \"\"\n"},
		{"bad metric prefix", "output:\n  metric_prefix: \"9lives\"\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadStringErr(t, tc.yaml)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoad_MalformedYAMLIsNotInvalidSetting(t *testing.T) {
	_, err := loadStringErr(t, "analysis: [\n")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)
}

func TestValidate_FlagOverride(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Output.Format = "xml"
	err := cfg.Validate()
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), `unknown format "xml"`)
}

func TestDefaults_MatchRenderers(t *testing.T) {
	assert.Equal(t, report.DefaultUndefinedMarker, Default().Output.UndefinedMarker)
	assert.Equal(t, report.DefaultMetricPrefix, Default().Output.MetricPrefix)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_Limits(t *testing.T) {
	cfg := Default()
	cfg.Analysis.TruncationLimit = 7
	lim := cfg.Limits()
	assert.Equal(t, DefaultSeparator, lim.Separator)
	assert.Equal(t, 7, lim.TruncationLimit)
}

// loadFromString writes yaml to a temp file and calls Load, failing on error.
func loadFromString(t *testing.T, content string) *Config {
	t.Helper()
	cfg, err := loadStringErr(t, content)
	require.NoError(t, err, "Load() unexpected error")
	return cfg
}

// loadStringErr writes yaml to a temp file and calls Load, returning any error.
func loadStringErr(t *testing.T, content string) (*Config, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return Load(path)
}
