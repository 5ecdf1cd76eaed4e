// Package config loads the simm-analyse configuration file and watches input
// files for changes.
//
// Top-level types:
//   - Config{Analysis, Output}: full config tree parsed from YAML
//   - AnalysisConfig: separator, tested_bits, truncation_limit, strict
//   - OutputConfig: format (text|prometheus), undefined_marker, metric_prefix
//
// Load(path) reads the YAML file, applies defaults (32-hyphen separator,
// 32768 tested bits, 31-entry truncation limit, text output), then validates.
// Default() returns the same defaults without reading a file.
//
// Watch(ctx, log, onChange, paths...) uses fsnotify to detect writes to the
// input log (and config file) so the CLI can re-run the analysis. It watches
// each file's parent directory and filters by name, so editors that save by
// writing a temp file and renaming it over the original keep triggering
// reruns.
package config
