// Package config loads, normalizes, and validates pkaprep configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads a working-directory .env file, and
// honours environment overrides such as PKAPREP_DATASET_VERSION and
// PKAPREP_DATA_PATH. The Config type centralizes every knob the launcher and
// CLI need, from the dataset version tag to per-stage program overrides.
//
// Always obtain settings through this package so downstream code receives
// sanitized values and clear validation errors.
package config
