package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// DefaultPath is where the settings file is looked up when -config is omitted.
const DefaultPath = "conf/settings.yaml"

// Load reads, decodes, applies environment overrides and validates the
// config at path. Every error wraps ErrInvalid.
func Load(path string) (*Config, error) {
	cfg, err := Parse(path)
	if err != nil {
		return nil, err
	}
	ApplyEnv(cfg, os.Getenv)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse reads and strictly decodes the file at path without validating it.
func Parse(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrInvalid, path, err)
	}
	return Decode(path, b)
}

// Decode decodes data as YAML or JSON depending on the extension of path.
// Unknown fields and trailing data are rejected.
func Decode(path string, data []byte) (*Config, error) {
	jb, err := toJSON(path, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, path, err)
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, path, err)
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("%w: %s: trailing data", ErrInvalid, path)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, path, err)
	}
	return &cfg, nil
}
