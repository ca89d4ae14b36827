package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load resolves the configuration. An explicit path must exist; when path is
// empty the default location is read if present. Environment overrides are
// applied with os.Getenv, then the result is normalized and validated.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := Parse(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := ApplyEnv(&cfg, os.Getenv); err != nil {
		return Config{}, err
	}
	Normalize(&cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes a single YAML document into cfg. Unknown keys are
// rejected; keys absent from the document keep their current values.
func Parse(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("parse config: %w", err)
	}
	// A node accepts any document, so KnownFields cannot mask a second one.
	var extra yaml.Node
	if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config: multiple YAML documents are not supported")
	}
	return nil
}

// ApplyEnv overrides cfg from TUTORIA_API_URL, TUTORIA_TIMEOUT, TUTORIA_DB
// and TUTORIA_LLM_PROVIDER. getenv is usually os.Getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv("TUTORIA_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := getenv("TUTORIA_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TUTORIA_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	if v := getenv("TUTORIA_DB"); v != "" {
		cfg.DB = v
	}
	if v := getenv("TUTORIA_LLM_PROVIDER"); v != "" {
		cfg.LLMProvider = v
	}
	return nil
}

// Normalize trims whitespace and a trailing slash from the API URL and
// lower-cases the provider name.
func Normalize(cfg *Config) {
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	cfg.DB = strings.TrimSpace(cfg.DB)
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
}
