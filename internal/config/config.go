// Package config resolves client settings from defaults, an optional YAML
// file and TUTORIA_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abhisek/tutoria/internal/assess"
)

// Config is the resolved client configuration.
type Config struct {
	APIURL  string        `yaml:"api_url"`
	Timeout time.Duration `yaml:"timeout"`

	// DB is the event database path. Empty selects the XDG default.
	DB string `yaml:"db"`

	// LLMProvider selects the explanation provider. Empty means discover
	// from vendor API keys; "none" disables explanations.
	LLMProvider string `yaml:"llm_provider"`
}

// ProviderNone disables explanations regardless of available API keys.
const ProviderNone = "none"

// Default returns the settings of a local deployment.
func Default() Config {
	d := assess.DefaultConfig()
	return Config{
		APIURL:  d.BaseURL,
		Timeout: d.Timeout,
	}
}

// Service returns the assessment client settings.
func (c Config) Service() assess.Config {
	return assess.Config{BaseURL: c.APIURL, Timeout: c.Timeout}
}

// ExplanationsDisabled reports whether the user opted out of explanations.
func (c Config) ExplanationsDisabled() bool {
	return c.LLMProvider == ProviderNone
}

// DefaultPath returns $XDG_CONFIG_HOME/tutoria/config.yaml, falling back
// to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "tutoria", "config.yaml"), nil
}
