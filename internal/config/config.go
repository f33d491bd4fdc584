// Package config resolves client settings from ~/.tada/config.yaml and the
// environment. Command-line flags are applied on top by cmd/todo.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const fileName = "config.yaml"

type Config struct {
	// Server is the base URL; the collection lives at <Server>/api/todos.
	Server string `yaml:"server"`
	// Lang picks the language of generated titles and labels ("en", "ko").
	Lang  string `yaml:"lang"`
	Theme string `yaml:"theme"`
	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
	// Timeout bounds each HTTP request. Zero waits forever.
	Timeout time.Duration `yaml:"timeout"`
	Serve   ServeConfig   `yaml:"serve"`
}

// ServeConfig configures `todo serve`.
type ServeConfig struct {
	Addr string `yaml:"addr"`
	// DataFile persists the collection; empty keeps it in memory.
	DataFile string `yaml:"data_file"`
}

func Default() Config {
	return Config{
		Server:   "http://localhost:8080",
		Lang:     "en",
		Theme:    "classic",
		LogLevel: "info",
		Serve:    ServeConfig{Addr: "localhost:8080"},
	}
}

// Dir is ~/.tada.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".tada"), nil
}

// Load starts from Default, overlays dir/config.yaml when present, then the
// TADA_* environment variables.
func Load(dir string) (Config, error) {
	cfg := Default()
	if lang := langFromLocale(os.Getenv("LANG")); lang != "" {
		cfg.Lang = lang
	}
	b, err := os.ReadFile(filepath.Join(dir, fileName))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", fileName, err)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	for env, dst := range map[string]*string{
		"TADA_SERVER":    &cfg.Server,
		"TADA_LANG":      &cfg.Lang,
		"TADA_THEME":     &cfg.Theme,
		"TADA_LOG_LEVEL": &cfg.LogLevel,
	} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			*dst = v
		}
	}
}

// langFromLocale turns "ko_KR.UTF-8" into "ko_KR". "C" and "POSIX" mean no
// preference.
func langFromLocale(s string) string {
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	if s == "C" || s == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(s, "_", "-")
}
