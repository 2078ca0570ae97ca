// Package config loads the teses configuration file.
//
// Configuration is optional. Without a file every field takes its default;
// a file only needs the keys it changes. Unknown keys are an error so that a
// typo never silently falls back to a default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable consulted when no path is given.
const EnvVar = "TESES_CONFIG"

// Config is the full configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// StateDir holds persisted reading state. Empty means
	// $XDG_STATE_HOME/teses or ~/.local/state/teses.
	StateDir string `yaml:"state_dir"`

	Render RenderConfig `yaml:"render"`
	Viewer ViewerConfig `yaml:"viewer"`
}

type RenderConfig struct {
	// HighlightStyle is the chroma style for code blocks in HTML output.
	// Empty leaves code unhighlighted.
	HighlightStyle string `yaml:"highlight_style"`

	// TerminalStyle is the chroma style for code blocks in the terminal.
	TerminalStyle string `yaml:"terminal_style"`

	// Width is the terminal wrap width.
	Width int `yaml:"width"`
}

type ViewerConfig struct {
	// RememberPosition reopens the gallery at the last viewed image.
	RememberPosition bool `yaml:"remember_position"`

	// MediaRoot is the directory site paths such as /uploads/a.jpg resolve
	// against when the desktop viewer loads an image. Empty means the
	// directory of the article.
	MediaRoot string `yaml:"media_root"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		LogLevel: "warn",
		Render: RenderConfig{
			HighlightStyle: "github",
			TerminalStyle:  "monokai",
			Width:          80,
		},
		Viewer: ViewerConfig{
			RememberPosition: true,
		},
	}
}

// Load reads the file at path, or the file named by TESES_CONFIG when path
// is empty. With neither it returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	cfg.StateDir = expandVars(cfg.StateDir)
	cfg.Viewer.MediaRoot = expandVars(cfg.Viewer.MediaRoot)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Render.Width != 0 && c.Render.Width < 20 {
		errs = append(errs, fmt.Errorf("render.width must be at least 20, got %d", c.Render.Width))
	}
	return errors.Join(errs...)
}

// SlogLevel returns the configured log level, warn if it is invalid.
func (c *Config) SlogLevel() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return level
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level: %s", name)
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}
