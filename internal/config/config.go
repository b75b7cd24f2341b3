// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete chatfile configuration.
type Config struct {
	Ollama  OllamaConfig  `toml:"ollama"`
	Session SessionConfig `toml:"session"`
	Log     LogConfig     `toml:"log"`
}

// OllamaConfig configures the model backend.
type OllamaConfig struct {
	// URL of the Ollama server.
	URL string `toml:"url"`
	// Model is the model name used for chat requests.
	Model string `toml:"model"`
	// Temperature for sampling, 0 means model default.
	Temperature float64 `toml:"temperature"`
}

// SessionConfig configures conversation behavior.
type SessionConfig struct {
	// Editor is the command used to open the conversation file. Empty
	// falls back to $EDITOR, then vi.
	Editor string `toml:"editor"`
	// Compress enables compressed tool fences when serializing.
	Compress bool `toml:"compress"`
	// SystemPrompt is prepended as a system message to new conversations.
	SystemPrompt string `toml:"system_prompt"`
	// IgnoreFile names the ignore rule file relative to the project root.
	IgnoreFile string `toml:"ignore_file"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `toml:"level"`
	// File is the log destination; empty logs to stderr.
	File string `toml:"file"`
}

// =============================================================================
// DEFAULTS AND LOADING
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Ollama: OllamaConfig{
			URL:   "http://127.0.0.1:11434",
			Model: "qwen2.5-coder:14b",
		},
		Session: SessionConfig{
			IgnoreFile: ".gitignore",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ConfigPath returns the default config file location.
func ConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".chatfile", "config.toml"), nil
}

// Load reads the config from path, or from the default location when
// path is empty. A missing default file is not an error; a missing
// explicit path is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		var err error
		path, err = ConfigPath()
		if err != nil {
			cfg.ApplyEnvOverrides()
			return cfg, cfg.Validate()
		}
	}

	if _, err := os.Stat(path); err != nil {
		if explicit {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
	} else if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides applies CHATFILE_* environment variables on top of
// whatever was loaded:
//   - CHATFILE_MODEL: overrides ollama.model
//   - CHATFILE_OLLAMA_URL: overrides ollama.url
//   - CHATFILE_EDITOR: overrides session.editor
//   - CHATFILE_COMPRESS: "1" or "true" enables compressed fences
//   - CHATFILE_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() {
	if model := os.Getenv("CHATFILE_MODEL"); model != "" {
		c.Ollama.Model = model
	}
	if u := os.Getenv("CHATFILE_OLLAMA_URL"); u != "" {
		c.Ollama.URL = u
	}
	if editor := os.Getenv("CHATFILE_EDITOR"); editor != "" {
		c.Session.Editor = editor
	}
	if v := os.Getenv("CHATFILE_COMPRESS"); v == "1" || strings.EqualFold(v, "true") {
		c.Session.Compress = true
	}
	if level := os.Getenv("CHATFILE_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	if c.Ollama.Model == "" {
		return errors.New("ollama.model must not be empty")
	}
	if c.Ollama.URL == "" {
		return errors.New("ollama.url must not be empty")
	}
	parsed, err := url.Parse(c.Ollama.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("ollama.url is not a valid URL: %s", c.Ollama.URL)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	if c.Ollama.Temperature < 0 || c.Ollama.Temperature > 2 {
		return fmt.Errorf("ollama.temperature must be in [0, 2], got %g", c.Ollama.Temperature)
	}
	return nil
}

// EditorCommand resolves the editor to spawn: config value, then
// $EDITOR, then vi.
func (c *Config) EditorCommand() string {
	if c.Session.Editor != "" {
		return c.Session.Editor
	}
	if env := os.Getenv("EDITOR"); env != "" {
		return env
	}
	return "vi"
}
