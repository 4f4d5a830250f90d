// Copyright (c) 2025-2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package config loads the CLI configuration and the small persisted session
// defaults (last used host and cookie file), so an invocation after login can
// omit --host and --cookie.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const appName = "openplc-cli"

// Config defines the global configuration structure
type Config struct {
	Host    string        `mapstructure:"host"`    // Base URL of the OpenPLC web interface
	Cookie  string        `mapstructure:"cookie"`  // Cookie file path
	Timeout time.Duration `mapstructure:"timeout"` // HTTP timeout
	Log     LogConfig     `mapstructure:"log"`
}

// LogConfig defines logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
	File  string `mapstructure:"file"`  // Log file path
}

// State is the persisted session default, written on successful login.
type State struct {
	Host   string `json:"host"`
	Cookie string `json:"cookie"`
}

// Load reads configuration from file (if any) plus environment overrides.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(configHome(), appName))
		v.AddConfigPath(".")
	}

	v.SetDefault("host", "http://localhost:8080")
	v.SetDefault("timeout", 20*time.Second)
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("OPENPLC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// No config file on the search path is fine; everything has a
		// default or a flag. An explicit --config that cannot be read
		// is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// LoadState reads the session defaults. A missing or corrupt state file is
// an empty state, never an error.
func LoadState() State {
	var st State
	data, err := os.ReadFile(statePath())
	if err != nil {
		return st
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}
	}
	return st
}

// SaveState persists the session defaults after a successful login.
func SaveState(st State) error {
	dir := filepath.Join(configHome(), appName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := os.WriteFile(statePath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	return nil
}

// DefaultCookieFile returns the per-host cookie file path under the user
// cache directory.
func DefaultCookieFile(host string) string {
	return filepath.Join(cacheHome(), appName, "cookies-"+sanitizeHost(host)+".json")
}

// Resolve fills host and cookie from the persisted state when the caller gave
// neither. A stored cookie path is only reused for the host it was saved with.
func Resolve(host, cookie, defaultHost string) (string, string) {
	st := LoadState()
	if host == "" {
		host = st.Host
	}
	if host == "" {
		host = defaultHost
	}
	if cookie == "" && st.Host == host {
		cookie = st.Cookie
	}
	if cookie == "" {
		cookie = DefaultCookieFile(host)
	}
	return host, cookie
}

func statePath() string {
	return filepath.Join(configHome(), appName, "session.json")
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config")
}

func cacheHome() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".cache")
}

// sanitizeHost maps a base URL to a filename-safe token.
func sanitizeHost(host string) string {
	var b strings.Builder
	for _, ch := range strings.TrimSpace(host) {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			b.WriteRune(ch)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
