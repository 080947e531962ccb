// Package config loads hyprcycle settings from the environment and from an
// optional env file in the user's config directory.
//
// Hotkey daemons usually start hyprcycle with a minimal environment, so the
// env file is the practical place for settings. Variables set in the process
// environment win over the file.
package config

import (
	"codeberg.org/miketth/hyprcycle/pkg/hyprcycle"
	"errors"
	"fmt"
	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"go-simpler.org/env"
	"os"
	"path/filepath"
	"time"
)

const (
	appName         = "hyprcycle"
	stateFileName   = "state.json"
	historyFileName = "history.db"

	BackendSocket = "socket"
	BackendExec   = "exec"
)

type Config struct {
	DataDir     string        `env:"HYPRCYCLE_DATA_DIR"`
	BurstWindow time.Duration `env:"HYPRCYCLE_BURST_WINDOW"`
	LockTimeout time.Duration `env:"HYPRCYCLE_LOCK_TIMEOUT" default:"1s"`
	Backend     string        `env:"HYPRCYCLE_BACKEND" default:"socket"`
	HyprctlPath string        `env:"HYPRCYCLE_HYPRCTL" default:"hyprctl"`
	History     bool          `env:"HYPRCYCLE_HISTORY" default:"false"`
	Debug       bool          `env:"HYPRCYCLE_DEBUG" default:"false"`
}

// DefaultEnvFile is $XDG_CONFIG_HOME/hyprcycle/env.
func DefaultEnvFile() string {
	return filepath.Join(xdg.ConfigHome, appName, "env")
}

// Load reads the configuration. A missing envFile is not an error.
func Load(envFile string) (*Config, error) {
	return load(envFile, osSource{})
}

func load(envFile string, environ env.Source) (*Config, error) {
	fileVars := map[string]string{}
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read env file %s: %w", envFile, err)
		default:
			fileVars = vars
		}
	}

	var cfg Config
	if err := env.Load(&cfg, &env.Options{Source: layeredSource{environ: environ, file: fileVars}}); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(xdg.DataHome, appName)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendSocket, BackendExec:
	default:
		return fmt.Errorf("HYPRCYCLE_BACKEND must be %q or %q, got %q", BackendSocket, BackendExec, c.Backend)
	}

	if c.BurstWindow != 0 {
		if err := hyprcycle.ValidateBurstWindow(c.BurstWindow); err != nil {
			return fmt.Errorf("HYPRCYCLE_BURST_WINDOW: %w", err)
		}
	}

	if c.LockTimeout <= 0 {
		return fmt.Errorf("HYPRCYCLE_LOCK_TIMEOUT must be positive, got %s", c.LockTimeout)
	}

	return nil
}

func (c *Config) StatePath() string {
	return filepath.Join(c.DataDir, stateFileName)
}

func (c *Config) HistoryPath() string {
	return filepath.Join(c.DataDir, historyFileName)
}

type osSource struct{}

func (osSource) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

type layeredSource struct {
	environ env.Source
	file    map[string]string
}

func (s layeredSource) LookupEnv(key string) (string, bool) {
	if value, ok := s.environ.LookupEnv(key); ok {
		return value, true
	}
	value, ok := s.file[key]
	return value, ok
}
