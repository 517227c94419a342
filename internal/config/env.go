package config

import (
	"os"
	"strconv"

	"github.com/clickmapper/clickmapper/pkg/overlay"
)

// LoadFromEnv loads configuration from environment variables
// Environment variables override file and default values
func LoadFromEnv(cfg *Config) {
	// Commands are whole command lines: program followed by arguments
	if render := os.Getenv("CLICKMAPPER_RENDER_CMD"); render != "" {
		if cmd := overlay.ParseCommand(render); cmd.Name != "" {
			cfg.Render = CommandConfig{Command: cmd.Name, Args: cmd.Args}
		}
	}

	if sound := os.Getenv("CLICKMAPPER_SOUND_CMD"); sound != "" {
		if cmd := overlay.ParseCommand(sound); cmd.Name != "" {
			cfg.Sound = CommandConfig{Command: cmd.Name, Args: cmd.Args}
		}
	}

	if display := os.Getenv("CLICKMAPPER_DISPLAY"); display != "" {
		cfg.Display.Name = display
	}

	// Daemon configuration
	if pidFile := os.Getenv("CLICKMAPPER_PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}

	// Journal configuration
	if path := os.Getenv("CLICKMAPPER_JOURNAL_PATH"); path != "" {
		cfg.Journal.Path = path
	}

	if size := os.Getenv("CLICKMAPPER_JOURNAL_BUFFER"); size != "" {
		if n, err := strconv.Atoi(size); err == nil && n > 0 {
			cfg.Journal.BufferSize = n
		}
	}

	// Status server configuration
	if listen := os.Getenv("CLICKMAPPER_WEB_LISTEN"); listen != "" {
		cfg.Web.Listen = listen
	}

	// Log configuration
	if level := os.Getenv("CLICKMAPPER_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	if format := os.Getenv("CLICKMAPPER_LOG_FORMAT"); format != "" {
		cfg.Log.Format = format
	}
}

// New creates a new Config from defaults, the config file if one exists,
// and the environment
func New() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	LoadFromEnv(cfg)
	return cfg, nil
}
