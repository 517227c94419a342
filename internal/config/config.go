package config

import (
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/clickmapper/clickmapper/pkg/overlay"
)

// Config holds all application configuration
type Config struct {
	// External programs started by the overlay
	Render CommandConfig `toml:"render"`
	Sound  CommandConfig `toml:"sound"`

	// Display configuration
	Display DisplayConfig `toml:"display"`

	// Daemon configuration
	Daemon DaemonConfig `toml:"daemon"`

	// Launch journal configuration
	Journal JournalConfig `toml:"journal"`

	// Status server configuration
	Web WebConfig `toml:"web"`

	// Logging configuration
	Log LogConfig `toml:"log"`
}

// CommandConfig is an external program and its argument template.
// Arguments may contain {image}, {window} and {sound}.
type CommandConfig struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// DisplayConfig selects the X display
type DisplayConfig struct {
	Name string `toml:"name"` // Empty means $DISPLAY
}

// DaemonConfig holds overlay process management configuration
type DaemonConfig struct {
	PIDFile string `toml:"pid_file"` // Path to PID file used by stop and status
}

// JournalConfig holds launch journal configuration
type JournalConfig struct {
	Path       string `toml:"path"`        // SQLite file; empty disables the journal
	BufferSize int    `toml:"buffer_size"` // Pending records before new ones are dropped
}

// WebConfig holds status server configuration
type WebConfig struct {
	Listen string `toml:"listen"` // host:port; empty disables the server
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text or json
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Render: CommandConfig{
			Command: overlay.DefaultRenderCommand.Name,
			Args:    append([]string(nil), overlay.DefaultRenderCommand.Args...),
		},
		Sound: CommandConfig{
			Command: overlay.DefaultSoundCommand.Name,
			Args:    append([]string(nil), overlay.DefaultSoundCommand.Args...),
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/clickmapper-%d.pid", os.Getuid()),
		},
		Journal: JournalConfig{
			Path:       "", // Disabled unless set
			BufferSize: 64,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Render.Command == "" {
		return errors.New("render command cannot be empty")
	}

	if c.Sound.Command == "" {
		return errors.New("sound command cannot be empty")
	}

	if c.Daemon.PIDFile == "" {
		return errors.New("PID file path cannot be empty")
	}

	if c.Journal.BufferSize < 1 {
		return errors.Errorf("journal buffer size must be positive, got %d", c.Journal.BufferSize)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.Errorf("unknown log level %q", c.Log.Level)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.Errorf("unknown log format %q", c.Log.Format)
	}

	return nil
}

// RenderCommand returns the render program as an overlay.Command
func (c *Config) RenderCommand() overlay.Command {
	return overlay.Command{Name: c.Render.Command, Args: c.Render.Args}
}

// SoundCommand returns the sound program as an overlay.Command
func (c *Config) SoundCommand() overlay.Command {
	return overlay.Command{Name: c.Sound.Command, Args: c.Sound.Args}
}

// JournalEnabled reports whether launches should be recorded
func (c *Config) JournalEnabled() bool {
	return c.Journal.Path != ""
}

// WebEnabled reports whether the status server should run
func (c *Config) WebEnabled() bool {
	return c.Web.Listen != ""
}

// String returns a string representation of the config
func (c *Config) String() string {
	journal := c.Journal.Path
	if journal == "" {
		journal = "(disabled)"
	}
	web := c.Web.Listen
	if web == "" {
		web = "(disabled)"
	}
	display := c.Display.Name
	if display == "" {
		display = "$DISPLAY"
	}

	return fmt.Sprintf(`Configuration:
  Render: %s
  Sound: %s
  Display: %s
  PID File: %s
  Journal: %s
  Status Server: %s
  Log:
    Level: %s
    Format: %s`,
		c.RenderCommand(),
		c.SoundCommand(),
		display,
		c.Daemon.PIDFile,
		journal,
		web,
		c.Log.Level,
		c.Log.Format,
	)
}
