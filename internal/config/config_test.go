package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clickmapper/clickmapper/pkg/overlay"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, overlay.DefaultRenderCommand, cfg.RenderCommand())
	assert.Equal(t, overlay.DefaultSoundCommand, cfg.SoundCommand())
}

func TestDefaultDoesNotShareArgs(t *testing.T) {
	cfg := Default()
	cfg.Render.Args[0] = "display"
	assert.Equal(t, "animate", overlay.DefaultRenderCommand.Args[0])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"Empty render command", func(c *Config) { c.Render.Command = "" }, "render command"},
		{"Empty sound command", func(c *Config) { c.Sound.Command = "" }, "sound command"},
		{"Empty PID file", func(c *Config) { c.Daemon.PIDFile = "" }, "PID file"},
		{"Zero buffer", func(c *Config) { c.Journal.BufferSize = 0 }, "buffer size"},
		{"Bad level", func(c *Config) { c.Log.Level = "trace" }, "log level"},
		{"Bad format", func(c *Config) { c.Log.Format = "xml" }, "log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CLICKMAPPER_RENDER_CMD", "feh --window-id {window} {image}")
	t.Setenv("CLICKMAPPER_SOUND_CMD", "aplay -q {sound}")
	t.Setenv("CLICKMAPPER_DISPLAY", ":1")
	t.Setenv("CLICKMAPPER_PID_FILE", "/run/user/1000/cm.pid")
	t.Setenv("CLICKMAPPER_JOURNAL_PATH", "/tmp/j.db")
	t.Setenv("CLICKMAPPER_JOURNAL_BUFFER", "8")
	t.Setenv("CLICKMAPPER_WEB_LISTEN", "127.0.0.1:9477")
	t.Setenv("CLICKMAPPER_LOG_LEVEL", "debug")
	t.Setenv("CLICKMAPPER_LOG_FORMAT", "json")

	cfg := Default()
	LoadFromEnv(cfg)

	assert.Equal(t, overlay.Command{Name: "feh", Args: []string{"--window-id", "{window}", "{image}"}}, cfg.RenderCommand())
	assert.Equal(t, overlay.Command{Name: "aplay", Args: []string{"-q", "{sound}"}}, cfg.SoundCommand())
	assert.Equal(t, ":1", cfg.Display.Name)
	assert.Equal(t, "/run/user/1000/cm.pid", cfg.Daemon.PIDFile)
	assert.Equal(t, "/tmp/j.db", cfg.Journal.Path)
	assert.Equal(t, 8, cfg.Journal.BufferSize)
	assert.True(t, cfg.WebEnabled())
	assert.Equal(t, "127.0.0.1:9477", cfg.Web.Listen)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromEnvIgnoresInvalid(t *testing.T) {
	t.Setenv("CLICKMAPPER_RENDER_CMD", "   ")
	t.Setenv("CLICKMAPPER_JOURNAL_BUFFER", "-3")

	cfg := Default()
	LoadFromEnv(cfg)

	assert.Equal(t, overlay.DefaultRenderCommand, cfg.RenderCommand())
	assert.Equal(t, 64, cfg.Journal.BufferSize)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[render]
command = "magick"
args = ["display", "-window", "{window}", "{image}"]

[log]
level = "warn"
`), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"display", "-window", "{window}", "{image}"}, cfg.Render.Args)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, overlay.DefaultSoundCommand, cfg.SoundCommand())
}

func TestLoadReaderCommandWithoutArgs(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantRender overlay.Command
		wantSound  overlay.Command
	}{
		{
			name:       "Render command only",
			input:      "[render]\ncommand = \"feh\"\n",
			wantRender: overlay.Command{Name: "feh"},
			wantSound:  overlay.DefaultSoundCommand,
		},
		{
			name:       "Sound command only",
			input:      "[sound]\ncommand = \"paplay\"\n",
			wantRender: overlay.DefaultRenderCommand,
			wantSound:  overlay.Command{Name: "paplay"},
		},
		{
			name:       "Args only keeps default program",
			input:      "[render]\nargs = [\"display\", \"-window\", \"{window}\", \"{image}\"]\n",
			wantRender: overlay.Command{Name: "magick", Args: []string{"display", "-window", "{window}", "{image}"}},
			wantSound:  overlay.DefaultSoundCommand,
		},
		{
			name:       "Explicit empty args",
			input:      "[sound]\ncommand = \"aplay\"\nargs = []\n",
			wantRender: overlay.DefaultRenderCommand,
			wantSound:  overlay.Command{Name: "aplay", Args: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadReader(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.wantRender, cfg.RenderCommand())
			assert.Equal(t, tt.wantSound, cfg.SoundCommand())
		})
	}
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = LoadReader(strings.NewReader("[render\ncommand = "))
	assert.Error(t, err)
}

func TestLoadSearchPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "clickmapper"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clickmapper", "config.toml"),
		[]byte("[journal]\npath = \"/var/tmp/cm.db\"\n"), 0644))

	t.Setenv("CLICKMAPPER_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/var/tmp/cm.db", cfg.Journal.Path)
}

func TestLoadExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[display]\nname = \":2\"\n"), 0644))
	t.Setenv("CLICKMAPPER_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":2", cfg.Display.Name)
}

func TestString(t *testing.T) {
	s := Default().String()
	assert.Contains(t, s, "Journal: (disabled)")
	assert.Contains(t, s, "Display: $DISPLAY")
	assert.Contains(t, s, "Status Server: (disabled)")
}
