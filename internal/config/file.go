package config

import (
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

const appDir = "clickmapper"

// Load reads configuration from the first config file found.
// Search order:
//  1. $CLICKMAPPER_CONFIG
//  2. $XDG_CONFIG_HOME/clickmapper/config.toml
//  3. ~/.config/clickmapper/config.toml
//
// If no file exists, returns Default().
func Load() (*Config, error) {
	if explicit := os.Getenv("CLICKMAPPER_CONFIG"); explicit != "" {
		return LoadFile(explicit)
	}

	for _, p := range searchPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return Default(), nil
}

// LoadFile reads configuration from a specific file path
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open config file")
	}
	defer f.Close()

	cfg, err := LoadReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return cfg, nil
}

// LoadReader decodes TOML on top of Default(). A section that names its own
// command without args gets no arguments, the same as an env command line;
// the default template only fits the default program.
func LoadReader(r io.Reader) (*Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, err
	}

	for _, c := range []struct {
		section string
		cmd     *CommandConfig
	}{
		{"render", &cfg.Render},
		{"sound", &cfg.Sound},
	} {
		if md.IsDefined(c.section, "command") && !md.IsDefined(c.section, "args") {
			c.cmd.Args = nil
		}
	}
	return cfg, nil
}

func searchPaths() []string {
	var paths []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, appDir, "config.toml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appDir, "config.toml"))
	}
	return paths
}
