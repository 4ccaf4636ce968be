package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPath overrides the config location when set.
const EnvPath = "RIGBOOK_CONFIG"

// DefaultFileName is looked up inside the user config directory.
const DefaultFileName = "config.yaml"

// Config represents the complete rigbook configuration
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
	UI      UIConfig      `yaml:"ui"`
	Rig     RigConfig     `yaml:"rig"`
	Export  ExportConfig  `yaml:"export"`

	// LoadedFrom is the file or directory the config came from; empty for
	// built-in defaults.
	LoadedFrom string `yaml:"-"`
}

// StorageConfig locates bookmarks.csv and bandplan.csv.
type StorageConfig struct {
	Dir             string `yaml:"dir"`
	AutosaveSeconds int    `yaml:"autosave_seconds"`
}

// LoggingConfig controls the optional daily log file.
type LoggingConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Dir           string `yaml:"dir"`
	RetentionDays int    `yaml:"retention_days"`
}

// UIConfig holds terminal UI settings.
type UIConfig struct {
	EnableMouse  *bool `yaml:"enable_mouse"`
	TargetFPS    int   `yaml:"target_fps"`
	ShowUntagged *bool `yaml:"show_untagged"`
}

// MouseEnabled reports ui.enable_mouse (default true).
func (u UIConfig) MouseEnabled() bool {
	return u.EnableMouse == nil || *u.EnableMouse
}

// UntaggedShown reports ui.show_untagged (default true).
func (u UIConfig) UntaggedShown() bool {
	return u.ShowUntagged == nil || *u.ShowUntagged
}

// RigConfig points at the receiver's remote-control port.
type RigConfig struct {
	Address   string `yaml:"address"`
	TimeoutMS int    `yaml:"timeout_ms"`
}

// ExportConfig holds the SQLite export target.
type ExportConfig struct {
	Path string `yaml:"path"`
}

const (
	defaultAutosaveSeconds = 10
	defaultRetentionDays   = 7
	defaultTargetFPS       = 30
	defaultRigAddress      = "127.0.0.1:7356"
	defaultRigTimeoutMS    = 2000
	defaultExportFile      = "bookmarks.db"
)

// DefaultPath returns $RIGBOOK_CONFIG or <user config dir>/rigbook/config.yaml.
func DefaultPath() string {
	if p := strings.TrimSpace(os.Getenv(EnvPath)); p != "" {
		return p
	}
	return filepath.Join(defaultBaseDir(), DefaultFileName)
}

func defaultBaseDir() string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		base = "."
	}
	return filepath.Join(base, "rigbook")
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a YAML file, or from every *.yaml/*.yml file
// of a directory in lexical order. Later files override keys set by earlier
// ones.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config: stat %s: %w", path, err)
	}
	files := []string{path}
	if info.IsDir() {
		files, err = yamlFiles(path)
		if err != nil {
			return nil, err
		}
	}

	var cfg Config
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", file, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", file, err)
		}
	}
	cfg.LoadedFrom = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads path when it exists. A missing file at the default
// location yields Default(); an explicitly requested file must exist.
func LoadOrDefault(path string, explicit bool) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !explicit && errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return nil, err
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("config: read dir %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("config: no yaml files in %s: %w", dir, os.ErrNotExist)
	}
	sort.Strings(files)
	return files, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Storage.Dir) == "" {
		c.Storage.Dir = defaultBaseDir()
	}
	c.Storage.Dir = expandHome(c.Storage.Dir)
	if c.Storage.AutosaveSeconds == 0 {
		c.Storage.AutosaveSeconds = defaultAutosaveSeconds
	}
	if strings.TrimSpace(c.Logging.Dir) == "" {
		c.Logging.Dir = filepath.Join(c.Storage.Dir, "logs")
	}
	c.Logging.Dir = expandHome(c.Logging.Dir)
	if c.Logging.RetentionDays == 0 {
		c.Logging.RetentionDays = defaultRetentionDays
	}
	if c.UI.TargetFPS == 0 {
		c.UI.TargetFPS = defaultTargetFPS
	}
	if strings.TrimSpace(c.Rig.Address) == "" {
		c.Rig.Address = defaultRigAddress
	}
	if c.Rig.TimeoutMS == 0 {
		c.Rig.TimeoutMS = defaultRigTimeoutMS
	}
	if strings.TrimSpace(c.Export.Path) == "" {
		c.Export.Path = filepath.Join(c.Storage.Dir, defaultExportFile)
	}
	c.Export.Path = expandHome(c.Export.Path)
}

// Validate reports the first out-of-range setting by its YAML key.
func (c *Config) Validate() error {
	switch {
	case c.Storage.AutosaveSeconds < 0:
		return fmt.Errorf("config: storage.autosave_seconds must be positive, got %d", c.Storage.AutosaveSeconds)
	case c.Logging.RetentionDays < 0:
		return fmt.Errorf("config: logging.retention_days must be positive, got %d", c.Logging.RetentionDays)
	case c.UI.TargetFPS < 0 || c.UI.TargetFPS > 240:
		return fmt.Errorf("config: ui.target_fps must be between 1 and 240, got %d", c.UI.TargetFPS)
	case c.Rig.TimeoutMS < 0:
		return fmt.Errorf("config: rig.timeout_ms must be positive, got %d", c.Rig.TimeoutMS)
	case !strings.Contains(c.Rig.Address, ":"):
		return fmt.Errorf("config: rig.address must be host:port, got %q", c.Rig.Address)
	}
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Print displays the configuration
func (c *Config) Print(w io.Writer) {
	source := c.LoadedFrom
	if source == "" {
		source = "built-in defaults"
	}
	fmt.Fprintf(w, "Config: %s\n", source)
	fmt.Fprintf(w, "Storage: %s (autosave every %ds)\n", c.Storage.Dir, c.Storage.AutosaveSeconds)
	if c.Logging.Enabled {
		fmt.Fprintf(w, "Logging: %s (retention %d days)\n", c.Logging.Dir, c.Logging.RetentionDays)
	} else {
		fmt.Fprintln(w, "Logging: console only")
	}
	fmt.Fprintf(w, "UI: %d fps, mouse=%t, show untagged=%t\n", c.UI.TargetFPS, c.UI.MouseEnabled(), c.UI.UntaggedShown())
	fmt.Fprintf(w, "Rig: %s (timeout %dms)\n", c.Rig.Address, c.Rig.TimeoutMS)
	fmt.Fprintf(w, "Export: %s\n", c.Export.Path)
}
