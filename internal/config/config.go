package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DefaultReportSuffix is appended to the merged file's path to name its
// merge report.
const DefaultReportSuffix = ".mergereport"

// Color modes for terminal output.
const (
	ColorAuto = "auto"
	ColorOn   = "on"
	ColorOff  = "off"
)

// LogConfig controls structured logging.
type LogConfig struct {
	Level      string `yaml:"level,omitempty" toml:"level"`
	File       string `yaml:"file,omitempty" toml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB,omitempty" toml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups,omitempty" toml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays,omitempty" toml:"maxAgeDays"`
	Compress   bool   `yaml:"compress,omitempty" toml:"compress"`
	Dev        bool   `yaml:"dev,omitempty" toml:"dev"`
}

// ProjectConfig holds project-level settings loaded from .unitymerge.yml.
type ProjectConfig struct {
	ReportSuffix string `yaml:"reportSuffix,omitempty" toml:"reportSuffix"`
	// AlwaysWriteReport writes the report after a recording run even when
	// nothing was decided.
	AlwaysWriteReport *bool     `yaml:"alwaysWriteReport,omitempty" toml:"alwaysWriteReport"`
	Color             string    `yaml:"color,omitempty" toml:"color"`
	Log               LogConfig `yaml:"log,omitempty" toml:"log"`

	// Path is the file the config was read from, empty for defaults.
	Path string `yaml:"-" toml:"-"`
}

// WriteReport resolves AlwaysWriteReport, defaulting to true.
func (c *ProjectConfig) WriteReport() bool {
	return c.AlwaysWriteReport == nil || *c.AlwaysWriteReport
}

// ReportPath returns the report file that belongs to merged.
func (c *ProjectConfig) ReportPath(merged string) string {
	return merged + c.ReportSuffix
}

func (c *ProjectConfig) applyDefaults() {
	if c.ReportSuffix == "" {
		c.ReportSuffix = DefaultReportSuffix
	}
	if c.Color == "" {
		c.Color = ColorAuto
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
}

func (c *ProjectConfig) validate() error {
	switch c.Color {
	case ColorAuto, ColorOn, ColorOff:
	default:
		return fmt.Errorf("color must be one of auto, on, off; got %q", c.Color)
	}
	return nil
}

// Load attempts to read .unitymerge.yml, .unitymerge.yaml or
// .unitymerge.toml from the given directory, in that order. Returns a
// default config (not an error) if no config file exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{".unitymerge.yml", ".unitymerge.yaml", ".unitymerge.toml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		var cfg ProjectConfig
		if filepath.Ext(name) == ".toml" {
			err = toml.Unmarshal(data, &cfg)
		} else {
			err = yaml.Unmarshal(data, &cfg)
		}
		if err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg.Path = path
		cfg.applyDefaults()
		if err := cfg.validate(); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
		return &cfg, nil
	}
	return Default(), nil
}

// Default returns the configuration used when no config file exists.
func Default() *ProjectConfig {
	cfg := &ProjectConfig{}
	cfg.applyDefaults()
	return cfg
}
