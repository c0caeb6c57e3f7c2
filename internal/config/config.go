// Package config loads the optional YAML file that overrides the report's
// constants: busy threshold, temperature bins and scale, preview rows.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/lox/bikeshare/internal/analysis"
)

const (
	AppName = "bikeshare"

	// DefaultConfigFile is looked up in the working directory.
	DefaultConfigFile = "bikeshare.yaml"
)

// ErrConfigNotFound is returned when an explicitly named file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File mirrors the YAML layout. Unset fields keep their defaults.
type File struct {
	BusyThreshold    *float64  `yaml:"busy_threshold"`
	TemperatureBins  []float64 `yaml:"temperature_bins"`
	TemperatureScale *float64  `yaml:"temperature_scale"`
	PreviewRows      *int      `yaml:"preview_rows"`
}

// Settings applies f over the defaults and validates the result.
func (f *File) Settings() (analysis.Settings, error) {
	s := analysis.DefaultSettings()
	if f == nil {
		return s, nil
	}
	if f.BusyThreshold != nil {
		s.BusyThreshold = *f.BusyThreshold
	}
	if len(f.TemperatureBins) > 0 {
		s.TemperatureBins = append([]float64(nil), f.TemperatureBins...)
	}
	if f.TemperatureScale != nil {
		s.TemperatureScale = *f.TemperatureScale
	}
	if f.PreviewRows != nil {
		s.PreviewRows = *f.PreviewRows
	}
	if err := s.Validate(); err != nil {
		return analysis.Settings{}, err
	}
	return s, nil
}

// XDGConfigPath is the per-user config file location.
func XDGConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// Find returns the first existing config file: the explicit path, then
// ./bikeshare.yaml, then the XDG config file. It returns "" when none exist.
func Find(explicit string) string {
	if explicit != "" {
		if fileExists(explicit) {
			return explicit
		}
		return ""
	}
	if fileExists(DefaultConfigFile) {
		return DefaultConfigFile
	}
	if p := XDGConfigPath(); fileExists(p) {
		return p
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &f, nil
}

// Load resolves the settings for a run. A missing explicit file is an error;
// with no explicit file and nothing found, defaults are used. The returned
// path is empty when defaults were used.
func Load(explicit string) (analysis.Settings, string, error) {
	path := Find(explicit)
	if path == "" {
		if explicit != "" {
			return analysis.Settings{}, "", fmt.Errorf("%w: %s", ErrConfigNotFound, explicit)
		}
		return analysis.DefaultSettings(), "", nil
	}
	f, err := LoadFile(path)
	if err != nil {
		return analysis.Settings{}, path, err
	}
	s, err := f.Settings()
	if err != nil {
		return analysis.Settings{}, path, fmt.Errorf("%s: %w", path, err)
	}
	return s, path, nil
}
