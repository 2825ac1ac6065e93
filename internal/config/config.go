// Package config loads the optional YAML settings file.
package config

import (
	"errors"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joeblew999/geo-filter/internal/geo"
)

const (
	defaultFocusAttribute = "name"
	defaultMaxUploadMB    = 50
)

// Config is the root of the settings file. Every field is optional.
type Config struct {
	// FocusAttribute is the property that focus selections are matched on.
	FocusAttribute string `yaml:"focus_attribute,omitempty"`
	// MaxUploadMB caps the size of uploaded GeoJSON documents.
	MaxUploadMB int               `yaml:"max_upload_mb,omitempty"`
	Palette     *geo.StylePalette `yaml:"palette,omitempty"`
}

// Default returns the built-in settings.
func Default() *Config {
	palette := geo.DefaultPalette()
	return &Config{
		FocusAttribute: defaultFocusAttribute,
		MaxUploadMB:    defaultMaxUploadMB,
		Palette:        &palette,
	}
}

// Load reads path and fills unset fields with defaults. An empty path or a
// missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	if file.FocusAttribute != "" {
		cfg.FocusAttribute = file.FocusAttribute
	}
	if file.MaxUploadMB > 0 {
		cfg.MaxUploadMB = file.MaxUploadMB
	}
	if file.Palette != nil {
		cfg.Palette = file.Palette
	}
	return cfg, nil
}

// MaxUploadBytes returns MaxUploadMB in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
