// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Reader ReaderConfig `toml:"reader"`
}

// ReaderConfig maps reader-related settings.
type ReaderConfig struct {
	FontSize     *int     `toml:"font-size"`
	LineSpacing  *float64 `toml:"line-spacing"`
	Margin       *int     `toml:"margin"`
	Padding      *int     `toml:"padding"`
	Paginate     *bool    `toml:"paginate"`
	ShowSpaces   *bool    `toml:"show-spaces"`
	SegmenterURL *string  `toml:"segmenter-url"`
	DictURL      *string  `toml:"dict-url"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
