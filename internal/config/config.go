// Package config holds runtime configuration for the comic-to-Premiere
// pipeline. Values come from an optional YAML file, a .env file for
// secrets, and flag overrides in the entry points.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Canvas for composited panels
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// Rendering DPI for PDF panel sources
	DPI int `yaml:"dpi"`

	// Fallback seconds per panel when no audio duration is measurable
	SecondsPerPanel float64 `yaml:"seconds_per_panel"`

	// Gemini settings. APIKey is only read from the environment.
	APIKey        string  `yaml:"-"`
	GeminiModel   string  `yaml:"gemini_model"`
	GeminiTimeout float64 `yaml:"gemini_timeout_seconds"`

	// Use Gemini vision to crop speech bubbles out of panels
	RemoveText bool `yaml:"remove_text"`

	// Compositing worker pool size; 0 means auto-size from the host
	Workers int `yaml:"workers"`

	// Web server
	ListenAddr string `yaml:"listen_addr"`
	PublicURL  string `yaml:"public_url"`

	// Output directory for CLI runs
	OutputDir string `yaml:"output_dir"`
}

// Default returns the configuration used when no file overrides anything.
func Default() *Config {
	return &Config{
		Width:           1920,
		Height:          1080,
		DPI:             150,
		SecondsPerPanel: 3.0,
		GeminiModel:     "gemini-1.5-flash",
		GeminiTimeout:   120,
		RemoveText:      true,
		ListenAddr:      ":8080",
		OutputDir:       "output",
	}
}

// Load builds a Config from defaults, an optional YAML file and the
// environment. A missing config file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	// .env is a convenience for local runs; absence is fine
	_ = godotenv.Load()

	cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("PUBLIC_URL"); v != "" {
		cfg.PublicURL = v
	}
	if v := os.Getenv("WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}

	return cfg, nil
}
