package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should be valid: %v", err)
	}
	if cfg.Sensor.Width != 36 || cfg.Sensor.Height != 24 {
		t.Errorf("Expected full frame sensor, got %+v", cfg.Sensor)
	}
	if cfg.Viewport.MaxSize != 1280 {
		t.Errorf("Expected max size 1280, got %d", cfg.Viewport.MaxSize)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `sensor:
  width: 23.5
  height: 15.6
viewport:
  max_size: 800
wallpaper:
  format: webp
  quality: 75
  lossless: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Sensor.Width != 23.5 || cfg.Sensor.Height != 15.6 {
		t.Errorf("Unexpected sensor %+v", cfg.Sensor)
	}
	if cfg.Viewport.MaxSize != 800 {
		t.Errorf("Expected max size 800, got %d", cfg.Viewport.MaxSize)
	}
	if cfg.Wallpaper.Format != "webp" || cfg.Wallpaper.Quality != 75 || !cfg.Wallpaper.Lossless {
		t.Errorf("Unexpected wallpaper config %+v", cfg.Wallpaper)
	}
	// Unset keys keep their defaults
	if cfg.Wallpaper.OutputDir != "." {
		t.Errorf("Expected default output dir, got %q", cfg.Wallpaper.OutputDir)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("sensor:\n  width: 36\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FSPY_SENSOR_WIDTH", "24")
	t.Setenv("FSPY_SENSOR_HEIGHT", "36")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Sensor.Width != 24 || cfg.Sensor.Height != 36 {
		t.Errorf("Expected env to override sensor, got %+v", cfg.Sensor)
	}
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("wallpaper:\n  quality: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected validation error for quality 0")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for an explicit missing file")
	}
}

func TestSaveToFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := Default()
	cfg.Sensor.Width = 22.3
	cfg.Wallpaper.Format = "jpg"
	cfg.Catalog.Path = "/tmp/catalog.db"

	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("Round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero sensor width", func(c *Config) { c.Sensor.Width = 0 }},
		{"negative sensor height", func(c *Config) { c.Sensor.Height = -1 }},
		{"zero max size", func(c *Config) { c.Viewport.MaxSize = 0 }},
		{"bad format", func(c *Config) { c.Wallpaper.Format = "bmp" }},
		{"quality too high", func(c *Config) { c.Wallpaper.Quality = 101 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}

	cfg := Default()
	cfg.Sensor.Height = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("Zero sensor height is allowed: %v", err)
	}
}
