package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/menta2k/fspy-importer/pkg/types"
)

const (
	// AppName is used for config and data directories
	AppName = "fspy"
	// EnvPrefix prefixes environment overrides, e.g. FSPY_SENSOR_WIDTH
	EnvPrefix = "FSPY"
)

// Config holds the application configuration
type Config struct {
	Sensor    types.SensorSize `mapstructure:"sensor" json:"sensor"`
	Viewport  ViewportConfig   `mapstructure:"viewport" json:"viewport"`
	Wallpaper WallpaperConfig  `mapstructure:"wallpaper" json:"wallpaper"`
	Catalog   CatalogConfig    `mapstructure:"catalog" json:"catalog"`
}

// ViewportConfig holds configuration for the camera view derived from a project
type ViewportConfig struct {
	// MaxSize is the length in pixels of the longer side of the view
	MaxSize int `mapstructure:"max_size" json:"max_size"`
}

// WallpaperConfig holds configuration for exporting the reference photo
type WallpaperConfig struct {
	Format    string `mapstructure:"format" json:"format"`
	Quality   int    `mapstructure:"quality" json:"quality"`
	Lossless  bool   `mapstructure:"lossless" json:"lossless"`
	OutputDir string `mapstructure:"output_dir" json:"output_dir"`
	// Raw writes the photo bytes exactly as stored instead of re-encoding
	Raw bool `mapstructure:"raw" json:"raw"`
}

// CatalogConfig holds configuration for the imported project catalog
type CatalogConfig struct {
	Path string `mapstructure:"path" json:"path"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Sensor: types.FullFrame,
		Viewport: ViewportConfig{
			MaxSize: 1280,
		},
		Wallpaper: WallpaperConfig{
			Format:    "png",
			Quality:   90,
			Lossless:  false,
			OutputDir: ".",
		},
		Catalog: CatalogConfig{
			Path: GetCatalogPath(),
		},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault("sensor.width", d.Sensor.Width)
	v.SetDefault("sensor.height", d.Sensor.Height)
	v.SetDefault("viewport.max_size", d.Viewport.MaxSize)
	v.SetDefault("wallpaper.format", d.Wallpaper.Format)
	v.SetDefault("wallpaper.quality", d.Wallpaper.Quality)
	v.SetDefault("wallpaper.lossless", d.Wallpaper.Lossless)
	v.SetDefault("wallpaper.output_dir", d.Wallpaper.OutputDir)
	v.SetDefault("wallpaper.raw", d.Wallpaper.Raw)
	v.SetDefault("catalog.path", d.Catalog.Path)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from filename, or from the default config
// directory when filename is empty. A missing default config file is not an
// error. Environment variables override file values.
func Load(filename string) (*Config, error) {
	v := newViper()

	if filename != "" {
		v.SetConfigFile(filename)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(GetConfigDir())
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// SaveToFile saves configuration to a file. The encoding follows the file
// extension (yaml, toml or json).
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.Set("sensor.width", c.Sensor.Width)
	v.Set("sensor.height", c.Sensor.Height)
	v.Set("viewport.max_size", c.Viewport.MaxSize)
	v.Set("wallpaper.format", c.Wallpaper.Format)
	v.Set("wallpaper.quality", c.Wallpaper.Quality)
	v.Set("wallpaper.lossless", c.Wallpaper.Lossless)
	v.Set("wallpaper.output_dir", c.Wallpaper.OutputDir)
	v.Set("wallpaper.raw", c.Wallpaper.Raw)
	v.Set("catalog.path", c.Catalog.Path)

	if err := v.WriteConfigAs(filename); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Sensor.Width <= 0 {
		return fmt.Errorf("sensor.width must be positive")
	}

	if c.Sensor.Height < 0 {
		return fmt.Errorf("sensor.height must not be negative")
	}

	if c.Viewport.MaxSize < 1 {
		return fmt.Errorf("viewport.max_size must be positive")
	}

	switch strings.ToLower(c.Wallpaper.Format) {
	case "jpg", "jpeg", "png", "webp":
	default:
		return fmt.Errorf("wallpaper.format must be one of jpg, png, webp (got %q)", c.Wallpaper.Format)
	}

	if c.Wallpaper.Quality < 1 || c.Wallpaper.Quality > 100 {
		return fmt.Errorf("wallpaper.quality must be between 1 and 100")
	}

	return nil
}

// GetConfigDir returns the default configuration directory
func GetConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, AppName)
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// GetCatalogPath returns the default catalog database path
func GetCatalogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./catalog.db"
	}
	return filepath.Join(home, ".local", "share", AppName, "catalog.db")
}
