// Package config loads mandelview settings from defaults, an optional YAML
// file, MANDELVIEW_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	mandel "github.com/marben/mandelview"
)

var ErrInvalid = errors.New("invalid configuration")

// EnvPrefix prefixes environment overrides, e.g. MANDELVIEW_IMAGE_WIDTH.
const EnvPrefix = "MANDELVIEW"

type ImageConfig struct {
	Width       int    `mapstructure:"width" yaml:"width"`
	Height      int    `mapstructure:"height" yaml:"height"`
	MaxIter     int    `mapstructure:"max_iter" yaml:"max_iter"`
	Palette     string `mapstructure:"palette" yaml:"palette"`
	Region      string `mapstructure:"region" yaml:"region"`
	Supersample int    `mapstructure:"supersample" yaml:"supersample"`
}

type BuildConfig struct {
	Workers    int `mapstructure:"workers" yaml:"workers"` // 0 = GOMAXPROCS
	BandHeight int `mapstructure:"band_height" yaml:"band_height"`
}

type ViewerConfig struct {
	TickRate         float64 `mapstructure:"tick_rate" yaml:"tick_rate"` // Hz
	ZoomFactor       float64 `mapstructure:"zoom_factor" yaml:"zoom_factor"`
	CancelSuperseded bool    `mapstructure:"cancel_superseded" yaml:"cancel_superseded"`
}

type ServerConfig struct {
	Addr      string `mapstructure:"addr" yaml:"addr"`
	StaticDir string `mapstructure:"static_dir" yaml:"static_dir"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

type Config struct {
	Image  ImageConfig  `mapstructure:"image" yaml:"image"`
	Build  BuildConfig  `mapstructure:"build" yaml:"build"`
	Viewer ViewerConfig `mapstructure:"viewer" yaml:"viewer"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("image.width", 800)
	v.SetDefault("image.height", 600)
	v.SetDefault("image.max_iter", 255)
	v.SetDefault("image.palette", "linear")
	v.SetDefault("image.region", "overview")
	v.SetDefault("image.supersample", 1)

	v.SetDefault("build.workers", 0)
	v.SetDefault("build.band_height", 1)

	v.SetDefault("viewer.tick_rate", 60.0)
	v.SetDefault("viewer.zoom_factor", 0.05)
	v.SetDefault("viewer.cancel_superseded", false)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.static_dir", "./static")

	v.SetDefault("log.level", "info")
}

// Load reads the configuration. path may be empty, in which case only
// defaults, environment and flags already bound to v are used.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and names.
func (c Config) Validate() error {
	switch {
	case c.Image.Width <= 0:
		return fmt.Errorf("%w: image.width must be positive", ErrInvalid)
	case c.Image.Height <= 0:
		return fmt.Errorf("%w: image.height must be positive", ErrInvalid)
	case c.Image.MaxIter <= 0:
		return fmt.Errorf("%w: image.max_iter must be positive", ErrInvalid)
	case c.Image.Supersample <= 0:
		return fmt.Errorf("%w: image.supersample must be positive", ErrInvalid)
	case c.Build.Workers < 0:
		return fmt.Errorf("%w: build.workers must not be negative", ErrInvalid)
	case c.Build.BandHeight <= 0:
		return fmt.Errorf("%w: build.band_height must be positive", ErrInvalid)
	case !(c.Viewer.TickRate > 0) || math.IsInf(c.Viewer.TickRate, 0):
		return fmt.Errorf("%w: viewer.tick_rate must be positive and finite", ErrInvalid)
	case !(c.Viewer.ZoomFactor > 0 && c.Viewer.ZoomFactor < 1):
		return fmt.Errorf("%w: viewer.zoom_factor must lie in (0, 1)", ErrInvalid)
	}
	if _, err := mandel.PaletteByName(c.Image.Palette); err != nil {
		return fmt.Errorf("%w: image.palette: %w", ErrInvalid, err)
	}
	if _, err := mandel.RegionByName(c.Image.Region); err != nil {
		return fmt.Errorf("%w: image.region: %w", ErrInvalid, err)
	}
	return nil
}

// TickPeriod is the time between two viewer ticks.
func (c ViewerConfig) TickPeriod() time.Duration {
	return time.Duration(float64(time.Second) / c.TickRate)
}

// PaletteFunc resolves the configured palette. Validate has checked the name.
func (c ImageConfig) PaletteFunc() mandel.Palette {
	p, err := mandel.PaletteByName(c.Palette)
	if err != nil {
		return mandel.DefaultPalette
	}
	return p
}

// Viewport returns the configured region's viewport.
func (c ImageConfig) Viewport() (mandel.Viewport, error) {
	r, err := mandel.RegionByName(c.Region)
	if err != nil {
		return mandel.Viewport{}, err
	}
	return r.Viewport()
}

// BuildOptions translates the build section into builder options.
func (c Config) BuildOptions() []mandel.BuildOption {
	return []mandel.BuildOption{
		mandel.WithWorkers(c.Build.Workers),
		mandel.WithBandHeight(c.Build.BandHeight),
		mandel.WithPalette(c.Image.PaletteFunc()),
	}
}

// Write dumps c as YAML.
func (c Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
