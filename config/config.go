// Package config loads the scene settings used by the matext demo.
//
// Settings are TOML. Fields missing from the file keep the values of
// [Default]; unknown keys are rejected.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/matext"
	"github.com/gogpu/matext/material"
)

// ErrInvalid wraps every decode and validation error.
var ErrInvalid = errors.New("config: invalid")

// Vec3 is an x, y, z triple.
type Vec3 [3]float32

// Config holds the demo scene settings.
type Config struct {
	Asset     Asset              `toml:"asset"`
	Extension material.Extension `toml:"extension"`

	// Policy is "once" or "every_tick".
	Policy matext.Policy `toml:"policy"`

	// MaxTicks bounds the demo loop.
	MaxTicks int `toml:"max_ticks"`

	// LogLevel is a slog level name: debug, info, warn or error.
	LogLevel slog.Level `toml:"log_level"`

	Camera Camera `toml:"camera"`
	Light  Light  `toml:"light"`
}

// Asset names the composite asset to load.
type Asset struct {
	Name string `toml:"name"`

	// Root is the directory manifests are resolved against.
	Root string `toml:"root"`

	CacheSize int `toml:"cache_size"`
	Workers   int `toml:"workers"`
}

// Camera is a look-at camera.
type Camera struct {
	Position Vec3 `toml:"position"`
	Target   Vec3 `toml:"target"`
}

// Light is a directional light.
type Light struct {
	Illuminance float32 `toml:"illuminance"`
	Shadows     bool    `toml:"shadows"`
	Rotation    Euler   `toml:"rotation"`
}

// Euler is a rotation given as angles in degrees applied in Order.
type Euler struct {
	// Order is the axis order. Only "YXZ" is supported.
	Order  string `toml:"order"`
	Angles Vec3   `toml:"angles"`
}

// Direction returns the unit vector the light shines along: the rotation
// applied to -Z.
func (l Light) Direction() Vec3 {
	a := float64(l.Rotation.Angles[0]) * math.Pi / 180
	b := float64(l.Rotation.Angles[1]) * math.Pi / 180
	return Vec3{
		float32(-math.Sin(a) * math.Cos(b)),
		float32(math.Sin(b)),
		float32(-math.Cos(a) * math.Cos(b)),
	}
}

// Default returns the settings of the stock demo scene.
func Default() Config {
	return Config{
		Asset: Asset{
			Name: "models/ship.toml",
			Root: "assets",
		},
		Extension: material.DefaultExtension(),
		Policy:    matext.PolicyOnce,
		MaxTicks:  600,
		LogLevel:  slog.LevelInfo,
		Camera: Camera{
			Position: Vec3{20, 20, 20},
		},
		Light: Light{
			Illuminance: 1000,
			Shadows:     true,
			Rotation:    Euler{Order: "YXZ", Angles: Vec3{150, -40, 0}},
		},
	}
}

// Load reads settings from the TOML file at path.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	c, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Decode reads TOML settings from r on top of Default.
func Decode(r io.Reader) (Config, error) {
	c := Default()
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&c); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Save writes c to path as TOML.
func (c Config) Save(path string) error {
	b, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Validate checks ranges that decoding cannot.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Asset.Name) == "" {
		errs = append(errs, errors.New("asset.name is empty"))
	}
	if s := c.Extension.TintStrength; s < 0 || s > 1 {
		errs = append(errs, fmt.Errorf("extension.tint_strength %v outside [0, 1]", s))
	}
	if w := c.Extension.OutlineWidth; w < 0 || w > 1 {
		errs = append(errs, fmt.Errorf("extension.outline_width %v outside [0, 1]", w))
	}
	if c.MaxTicks <= 0 {
		errs = append(errs, fmt.Errorf("max_ticks %d must be positive", c.MaxTicks))
	}
	if c.Light.Illuminance < 0 {
		errs = append(errs, fmt.Errorf("light.illuminance %v is negative", c.Light.Illuminance))
	}
	if o := strings.ToUpper(c.Light.Rotation.Order); o != "YXZ" {
		errs = append(errs, fmt.Errorf("light.rotation.order %q not supported", c.Light.Rotation.Order))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}
