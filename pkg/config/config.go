// Package config holds the render settings shared by the CLI and the
// preview server. Settings are read from TOML and then overridden by flags.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/df07/go-diffuse-pathtracer/pkg/core"
)

// DefaultFile is the config file picked up from the working directory
const DefaultFile = "render.toml"

// RenderConfig describes one render
type RenderConfig struct {
	Width           int    `toml:"width"`
	Height          int    `toml:"height"`
	SamplesPerPixel int    `toml:"samples_per_pixel"`
	MaxDepth        int    `toml:"max_depth"`
	Seed            uint64 `toml:"seed"`
	Workers         int    `toml:"workers"`   // 0 = one per CPU, 1 = reference row-by-row render
	TileSize        int    `toml:"tile_size"` // Tile edge for parallel renders
	Passes          int    `toml:"passes"`
	Output          string `toml:"output"` // Local path or bucket URL
	Scene           string `toml:"scene"`  // Built-in ID, file:<name> or a .yaml path
	ScenesDir       string `toml:"scenes_dir"`

	// Optional overrides of the scene's own sky and sun
	Sky *[3]float64 `toml:"sky,omitempty"`
	Sun *[3]float64 `toml:"sun,omitempty"`
}

// Default returns the settings of a full-size render of the default scene
func Default() RenderConfig {
	return RenderConfig{
		Width:           1920,
		Height:          1080,
		SamplesPerPixel: 100,
		MaxDepth:        70,
		Seed:            42,
		Workers:         1,
		TileSize:        64,
		Passes:          1,
		Output:          "rendered_image.png",
		Scene:           "default",
		ScenesDir:       "scenes",
	}
}

// Load reads a TOML file on top of the defaults. Keys missing from the file
// keep their default values; unknown keys are an error.
func Load(path string) (RenderConfig, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "unable to open config %v", path)
	}
	defer f.Close()

	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return cfg, errors.Errorf("config %v: %s", path, strict.String())
		}
		return cfg, errors.Wrapf(err, "unable to parse config %v", path)
	}
	return cfg, nil
}

// Save writes the config as TOML
func (c RenderConfig) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "unable to encode config")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "unable to write config %v", path)
}

// Validate checks that the config describes a renderable image
func (c RenderConfig) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return errors.Errorf("image size must be positive, got %dx%d", c.Width, c.Height)
	case c.SamplesPerPixel <= 0:
		return errors.Errorf("samples per pixel must be positive, got %d", c.SamplesPerPixel)
	case c.MaxDepth < 0:
		return errors.Errorf("max depth cannot be negative, got %d", c.MaxDepth)
	case c.Workers < 0:
		return errors.Errorf("workers cannot be negative, got %d", c.Workers)
	case c.TileSize <= 0:
		return errors.Errorf("tile size must be positive, got %d", c.TileSize)
	case c.Passes <= 0:
		return errors.Errorf("passes must be positive, got %d", c.Passes)
	case c.Passes > c.SamplesPerPixel:
		return errors.Errorf("%d samples per pixel cannot be spread over %d passes", c.SamplesPerPixel, c.Passes)
	case c.Output == "":
		return errors.New("output must be set")
	case c.Scene == "":
		return errors.New("scene must be set")
	}
	if c.Sun != nil && *c.Sun == [3]float64{} {
		return errors.New("sun direction cannot be zero")
	}
	return nil
}

// Reference reports whether the render runs as a single row-by-row pass
// with one sampler
func (c RenderConfig) Reference() bool {
	return c.Workers == 1 && c.Passes == 1
}

// SkyColor returns the sky override, if any
func (c RenderConfig) SkyColor() (core.Color, bool) {
	if c.Sky == nil {
		return core.Color{}, false
	}
	return core.NewColor(c.Sky[0], c.Sky[1], c.Sky[2]), true
}

// SunDirection returns the sun override, if any
func (c RenderConfig) SunDirection() (core.Vec3, bool) {
	if c.Sun == nil {
		return core.Vec3{}, false
	}
	return core.NewVec3(c.Sun[0], c.Sun[1], c.Sun[2]), true
}

// ParseTriple parses "x,y,z" as used by the -sky and -sun flags
func ParseTriple(s string) ([3]float64, error) {
	var out [3]float64
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return out, errors.Errorf("expected three comma separated values, got %q", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return out, errors.Wrapf(err, "invalid component %q", p)
		}
		out[i] = v
	}
	return out, nil
}
