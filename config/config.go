// Package config loads the config.yaml that drives discovery, download, and
// projection runs.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"panoscraper/types"
)

// ConfigurationError marks a fatal problem with the run configuration. A run
// refuses to start on one of these; nothing network-facing happens first.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// Sides selects which cube faces the projection stage emits.
type Sides struct {
	Left  bool `mapstructure:"left"`
	Front bool `mapstructure:"front"`
	Back  bool `mapstructure:"back"`
	Right bool `mapstructure:"right"`
}

// Any reports whether at least one side is enabled.
func (s Sides) Any() bool {
	return s.Left || s.Front || s.Right || s.Back
}

// Enabled returns the side flags keyed by face name.
func (s Sides) Enabled() map[string]bool {
	return map[string]bool{
		"left":  s.Left,
		"front": s.Front,
		"right": s.Right,
		"back":  s.Back,
	}
}

// Config holds every recognized option.
type Config struct {
	Center        types.GeoPoint
	RadiusKm      float64
	Resolution    int
	SearchRadiusM int
	Concurrency   int
	PrintEvery    int
	CSVPoints     string

	ProjectedResolution int
	ProjectionSides     Sides

	TileDir  string
	PanoDir  string
	CubeDir  string
	Database string

	// RequestsPerSec caps the tile download rate; 0 disables the limiter.
	RequestsPerSec float64
}

// Load reads configuration from the given YAML file, applying defaults for
// everything the file leaves out.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("center", []float64{0, 0})
	v.SetDefault("radius_km", 1.0)
	v.SetDefault("resolution", 50)
	v.SetDefault("search_radius_m", 10)
	v.SetDefault("concurrency", 50)
	v.SetDefault("print_every", 500)
	v.SetDefault("csv_points", "")
	v.SetDefault("projected_resolution", 512)
	v.SetDefault("sides.left", true)
	v.SetDefault("sides.front", true)
	v.SetDefault("sides.right", true)
	v.SetDefault("sides.back", true)
	v.SetDefault("tile_dir", "tiles")
	v.SetDefault("pano_dir", "panoramas")
	v.SetDefault("cube_dir", "cube_pano")
	v.SetDefault("database", "panoramas.db")
	v.SetDefault("requests_per_sec", 0.0)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}

	center, err := toGeoPoint(v.Get("center"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Center:              center,
		RadiusKm:            v.GetFloat64("radius_km"),
		Resolution:          v.GetInt("resolution"),
		SearchRadiusM:       v.GetInt("search_radius_m"),
		Concurrency:         v.GetInt("concurrency"),
		PrintEvery:          v.GetInt("print_every"),
		CSVPoints:           v.GetString("csv_points"),
		ProjectedResolution: v.GetInt("projected_resolution"),
		TileDir:             v.GetString("tile_dir"),
		PanoDir:             v.GetString("pano_dir"),
		CubeDir:             v.GetString("cube_dir"),
		Database:            v.GetString("database"),
		RequestsPerSec:      v.GetFloat64("requests_per_sec"),
	}
	if err := v.UnmarshalKey("sides", &cfg.ProjectionSides); err != nil {
		return nil, fmt.Errorf("cannot parse sides: %w", err)
	}

	if cfg.RadiusKm <= 0 {
		return nil, &ConfigurationError{Reason: "radius_km must be positive"}
	}
	if cfg.Resolution < 1 {
		return nil, &ConfigurationError{Reason: "resolution must be at least 1"}
	}
	if cfg.Concurrency < 1 {
		return nil, &ConfigurationError{Reason: "concurrency must be at least 1"}
	}
	if cfg.ProjectedResolution < 1 {
		return nil, &ConfigurationError{Reason: "projected_resolution must be at least 1"}
	}

	return cfg, nil
}

// toGeoPoint converts the YAML center value, which arrives as a generic
// slice, into a coordinate pair.
func toGeoPoint(raw any) (types.GeoPoint, error) {
	badCenter := &ConfigurationError{Reason: "center must be a [lat, lon] pair"}

	switch vals := raw.(type) {
	case []float64:
		if len(vals) != 2 {
			return types.GeoPoint{}, badCenter
		}
		return types.GeoPoint{Lat: vals[0], Lon: vals[1]}, nil
	case []any:
		if len(vals) != 2 {
			return types.GeoPoint{}, badCenter
		}
		var coords [2]float64
		for i, item := range vals {
			switch n := item.(type) {
			case float64:
				coords[i] = n
			case float32:
				coords[i] = float64(n)
			case int:
				coords[i] = float64(n)
			case int64:
				coords[i] = float64(n)
			default:
				return types.GeoPoint{}, badCenter
			}
		}
		return types.GeoPoint{Lat: coords[0], Lon: coords[1]}, nil
	default:
		return types.GeoPoint{}, badCenter
	}
}
