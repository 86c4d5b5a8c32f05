package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "center: [52.52, 13.405]\n"))
	require.NoError(t, err)

	assert.Equal(t, 52.52, cfg.Center.Lat)
	assert.Equal(t, 13.405, cfg.Center.Lon)
	assert.Equal(t, 1.0, cfg.RadiusKm)
	assert.Equal(t, 50, cfg.Resolution)
	assert.Equal(t, 10, cfg.SearchRadiusM)
	assert.Equal(t, 50, cfg.Concurrency)
	assert.Equal(t, 500, cfg.PrintEvery)
	assert.Equal(t, "", cfg.CSVPoints)
	assert.Equal(t, 512, cfg.ProjectedResolution)
	assert.True(t, cfg.ProjectionSides.Any())
	assert.Equal(t, "panoramas", cfg.PanoDir)
}

func TestLoadReadsAllKeys(t *testing.T) {
	cfg, err := Load(writeConfig(t, `center: [1.5, 2.5]
radius_km: 3.0
resolution: 20
search_radius_m: 50
concurrency: 8
print_every: 100
csv_points: my_points.csv
projected_resolution: 256
sides:
  left: false
  front: true
  right: false
  back: false
pano_dir: out/panos
requests_per_sec: 4.5
`))
	require.NoError(t, err)

	assert.Equal(t, 3.0, cfg.RadiusKm)
	assert.Equal(t, 20, cfg.Resolution)
	assert.Equal(t, 50, cfg.SearchRadiusM)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, 100, cfg.PrintEvery)
	assert.Equal(t, "my_points.csv", cfg.CSVPoints)
	assert.Equal(t, 256, cfg.ProjectedResolution)
	assert.False(t, cfg.ProjectionSides.Left)
	assert.True(t, cfg.ProjectionSides.Front)
	assert.True(t, cfg.ProjectionSides.Any())
	assert.Equal(t, "out/panos", cfg.PanoDir)
	assert.Equal(t, 4.5, cfg.RequestsPerSec)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"short center":    "center: [1.0]\n",
		"zero radius":     "radius_km: 0\n",
		"zero resolution": "resolution: 0\n",
		"no workers":      "concurrency: 0\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestSidesEnabled(t *testing.T) {
	s := Sides{Front: true, Back: true}
	m := s.Enabled()
	assert.True(t, m["front"])
	assert.True(t, m["back"])
	assert.False(t, m["left"])
	assert.False(t, m["right"])
	assert.False(t, Sides{}.Any())
}
