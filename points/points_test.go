package points

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panoscraper/geo"
	"panoscraper/types"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "points.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFromCSVCaseInsensitiveColumns(t *testing.T) {
	path := writeCSV(t, "Name,LATITUDE,Longitude\nfoo,51.5,-0.12\nbar,48.85,2.35\n")
	pts, err := FromCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []types.GeoPoint{{Lat: 51.5, Lon: -0.12}, {Lat: 48.85, Lon: 2.35}}, pts)
}

func TestFromCSVMissingColumns(t *testing.T) {
	path := writeCSV(t, "lat,lng\n1,2\n")
	_, err := FromCSV(path)
	assert.ErrorIs(t, err, ErrNoCoordinateColumns)
}

func TestFromCSVSkipsMalformedRows(t *testing.T) {
	path := writeCSV(t, "latitude,longitude\n1.0,2.0\nnot,numeric\n3.0,4.0\n")
	pts, err := FromCSV(path)
	require.NoError(t, err)
	assert.Len(t, pts, 2)
}

func TestFromCSVDedupesByRoundedKey(t *testing.T) {
	// Second row differs only beyond the 6th decimal; third row differs at
	// the 6th decimal and must survive.
	path := writeCSV(t, "latitude,longitude\n1.2345678,2.0\n1.2345679,2.0\n1.234569,2.0\n")
	pts, err := FromCSV(path)
	require.NoError(t, err)
	require.Len(t, pts, 2)
	// The kept entry preserves its original unrounded value.
	assert.Equal(t, 1.2345678, pts[0].Lat)
}

func TestFromCSVHandlesBOM(t *testing.T) {
	path := writeCSV(t, "\ufefflatitude,longitude\n1.0,2.0\n")
	pts, err := FromCSV(path)
	require.NoError(t, err)
	assert.Len(t, pts, 1)
}

func TestFromCSVRecoversAfterBadRecord(t *testing.T) {
	// A bare quote spoils its own row only; rows after it still load.
	path := writeCSV(t, "latitude,longitude\n1.5,2.5\nbad\"quote,9\n3.5,4.5\n")
	pts, err := FromCSV(path)
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.Equal(t, types.GeoPoint{Lat: 1.5, Lon: 2.5}, pts[0])
	assert.Equal(t, types.GeoPoint{Lat: 3.5, Lon: 4.5}, pts[1])
}

func TestFromCSVIdempotent(t *testing.T) {
	path := writeCSV(t, "latitude,longitude\n1.5,2.5\n1.5,2.5\n9.25,-3.125\n")
	first, err := FromCSV(path)
	require.NoError(t, err)
	second, err := FromCSV(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFromGridStaysWithinRadius(t *testing.T) {
	center := types.GeoPoint{Lat: 52.0, Lon: 13.0}
	radius := 2.5
	pts := FromGrid(center, radius, 30)
	require.NotEmpty(t, pts)
	for _, p := range pts {
		assert.LessOrEqual(t, geo.DistanceKm(p, center), radius)
	}
}

func TestFromGridIncludesNearCenterPoint(t *testing.T) {
	center := types.GeoPoint{Lat: 10.0, Lon: 20.0}
	radius := 1.0
	// Even resolutions put the center itself on the lattice; odd ones leave
	// a point within one cell diagonal of it.
	for _, resolution := range []int{2, 3, 7, 50} {
		pts := FromGrid(center, radius, resolution)
		require.NotEmpty(t, pts, "resolution %d", resolution)

		best := geo.DistanceKm(pts[0], center)
		for _, p := range pts[1:] {
			if d := geo.DistanceKm(p, center); d < best {
				best = d
			}
		}
		cellDiagKm := 5 * radius / float64(resolution)
		assert.LessOrEqual(t, best, cellDiagKm, "resolution %d", resolution)
	}
}

func TestFromGridNeverEmpty(t *testing.T) {
	// A 1-cell lattice has only the four box corners, all outside the
	// radius; the nearest one is still returned.
	pts := FromGrid(types.GeoPoint{Lat: 10.0, Lon: 20.0}, 1.0, 1)
	assert.Len(t, pts, 1)
}
