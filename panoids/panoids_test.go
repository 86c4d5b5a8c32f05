package panoids

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panoscraper/types"
)

func intp(v int) *int { return &v }

func writeJSON(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "panoids.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadBareArray(t *testing.T) {
	recs, err := Load(writeJSON(t, `[{"panoid":"abc","lat":1.5,"lon":2.5,"year":2021,"month":6}]`))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "abc", recs[0].Panoid)
	assert.Equal(t, 1.5, recs[0].Lat)
	require.NotNil(t, recs[0].Year)
	assert.Equal(t, 2021, *recs[0].Year)
	assert.Equal(t, 6, *recs[0].Month)
}

func TestLoadWrappedShapes(t *testing.T) {
	for _, key := range []string{"panoids", "data", "items", "records"} {
		recs, err := Load(writeJSON(t, `{"`+key+`":[{"panoid":"x","lat":0.5,"lon":0.5}]}`))
		require.NoError(t, err, key)
		assert.Len(t, recs, 1, key)
	}
}

func TestLoadCoercesStringDates(t *testing.T) {
	recs, err := Load(writeJSON(t, `[{"panoid":"abc","lat":"1.25","lon":"2.75","year":"2019","month":"11"}]`))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 1.25, recs[0].Lat)
	assert.Equal(t, 2019, *recs[0].Year)
	assert.Equal(t, 11, *recs[0].Month)
}

func TestLoadRejectsGarbage(t *testing.T) {
	_, err := Load(writeJSON(t, `{"something":"else"}`))
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	in := []types.Panorama{
		{Panoid: "a", Lat: 1, Lon: 2, Year: intp(2020), Month: intp(3)},
		{Panoid: "b", Lat: 3, Lon: 4},
	}
	require.NoError(t, Save(path, in))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestFilterDated(t *testing.T) {
	recs := []types.Panorama{
		{Panoid: "dated", Lat: 1, Lon: 1, Year: intp(2021), Month: intp(4)},
		{Panoid: "year-only", Lat: 1, Lon: 1, Year: intp(2020)},
		{Panoid: "undated", Lat: 1, Lon: 1},
		{Panoid: "", Lat: 1, Lon: 1, Year: intp(2020)},
		{Panoid: "bad-month", Lat: 1, Lon: 1, Year: intp(2019), Month: intp(13)},
	}

	kept, stats := FilterDated(recs)
	require.Len(t, kept, 3)
	assert.Equal(t, 5, stats.Input)
	assert.Equal(t, 3, stats.Kept)
	assert.Equal(t, 1, stats.KeptYearMonth)
	assert.Equal(t, 2, stats.KeptYearOnly)
	assert.Equal(t, 1, stats.SkippedNoYear)
	assert.Equal(t, 1, stats.SkippedMissingFields)
	assert.Equal(t, 1, stats.DroppedBadMonth)

	// The invalid month is cleared but the record stays.
	assert.Equal(t, "bad-month", kept[2].Panoid)
	assert.Nil(t, kept[2].Month)
}

func TestFilterYear(t *testing.T) {
	recs := []types.Panorama{
		{Panoid: "a", Year: intp(2025)},
		{Panoid: "b", Year: intp(2024)},
		{Panoid: "c"},
		{Panoid: "d", Year: intp(2025)},
	}
	kept, dropped := FilterYear(recs, 2025)
	assert.Len(t, kept, 2)
	assert.Equal(t, 1, dropped)
}

func TestMonthString(t *testing.T) {
	assert.Equal(t, "07", MonthString(types.Panorama{Month: intp(7)}))
	assert.Equal(t, "12", MonthString(types.Panorama{Month: intp(12)}))
	assert.Equal(t, "00", MonthString(types.Panorama{}))
	assert.Equal(t, "00", MonthString(types.Panorama{Month: intp(42)}))
}

func TestDiscoveryOutputPath(t *testing.T) {
	assert.Equal(t, "panoids_123.json", DiscoveryOutputPath(123))
}
