// Package points produces the set of query points for a discovery run,
// either from a CSV file or from a synthetic grid around a center point.
package points

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"panoscraper/geo"
	"panoscraper/types"
)

// ErrNoCoordinateColumns is returned when a CSV file has no latitude or
// longitude column in its header row.
var ErrNoCoordinateColumns = errors.New("csv must have 'latitude' and 'longitude' columns")

// FromCSV reads query points from a CSV file. Column matching on the header
// row is case-insensitive; extra columns are ignored. Rows that fail numeric
// parsing are skipped. The result is deduplicated by rounding coordinates to
// 6 decimal places, keeping the first (unrounded) occurrence per key.
func FromCSV(path string) ([]types.GeoPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open points file %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("cannot read header of %s: %w", path, err)
	}

	latCol, lonCol := -1, -1
	for i, name := range header {
		if i == 0 {
			// Hand-edited files often carry a UTF-8 BOM.
			name = strings.TrimPrefix(name, "\ufeff")
		}
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "latitude":
			if latCol < 0 {
				latCol = i
			}
		case "longitude":
			if lonCol < 0 {
				lonCol = i
			}
		}
	}
	if latCol < 0 || lonCol < 0 {
		return nil, ErrNoCoordinateColumns
	}

	var pts []types.GeoPoint
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Record-level parse errors (bare quote and the like) only
			// spoil their own row; the reader resumes at the next one.
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				continue
			}
			break
		}
		if latCol >= len(row) || lonCol >= len(row) {
			continue
		}
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(row[latCol]), 64)
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(row[lonCol]), 64)
		if errLat != nil || errLon != nil {
			continue
		}
		pts = append(pts, types.GeoPoint{Lat: lat, Lon: lon})
	}

	return dedupe(pts), nil
}

// FromGrid builds a (resolution+1)x(resolution+1) lattice over a bounding box
// around center and keeps the lattice points within radiusKm of it. The box
// is sized with the coarse 1 degree ~ 70 km conversion; the overshoot is
// trimmed by the haversine filter. The lattice point nearest the center is
// always included, so the result is never empty.
func FromGrid(center types.GeoPoint, radiusKm float64, resolution int) []types.GeoPoint {
	topLeft := types.GeoPoint{Lat: center.Lat - radiusKm/70, Lon: center.Lon + radiusKm/70}
	bottomRight := types.GeoPoint{Lat: center.Lat + radiusKm/70, Lon: center.Lon - radiusKm/70}

	latDiff := topLeft.Lat - bottomRight.Lat
	lonDiff := topLeft.Lon - bottomRight.Lon

	pts := make([]types.GeoPoint, 0, (resolution+1)*(resolution+1))
	nearest := types.GeoPoint{}
	nearestDist := -1.0
	for x := 0; x <= resolution; x++ {
		for y := 0; y <= resolution; y++ {
			p := types.GeoPoint{
				Lat: bottomRight.Lat + float64(x)*latDiff/float64(resolution),
				Lon: bottomRight.Lon + float64(y)*lonDiff/float64(resolution),
			}
			d := geo.DistanceKm(p, center)
			if nearestDist < 0 || d < nearestDist {
				nearest, nearestDist = p, d
			}
			if d <= radiusKm {
				pts = append(pts, p)
			}
		}
	}
	// Coarse lattices (resolution 1) can place every point outside the
	// radius; fall back to the one nearest the center.
	if len(pts) == 0 && nearestDist >= 0 {
		pts = append(pts, nearest)
	}
	return pts
}

// dedupe drops points whose rounded key was already seen, keeping the first
// occurrence with its original precision.
func dedupe(pts []types.GeoPoint) []types.GeoPoint {
	seen := make(map[types.GeoPoint]struct{}, len(pts))
	out := make([]types.GeoPoint, 0, len(pts))
	for _, p := range pts {
		key := geo.RoundKey(p)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}
