// Package panoids reads, writes, and filters panorama record JSON files, the
// single artifact a discovery run produces and every later stage consumes.
package panoids

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"panoscraper/types"
)

// wrapperKeys are the common envelope keys tolerated around a record list.
var wrapperKeys = []string{"panoids", "data", "items", "records"}

// rawRecord tolerates the loose typing found in hand-produced JSON: years
// and months may arrive as numbers or digit strings.
type rawRecord struct {
	Panoid string `json:"panoid"`
	Lat    any    `json:"lat"`
	Lon    any    `json:"lon"`
	Year   any    `json:"year"`
	Month  any    `json:"month"`
}

// Load reads panorama records from a JSON file. The file may be a bare array
// or an object wrapping the array under a common key.
func Load(path string) ([]types.Panorama, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read panoids file %s: %w", path, err)
	}

	var raws []rawRecord
	if err := json.Unmarshal(data, &raws); err != nil {
		var wrapped map[string]json.RawMessage
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil {
			return nil, fmt.Errorf("unsupported JSON shape in %s: %w", path, err)
		}
		found := false
		for _, key := range wrapperKeys {
			if inner, ok := wrapped[key]; ok {
				if err := json.Unmarshal(inner, &raws); err != nil {
					return nil, fmt.Errorf("unsupported JSON shape in %s under %q: %w", path, key, err)
				}
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unsupported JSON shape in %s (expected a list)", path)
		}
	}

	recs := make([]types.Panorama, 0, len(raws))
	for _, r := range raws {
		p := types.Panorama{
			Panoid: r.Panoid,
			Year:   toInt(r.Year),
			Month:  toInt(r.Month),
		}
		if lat := toFloat(r.Lat); lat != nil {
			p.Lat = *lat
		}
		if lon := toFloat(r.Lon); lon != nil {
			p.Lon = *lon
		}
		recs = append(recs, p)
	}
	return recs, nil
}

// Save writes records as an indented JSON array.
func Save(path string, recs []types.Panorama) error {
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}

// DiscoveryOutputPath names the discovery artifact after the number of
// unique panoramas it holds.
func DiscoveryOutputPath(count int) string {
	return fmt.Sprintf("panoids_%d.json", count)
}

// FilterStats counts the outcomes of a FilterDated pass.
type FilterStats struct {
	Input                int
	Kept                 int
	KeptYearOnly         int
	KeptYearMonth        int
	SkippedNoYear        int
	SkippedMissingFields int
	DroppedBadMonth      int
}

// FilterDated keeps only records that carry a capture year. Records without
// a panoid are dropped as malformed. A month outside 1..12 is cleared while
// the record itself survives on the strength of its year.
func FilterDated(recs []types.Panorama) ([]types.Panorama, FilterStats) {
	stats := FilterStats{Input: len(recs)}
	out := make([]types.Panorama, 0, len(recs))

	for _, r := range recs {
		if r.Panoid == "" {
			stats.SkippedMissingFields++
			continue
		}
		if r.Year == nil {
			stats.SkippedNoYear++
			continue
		}
		if r.Month != nil && (*r.Month < 1 || *r.Month > 12) {
			r.Month = nil
			stats.DroppedBadMonth++
		}

		out = append(out, r)
		stats.Kept++
		if r.Month != nil {
			stats.KeptYearMonth++
		} else {
			stats.KeptYearOnly++
		}
	}
	return out, stats
}

// FilterYear keeps only records whose capture year matches. Records without
// a year are always dropped.
func FilterYear(recs []types.Panorama, year int) (kept []types.Panorama, droppedNoYear int) {
	kept = make([]types.Panorama, 0, len(recs))
	for _, r := range recs {
		if r.Year == nil {
			droppedNoYear++
			continue
		}
		if *r.Year == year {
			kept = append(kept, r)
		}
	}
	return kept, droppedNoYear
}

// MonthString renders a record's month as the two-digit directory component,
// "00" when unknown.
func MonthString(p types.Panorama) string {
	if p.Month == nil || *p.Month < 1 || *p.Month > 12 {
		return "00"
	}
	return fmt.Sprintf("%02d", *p.Month)
}

func toInt(v any) *int {
	switch n := v.(type) {
	case nil:
		return nil
	case bool:
		return nil
	case float64:
		if n == float64(int(n)) {
			i := int(n)
			return &i
		}
		return nil
	case string:
		s := strings.TrimSpace(n)
		i, err := strconv.Atoi(s)
		if err != nil {
			return nil
		}
		return &i
	default:
		return nil
	}
}

func toFloat(v any) *float64 {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		return &n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}
