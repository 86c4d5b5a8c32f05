package lookup

import (
	"regexp"
	"strconv"

	"panoscraper/types"
)

// The geolocation endpoint replies with a JS callback payload rather than
// clean JSON. Panorama ids with their coordinates, and the capture dates,
// are pulled out positionally.
var (
	panoPattern = regexp.MustCompile(`\[[0-9]+,"(.+?)"\].+?\[\[null,null,(-?[0-9]+\.[0-9]+),(-?[0-9]+\.[0-9]+)`)
	datePattern = regexp.MustCompile(`([0-9]?[0-9]?[0-9])?,?\[(20[0-9][0-9]),([0-9]+)\]`)
)

// parsePanoramas extracts panorama records from a raw response body.
// The response lists one dated entry per historical capture; the last date
// belongs to the first (most recent) panorama and the remaining dates apply
// in reverse order to the tail of the list. Panoramas beyond the dated ones
// carry no year or month.
func parsePanoramas(body string) []types.Panorama {
	var pans []types.Panorama
	seen := make(map[types.Panorama]struct{})
	for _, m := range panoPattern.FindAllStringSubmatch(body, -1) {
		lat, errLat := strconv.ParseFloat(m[2], 64)
		lon, errLon := strconv.ParseFloat(m[3], 64)
		if errLat != nil || errLon != nil {
			continue
		}
		p := types.Panorama{Panoid: m[1], Lat: lat, Lon: lon}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		pans = append(pans, p)
	}
	if len(pans) == 0 {
		return nil
	}

	var dates [][2]int
	for _, m := range datePattern.FindAllStringSubmatch(body, -1) {
		year, errY := strconv.Atoi(m[2])
		month, errM := strconv.Atoi(m[3])
		if errY != nil || errM != nil || month < 1 || month > 12 {
			continue
		}
		dates = append(dates, [2]int{year, month})
	}
	if len(dates) == 0 {
		return pans
	}

	last := dates[len(dates)-1]
	pans[0].Year = intPtr(last[0])
	pans[0].Month = intPtr(last[1])

	rest := dates[:len(dates)-1]
	for i := range rest {
		d := rest[len(rest)-1-i]
		idx := len(pans) - 1 - i
		if idx <= 0 {
			break
		}
		pans[idx].Year = intPtr(d[0])
		pans[idx].Month = intPtr(d[1])
	}

	return pans
}

func intPtr(v int) *int { return &v }
