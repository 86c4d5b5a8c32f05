package panoids

import (
	"strconv"
	"strings"

	"panoscraper/types"
)

// PanoFileName is the stitched panorama filename for a record:
// <lat>_<lon>_<panoid>.jpg. The projection and prune stages parse this
// layout back out of directory listings.
func PanoFileName(p types.Panorama) string {
	return formatCoord(p.Lat) + "_" + formatCoord(p.Lon) + "_" + p.Panoid + ".jpg"
}

// PanoidFromFileName extracts the panoid from a stitched panorama filename.
// The panoid itself may contain underscores, so everything past the second
// separator belongs to it. Returns "" for names that don't follow the
// layout.
func PanoidFromFileName(name string) string {
	stem := strings.TrimSuffix(name, ".jpg")
	parts := strings.SplitN(stem, "_", 3)
	if len(parts) < 3 {
		return ""
	}
	return parts[2]
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
