package download

import "fmt"

// The provider serves zoom-5 panoramas as a 26x13 grid of 512 px tiles.
const (
	tileZoom = 5
	tileCols = 26
	tileRows = 13
)

const defaultTileBaseURL = "https://cbk0.google.com/cbk"

// Tile identifies one tile of a panorama: its grid position, the local file
// it is saved to, and the URL it is fetched from.
type Tile struct {
	X, Y  int
	Fname string
	URL   string
}

// TilesInfo enumerates every tile of a panorama at the download zoom level.
func TilesInfo(panoid, baseURL string) []Tile {
	if baseURL == "" {
		baseURL = defaultTileBaseURL
	}
	tiles := make([]Tile, 0, tileCols*tileRows)
	for x := 0; x < tileCols; x++ {
		for y := 0; y < tileRows; y++ {
			tiles = append(tiles, Tile{
				X:     x,
				Y:     y,
				Fname: fmt.Sprintf("%s_%dx%d.jpg", panoid, x, y),
				URL: fmt.Sprintf("%s?output=tile&panoid=%s&zoom=%d&x=%d&y=%d",
					baseURL, panoid, tileZoom, x, y),
			})
		}
	}
	return tiles
}
