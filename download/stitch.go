package download

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"
)

// stitchTiles assembles downloaded tiles from tileDir into one panorama JPEG
// at panoPath. The canvas size is derived from the tile grid and the decoded
// tile dimensions, so every tile must already be present on disk.
func stitchTiles(tiles []Tile, tileDir, panoPath string) error {
	if len(tiles) == 0 {
		return fmt.Errorf("no tiles to stitch")
	}

	cols, rows := 0, 0
	for _, t := range tiles {
		if t.X+1 > cols {
			cols = t.X + 1
		}
		if t.Y+1 > rows {
			rows = t.Y + 1
		}
	}

	var canvas *image.RGBA
	tileW, tileH := 0, 0

	for _, t := range tiles {
		img, err := decodeTile(filepath.Join(tileDir, t.Fname))
		if err != nil {
			return fmt.Errorf("cannot decode tile %s: %w", t.Fname, err)
		}
		if canvas == nil {
			tileW = img.Bounds().Dx()
			tileH = img.Bounds().Dy()
			canvas = image.NewRGBA(image.Rect(0, 0, cols*tileW, rows*tileH))
		}
		xdraw.Copy(canvas, image.Pt(t.X*tileW, t.Y*tileH), img, img.Bounds(), xdraw.Src, nil)
	}

	out, err := os.Create(panoPath)
	if err != nil {
		return fmt.Errorf("cannot create panorama %s: %w", panoPath, err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, canvas, nil); err != nil {
		return fmt.Errorf("cannot encode panorama %s: %w", panoPath, err)
	}
	return nil
}

func decodeTile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

// deleteTiles removes the per-tile files once the panorama is stitched.
func deleteTiles(tiles []Tile, tileDir string) {
	for _, t := range tiles {
		os.Remove(filepath.Join(tileDir, t.Fname))
	}
}
