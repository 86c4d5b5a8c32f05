// Package project converts stitched equirectangular panoramas into the four
// horizontal cube faces (left, front, right, back).
package project

import (
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"

	"panoscraper/panoids"
	"panoscraper/types"
)

// faceYaw is the horizontal view direction of each face, relative to the
// panorama center.
var faceYaw = map[string]float64{
	"left":  -math.Pi / 2,
	"front": 0,
	"right": math.Pi / 2,
	"back":  math.Pi,
}

// FaceOrder is the emission order of the side faces.
var FaceOrder = []string{"left", "front", "right", "back"}

// Projector renders cube faces for panoramas that carry a capture year.
type Projector struct {
	FaceW   int             // output face width and height in pixels
	Sides   map[string]bool // which faces to emit
	CubeDir string          // output root, faces land in CubeDir/<year>/<month>/
	Logger  *zap.Logger
}

func (pr *Projector) logger() *zap.Logger {
	if pr.Logger == nil {
		return zap.NewNop()
	}
	return pr.Logger
}

// outputBase is the shared filename stem of all faces of one panorama:
// <year>_<month>_<lat>_<lon>_<panoid>.
func (pr *Projector) outputBase(rec types.Panorama) (dir, base string, err error) {
	if rec.Year == nil {
		return "", "", fmt.Errorf("missing year for panoid %s", rec.Panoid)
	}
	y := strconv.Itoa(*rec.Year)
	m := panoids.MonthString(rec)
	stem := strings.TrimSuffix(panoids.PanoFileName(rec), ".jpg")
	return filepath.Join(pr.CubeDir, y, m), y + "_" + m + "_" + stem, nil
}

// OutputsExist reports whether every enabled face of the record is already
// on disk, which makes an interrupted run resumable after the source
// panoramas were deleted.
func (pr *Projector) OutputsExist(rec types.Panorama) bool {
	dir, base, err := pr.outputBase(rec)
	if err != nil {
		return false
	}
	for side, enabled := range pr.Sides {
		if !enabled {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, base+"_"+side+".jpg")); err != nil {
			return false
		}
	}
	return true
}

// ProjectFile renders the enabled cube faces of one panorama JPEG.
func (pr *Projector) ProjectFile(panoPath string, rec types.Panorama) error {
	dir, base, err := pr.outputBase(rec)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}

	src, err := loadRGBA(panoPath)
	if err != nil {
		return fmt.Errorf("cannot load panorama %s: %w", panoPath, err)
	}

	for _, side := range FaceOrder {
		if !pr.Sides[side] {
			continue
		}
		face := renderFace(src, faceYaw[side], pr.FaceW)
		outPath := filepath.Join(dir, base+"_"+side+".jpg")
		if err := saveJPEG(outPath, face); err != nil {
			return err
		}
		pr.logger().Debug("projected face",
			zap.String("panoid", rec.Panoid),
			zap.String("side", side),
			zap.String("path", outPath),
		)
	}
	return nil
}

// renderFace samples one 90-degree field-of-view side face out of the
// equirectangular source, looking along yaw on the horizon.
func renderFace(src *image.RGBA, yaw float64, faceW int) *image.RGBA {
	face := image.NewRGBA(image.Rect(0, 0, faceW, faceW))
	w := src.Bounds().Dx()
	h := src.Bounds().Dy()

	sinYaw, cosYaw := math.Sincos(yaw)

	for py := 0; py < faceW; py++ {
		b := 2*(float64(py)+0.5)/float64(faceW) - 1
		for px := 0; px < faceW; px++ {
			a := 2*(float64(px)+0.5)/float64(faceW) - 1

			// View ray on the unit cube, rotated into world space.
			wx := a*cosYaw + sinYaw
			wz := -a*sinYaw + cosYaw
			wy := b

			// Longitude is zero at the pano center; latitude grows downward.
			theta := math.Atan2(wx, wz)
			phi := math.Atan2(wy, math.Hypot(wx, wz))

			u := (theta/(2*math.Pi) + 0.5) * float64(w)
			v := (phi/math.Pi + 0.5) * float64(h)

			r, g, bl, al := sampleBilinear(src, u, v)
			off := face.PixOffset(px, py)
			face.Pix[off+0] = r
			face.Pix[off+1] = g
			face.Pix[off+2] = bl
			face.Pix[off+3] = al
		}
	}
	return face
}

// sampleBilinear samples the source at fractional coordinates, wrapping
// horizontally (the panorama is a full circle) and clamping vertically.
func sampleBilinear(src *image.RGBA, u, v float64) (r, g, b, a uint8) {
	w := src.Bounds().Dx()
	h := src.Bounds().Dy()

	uf := u - 0.5
	vf := v - 0.5
	x0 := int(math.Floor(uf))
	y0 := int(math.Floor(vf))
	fx := uf - float64(x0)
	fy := vf - float64(y0)

	wrap := func(x int) int {
		x %= w
		if x < 0 {
			x += w
		}
		return x
	}
	clamp := func(y int) int {
		if y < 0 {
			return 0
		}
		if y >= h {
			return h - 1
		}
		return y
	}

	px := func(x, y int) (float64, float64, float64, float64) {
		off := src.PixOffset(wrap(x), clamp(y))
		return float64(src.Pix[off]), float64(src.Pix[off+1]), float64(src.Pix[off+2]), float64(src.Pix[off+3])
	}

	r00, g00, b00, a00 := px(x0, y0)
	r10, g10, b10, a10 := px(x0+1, y0)
	r01, g01, b01, a01 := px(x0, y0+1)
	r11, g11, b11, a11 := px(x0+1, y0+1)

	lerp2 := func(c00, c10, c01, c11 float64) uint8 {
		top := c00 + (c10-c00)*fx
		bot := c01 + (c11-c01)*fx
		return uint8(math.Round(top + (bot-top)*fy))
	}
	return lerp2(r00, r10, r01, r11), lerp2(g00, g10, g01, g11),
		lerp2(b00, b10, b01, b11), lerp2(a00, a10, a01, a11)
}

func loadRGBA(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}

	rgba := image.NewRGBA(img.Bounds())
	xdraw.Copy(rgba, img.Bounds().Min, img, img.Bounds(), xdraw.Src, nil)
	return rgba, nil
}

func saveJPEG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, nil); err != nil {
		return fmt.Errorf("cannot encode %s: %w", path, err)
	}
	return nil
}
