// Package placeholders draws stand-in item icons for when the real textures
// are missing, and can write them to disk as PNGs.
package placeholders

import (
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"sort"
)

// IconSize is the edge length of a placeholder icon
const IconSize = 64

// ColorPalette defines the night-forest item colors
var ColorPalette = struct {
	Steel    color.RGBA
	Hilt     color.RGBA
	Crust    color.RGBA
	Crumb    color.RGBA
	Cap      color.RGBA
	CapSpots color.RGBA
	Stem     color.RGBA
	Border   color.RGBA
}{
	Steel:    color.RGBA{190, 200, 210, 255},
	Hilt:     color.RGBA{110, 70, 40, 255},
	Crust:    color.RGBA{170, 110, 50, 255},
	Crumb:    color.RGBA{230, 200, 140, 255},
	Cap:      color.RGBA{200, 40, 40, 255},
	CapSpots: color.RGBA{245, 240, 230, 255},
	Stem:     color.RGBA{230, 220, 200, 255},
	Border:   color.RGBA{200, 200, 200, 255}, // Light gray
}

// painters holds the hand-drawn icons by handle name.
var painters = map[string]func(*image.RGBA){
	"icon_sword":   paintSword,
	"icon_bread":   paintBread,
	"mushroom_cap": paintMushroom,
}

// Names returns the icon handles with a dedicated drawing, sorted.
func Names() []string {
	out := make([]string, 0, len(painters))
	for name := range painters {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Icon returns a placeholder for the named icon. Unknown names get a
// bordered tile whose color is derived from the name, so distinct items stay
// distinguishable.
func Icon(name string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, IconSize, IconSize))
	if paint, ok := painters[name]; ok {
		paint(img)
		return img
	}
	return CreateBorderedIcon(hashColor(name), ColorPalette.Border, 3)
}

func hashColor(name string) color.RGBA {
	h := fnv.New32a()
	h.Write([]byte(name))
	v := h.Sum32()
	return color.RGBA{uint8(64 + v%160), uint8(64 + (v>>8)%160), uint8(64 + (v>>16)%160), 255}
}

// CreateBorderedIcon creates an icon with a border
func CreateBorderedIcon(fillColor, borderColor color.RGBA, borderWidth int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, IconSize, IconSize))

	// Fill background
	draw.Draw(img, img.Bounds(), &image.Uniform{fillColor}, image.Point{}, draw.Src)

	// Draw borders
	for i := 0; i < borderWidth; i++ {
		for x := 0; x < IconSize; x++ {
			img.Set(x, i, borderColor)
			img.Set(x, IconSize-1-i, borderColor)
		}
		for y := 0; y < IconSize; y++ {
			img.Set(i, y, borderColor)
			img.Set(IconSize-1-i, y, borderColor)
		}
	}

	return img
}

// fillEllipse fills the ellipse centered at (cx, cy) with radii rx, ry.
func fillEllipse(img *image.RGBA, cx, cy, rx, ry int, col color.RGBA) {
	for y := cy - ry; y <= cy+ry; y++ {
		for x := cx - rx; x <= cx+rx; x++ {
			dx := float64(x-cx) / float64(rx)
			dy := float64(y-cy) / float64(ry)
			if dx*dx+dy*dy <= 1 {
				img.Set(x, y, col)
			}
		}
	}
}

func fillRect(img *image.RGBA, r image.Rectangle, col color.RGBA) {
	draw.Draw(img, r, &image.Uniform{col}, image.Point{}, draw.Src)
}

// paintSword draws a blade along the diagonal with a crossguard.
func paintSword(img *image.RGBA) {
	for i := 12; i < IconSize-8; i++ {
		for w := -2; w <= 2; w++ {
			img.Set(IconSize-i+w, i, ColorPalette.Steel)
		}
	}
	for i := -8; i <= 8; i++ {
		for w := -1; w <= 1; w++ {
			img.Set(18+i+w, IconSize-22+i, Darken(ColorPalette.Hilt, 0.8))
		}
	}
	fillEllipse(img, 10, IconSize-10, 4, 4, ColorPalette.Hilt)
}

// paintBread draws a loaf with scored crust.
func paintBread(img *image.RGBA) {
	c := IconSize / 2
	fillEllipse(img, c, c+4, 26, 16, ColorPalette.Crust)
	fillEllipse(img, c, c+6, 22, 11, ColorPalette.Crumb)
	for _, x := range []int{c - 10, c, c + 10} {
		for y := c - 6; y < c+2; y++ {
			img.Set(x+(y-c)/3, y, Darken(ColorPalette.Crust, 0.6))
		}
	}
}

// paintMushroom draws a spotted cap on a stem.
func paintMushroom(img *image.RGBA) {
	c := IconSize / 2
	fillRect(img, image.Rect(c-6, c, c+6, IconSize-8), ColorPalette.Stem)
	fillEllipse(img, c, c, 24, 14, ColorPalette.Cap)
	fillRect(img, image.Rect(c-24, c+1, c+25, c+15), color.RGBA{})
	fillRect(img, image.Rect(c-6, c+1, c+6, IconSize-8), ColorPalette.Stem)
	for _, p := range []image.Point{{c - 10, c - 6}, {c + 6, c - 8}, {c + 14, c - 2}, {c - 2, c - 2}} {
		fillEllipse(img, p.X, p.Y, 3, 3, ColorPalette.CapSpots)
	}
}

// SavePNG saves an image to a PNG file
func SavePNG(img image.Image, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}

// WriteAll writes every named placeholder to dir as <name>.png, creating dir
// if needed. Existing files are left alone unless overwrite is set. It
// returns the paths written.
func WriteAll(dir string, overwrite bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create icon dir: %w", err)
	}
	var written []string
	for _, name := range Names() {
		path := filepath.Join(dir, name+".png")
		if !overwrite {
			if _, err := os.Stat(path); err == nil {
				continue
			}
		}
		if err := SavePNG(Icon(name), path); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", name, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// Darken returns a darker version of a color
func Darken(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

// Lighten returns a lighter version of a color
func Lighten(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) + (255-float64(c.R))*factor),
		G: uint8(float64(c.G) + (255-float64(c.G))*factor),
		B: uint8(float64(c.B) + (255-float64(c.B))*factor),
		A: c.A,
	}
}
