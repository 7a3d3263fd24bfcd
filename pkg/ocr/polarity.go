package ocr

import (
	"image"

	"github.com/disintegration/imaging"
)

const (
	sampleStride  = 4
	darkThreshold = 128
	invertRatio   = 0.6
)

// ToGray flattens img to a single 8-bit channel using imaging's luminance weights.
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()
	if b.Empty() {
		return &image.Gray{}
	}
	src := imaging.Grayscale(img)
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		row := src.Pix[y*src.Stride:]
		for x := 0; x < b.Dx(); x++ {
			out.Pix[y*out.Stride+x] = row[x*4]
		}
	}
	return out
}

// DarkRatio samples every 4th row and column of g and returns the share of
// sampled pixels below mid-gray. A zero-area image yields 0.
func DarkRatio(g *image.Gray) float64 {
	b := g.Bounds()
	dark, total := 0, 0
	for y := b.Min.Y; y < b.Max.Y; y += sampleStride {
		for x := b.Min.X; x < b.Max.X; x += sampleStride {
			if g.GrayAt(x, y).Y < darkThreshold {
				dark++
			}
			total++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(dark) / float64(total)
}

// ShouldInvert reports whether g looks like light text on a dark background.
// The comparison is strict: a ratio of exactly 0.6 is left alone.
func ShouldInvert(g *image.Gray) bool {
	return DarkRatio(g) > invertRatio
}
