package ocr

import (
	"image"

	"github.com/disintegration/imaging"
)

const (
	// UpscaleFactor multiplies both dimensions before recognition.
	UpscaleFactor = 2
	// ContrastBoost is the imaging.AdjustContrast percentage applied last.
	ContrastBoost = 20
)

// Condition runs the fixed preprocessing chain: grayscale, 2x Lanczos
// upscale, optional inversion, contrast boost. The result is always a fresh
// image and identical inputs produce identical pixels. No cropping happens here.
func Condition(img image.Image, invert bool) *image.NRGBA {
	b := img.Bounds()
	if b.Empty() {
		return &image.NRGBA{}
	}
	gray := imaging.Grayscale(img)
	gray = imaging.Resize(gray, b.Dx()*UpscaleFactor, b.Dy()*UpscaleFactor, imaging.Lanczos)
	if invert {
		gray = imaging.Invert(gray)
	}
	return imaging.AdjustContrast(gray, ContrastBoost)
}

// Prepare decides polarity for img and conditions it accordingly.
func Prepare(img image.Image) (*image.NRGBA, bool) {
	invert := ShouldInvert(ToGray(img))
	return Condition(img, invert), invert
}
