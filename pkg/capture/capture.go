package capture

import (
	"errors"
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

var (
	// ErrInvalidArea is returned when a requested area has no pixels left after clamping.
	ErrInvalidArea = errors.New("invalid capture area")
	// ErrNoDisplay is returned when no active display is available.
	ErrNoDisplay = errors.New("no active display")
)

// Area is a screen rectangle in pixels, relative to the primary display.
type Area struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect converts a to an image.Rectangle.
func (a Area) Rect() image.Rectangle {
	return image.Rect(a.X, a.Y, a.X+a.Width, a.Y+a.Height)
}

// ClampArea fits a inside a w x h screen. Negative origins move to 0 and the
// size is cut to what remains on screen.
func ClampArea(a Area, w, h int) (Area, error) {
	x := max(a.X, 0)
	y := max(a.Y, 0)
	out := Area{
		X:      x,
		Y:      y,
		Width:  max(min(a.Width, w-x), 0),
		Height: max(min(a.Height, h-y), 0),
	}
	if out.Width == 0 || out.Height == 0 {
		return Area{}, fmt.Errorf("%w: %dx%d at (%d,%d)", ErrInvalidArea, a.Width, a.Height, a.X, a.Y)
	}
	return out, nil
}

// Capturer grabs a region of the screen.
type Capturer interface {
	Capture(a Area) (image.Image, error)
}

// Screen captures from the primary display.
type Screen struct{}

func (Screen) Capture(a Area) (image.Image, error) {
	if screenshot.NumActiveDisplays() < 1 {
		return nil, ErrNoDisplay
	}
	bounds := screenshot.GetDisplayBounds(0)
	area, err := ClampArea(a, bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}
	img, err := screenshot.CaptureRect(area.Rect().Add(bounds.Min))
	if err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return img, nil
}
