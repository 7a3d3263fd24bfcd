package artifacts

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// Store writes debug images of each scan stage to Dir. A zero Store (empty
// Dir) saves nothing.
type Store struct {
	Dir string
}

// NewID returns an identifier that groups the images of one scan.
func NewID() string {
	return uuid.New().String()
}

// Enabled reports whether Save writes anything.
func (s Store) Enabled() bool { return s.Dir != "" }

// Save writes img as <dir>/<id>-<kind>.png and returns the path.
func (s Store) Save(id, kind string, img image.Image) (string, error) {
	if !s.Enabled() {
		return "", nil
	}
	if img == nil || img.Bounds().Empty() {
		return "", fmt.Errorf("save %s: empty image", kind)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}
	p := filepath.Join(s.Dir, fmt.Sprintf("%s-%s.png", id, kind))
	if err := imaging.Save(img, p); err != nil {
		return "", fmt.Errorf("save %s: %w", kind, err)
	}
	return p, nil
}
