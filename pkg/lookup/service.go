package lookup

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"umahelper/pkg/artifacts"
	"umahelper/pkg/capture"
	"umahelper/pkg/events"
	"umahelper/pkg/ocr"

	"github.com/rs/zerolog/log"
)

// ErrNoCapturer is returned by ScanArea when the service has no screen source.
var ErrNoCapturer = errors.New("screen capture unavailable")

// Result is the outcome of one scan as returned to the UI.
type Result struct {
	ID         string         `json:"id"`
	Text       string         `json:"text"`
	Confidence float64        `json:"confidence"`
	Inverted   bool           `json:"inverted"`
	Matches    []events.Match `json:"matched_events"`
}

// Service wires capture, conditioning, recognition and matching together.
// The catalog is passed to every call so callers can swap it freely.
type Service struct {
	Capturer   capture.Capturer
	Recognizer ocr.Recognizer
	Options    ocr.Options
	Artifacts  artifacts.Store
	// Timeout bounds a single recognition; zero means no extra deadline.
	Timeout time.Duration
}

// ScanArea captures area from the screen and scans it.
func (s *Service) ScanArea(ctx context.Context, area capture.Area, cat *events.Catalog) (Result, error) {
	if s.Capturer == nil {
		return Result{}, ErrNoCapturer
	}
	img, err := s.Capturer.Capture(area)
	if err != nil {
		return Result{}, fmt.Errorf("capture: %w", err)
	}
	id := artifacts.NewID()
	s.save(id, "captured", img)
	return s.scan(ctx, id, img, cat)
}

// ScanImage scans an already captured image.
func (s *Service) ScanImage(ctx context.Context, img image.Image, cat *events.Catalog) (Result, error) {
	return s.scan(ctx, artifacts.NewID(), img, cat)
}

func (s *Service) scan(ctx context.Context, id string, img image.Image, cat *events.Catalog) (Result, error) {
	processed, inverted := ocr.Prepare(img)
	s.save(id, "processed", processed)

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	rec, err := s.Recognizer.Recognize(ctx, processed, s.Options)
	if err != nil {
		return Result{}, fmt.Errorf("recognize: %w", err)
	}

	res := Result{ID: id, Text: strings.TrimSpace(rec.Text), Confidence: rec.Confidence, Inverted: inverted}
	res.Matches = cat.Match(res.Text)
	log.Info().
		Str("scan", id).
		Int("text_len", len(res.Text)).
		Float64("confidence", res.Confidence).
		Bool("inverted", inverted).
		Int("matches", len(res.Matches)).
		Msg("scan complete")
	return res, nil
}

func (s *Service) save(id, kind string, img image.Image) {
	if p, err := s.Artifacts.Save(id, kind, img); err != nil {
		log.Warn().Err(err).Str("kind", kind).Msg("failed to save debug image")
	} else if p != "" {
		log.Debug().Str("path", p).Msg("saved debug image")
	}
}
