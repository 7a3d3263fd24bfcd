package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog/log"
)

// DefaultWhitelist restricts tesseract to the characters that appear in event
// names and choice texts.
const DefaultWhitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789 .,!?'-:()[]{}\""

// Options configures a single recognition call.
type Options struct {
	Language    string
	Whitelist   string
	PageSegMode gosseract.PageSegMode
}

// DefaultOptions returns English, DefaultWhitelist and automatic page segmentation.
func DefaultOptions() Options {
	return Options{Language: "eng", Whitelist: DefaultWhitelist, PageSegMode: gosseract.PSM_AUTO}
}

// Recognition is the text read from an image. Confidence is the engine's mean
// word confidence on a 0..100 scale.
type Recognition struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Recognizer turns a conditioned image into text.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, opts Options) (Recognition, error)
}

// Tesseract is a Recognizer backed by a fresh gosseract client per call, so a
// single value is safe to share between goroutines.
type Tesseract struct{}

type recognizeResult struct {
	rec Recognition
	err error
}

func (Tesseract) Recognize(ctx context.Context, img image.Image, opts Options) (Recognition, error) {
	if img.Bounds().Empty() {
		return Recognition{}, ErrEmptyImage
	}
	if err := ctx.Err(); err != nil {
		return Recognition{}, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return Recognition{}, fmt.Errorf("encode png: %w", err)
	}

	done := make(chan recognizeResult, 1)
	go func() {
		rec, err := runTesseract(buf.Bytes(), opts)
		done <- recognizeResult{rec, err}
	}()
	select {
	case <-ctx.Done():
		return Recognition{}, ctx.Err()
	case r := <-done:
		return r.rec, r.err
	}
}

func runTesseract(png []byte, opts Options) (Recognition, error) {
	client := gosseract.NewClient()
	defer client.Close()
	if opts.Language != "" {
		if err := client.SetLanguage(opts.Language); err != nil {
			return Recognition{}, fmt.Errorf("set language: %w", err)
		}
	}
	if opts.Whitelist != "" {
		if err := client.SetWhitelist(opts.Whitelist); err != nil {
			return Recognition{}, fmt.Errorf("set whitelist: %w", err)
		}
	}
	if err := client.SetPageSegMode(opts.PageSegMode); err != nil {
		return Recognition{}, fmt.Errorf("set psm: %w", err)
	}
	if err := client.SetImageFromBytes(png); err != nil {
		return Recognition{}, fmt.Errorf("set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return Recognition{}, fmt.Errorf("ocr error: %w", err)
	}
	text = normalizeOCRText(text)

	var conf float64
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		log.Warn().Err(err).Msg("ocr word boxes unavailable")
	} else if len(boxes) > 0 {
		for _, b := range boxes {
			conf += b.Confidence
		}
		conf /= float64(len(boxes))
	}
	log.Debug().Str("snippet", snippet(text, 120)).Float64("confidence", conf).Msg("ocr raw")
	return Recognition{Text: text, Confidence: conf}, nil
}
