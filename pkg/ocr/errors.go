package ocr

import "errors"

// ErrEmptyImage is returned when a zero-area image is handed to the recognizer.
var ErrEmptyImage = errors.New("empty image")
