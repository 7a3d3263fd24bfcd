package models

import (
	"time"
	"unicode/utf8"
)

const maxReasonLen = 255

// Scan records one recognition request and its best match, for later review.
type Scan struct {
	ID            uint `gorm:"primaryKey"`
	CreatedAt     time.Time
	ScanID        string  `gorm:"size:36;uniqueIndex;not null"` // artifact id, names the debug images
	Source        string  `gorm:"size:16;not null"`             // "capture", "upload" or "inbox"
	FileName      string  `gorm:"size:255"`
	Text          string  `gorm:"type:text"`
	Confidence    float64 `gorm:"not null;default:0"`
	Inverted      bool    `gorm:"default:false"`
	MatchCount    int     `gorm:"not null;default:0"`
	TopEvent      string  `gorm:"size:255"`
	TopKind       string  `gorm:"size:32"`
	TopConfidence float64 `gorm:"default:0"`
	// Failed scans are kept so they can be inspected with their debug images.
	Failed       bool   `gorm:"default:false;index"`
	FailedReason string `gorm:"size:255"`
}

// Fail marks the scan as failed with err's message, cut to fit the column
// without splitting a character.
func (s *Scan) Fail(err error) {
	s.Failed = true
	reason := err.Error()
	if len(reason) > maxReasonLen {
		reason = reason[:maxReasonLen]
		for !utf8.ValidString(reason) {
			reason = reason[:len(reason)-1]
		}
	}
	s.FailedReason = reason
}
