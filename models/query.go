package models

import (
	"fmt"
	"strings"

	"umahelper/pkg/events"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func byPosition(tx *gorm.DB) *gorm.DB {
	return tx.Order("position")
}

// LoadEvents returns every event with its choices, sorted by the given column.
func LoadEvents(db *gorm.DB, order string) ([]Event, error) {
	var rows []Event
	if err := db.Preload("Choices", byPosition).Order(order).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	return rows, nil
}

// LoadCatalog returns the stored events in insertion order, ready for
// events.NewCatalog. Rows that fail events.ValidateEvent are logged and skipped.
func LoadCatalog(db *gorm.DB) ([]events.Event, error) {
	rows, err := LoadEvents(db, "id")
	if err != nil {
		return nil, err
	}
	out := make([]events.Event, 0, len(rows))
	for _, r := range rows {
		ev := r.ToCatalog()
		if err := events.ValidateEvent(ev); err != nil {
			log.Warn().Err(err).Uint("event_id", r.ID).Msg("skipping invalid event")
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

// FindEvent returns the first event (by id) whose English or Japanese name
// contains text, ignoring case. gorm.ErrRecordNotFound means no match.
func FindEvent(db *gorm.DB, text string) (*Event, error) {
	pattern := "%" + escapeLike(text) + "%"
	var row Event
	err := db.Preload("Choices", byPosition).
		Where("name ILIKE ? OR name_jp ILIKE ?", pattern, pattern).
		Order("id").First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}
