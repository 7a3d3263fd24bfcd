package models

import (
	"strconv"
	"time"

	"umahelper/pkg/events"
)

// Event is a stored training event. Name and CharacterName together are unique
// because generic events share names across characters.
type Event struct {
	ID            uint `gorm:"primaryKey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Name          string   `gorm:"size:255;not null;uniqueIndex:idx_events_name_character"`
	NameJP        string   `gorm:"column:name_jp;size:255"`
	CharacterName string   `gorm:"size:255;uniqueIndex:idx_events_name_character"`
	RelationType  string   `gorm:"size:64"`
	Notes         string   `gorm:"type:text"`
	Choices       []Choice `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// Choice is one option of an Event, kept in Position order.
type Choice struct {
	ID       uint   `gorm:"primaryKey"`
	EventID  uint   `gorm:"index;not null"`
	Position int    `gorm:"not null"`
	Number   string `gorm:"size:16"`
	Text     string `gorm:"type:text;not null"`
	Outcome  string `gorm:"type:text"`
}

// ToCatalog converts the row to the matching representation. Choices must
// already be sorted by Position.
func (e Event) ToCatalog() events.Event {
	out := events.Event{Name: e.Name, CharacterName: e.CharacterName, RelationType: e.RelationType}
	if len(e.Choices) > 0 {
		out.Choices = make([]events.Choice, len(e.Choices))
		for i, c := range e.Choices {
			out.Choices[i] = events.Choice{Number: c.Number, Text: c.Text, Outcome: c.Outcome}
		}
	}
	return out
}

// FromCatalog builds a row from ev. Choices without a number are numbered by position.
func FromCatalog(ev events.Event, nameJP, notes string) Event {
	row := Event{
		Name:          ev.Name,
		NameJP:        nameJP,
		CharacterName: ev.CharacterName,
		RelationType:  ev.RelationType,
		Notes:         notes,
	}
	for i, c := range ev.Choices {
		num := c.Number
		if num == "" {
			num = strconv.Itoa(i + 1)
		}
		row.Choices = append(row.Choices, Choice{Position: i, Number: num, Text: c.Text, Outcome: c.Outcome})
	}
	return row
}
