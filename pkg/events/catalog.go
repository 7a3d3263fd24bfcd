package events

import (
	"fmt"
	"strings"
)

// Choice is one selectable option of a training event.
type Choice struct {
	Number  string `json:"number"`
	Text    string `json:"text"`
	Outcome string `json:"outcome"`
}

// Event is a catalog entry: a training event, who triggers it and its choices.
type Event struct {
	Name          string   `json:"name"`
	CharacterName string   `json:"character_name"`
	RelationType  string   `json:"relation_type"`
	Choices       []Choice `json:"choices"`
}

// ValidateEvent rejects records that must not reach a Catalog.
func ValidateEvent(e Event) error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: name required", ErrInvalidEvent)
	}
	for i, c := range e.Choices {
		if strings.TrimSpace(c.Text) == "" {
			return fmt.Errorf("%w: %q choice %d has no text", ErrInvalidEvent, e.Name, i+1)
		}
	}
	return nil
}

type entry struct {
	event   Event
	name    string
	choices []string // normalized, parallel to event.Choices
}

// Catalog is an ordered, read-only set of events prepared for matching.
// It never changes after NewCatalog returns, so one value may be shared by any
// number of concurrent Match calls.
type Catalog struct {
	entries []entry
}

// NewCatalog copies evs in order and precomputes their normalized forms.
// Records are expected to have passed ValidateEvent.
func NewCatalog(evs []Event) *Catalog {
	c := &Catalog{entries: make([]entry, 0, len(evs))}
	for _, e := range evs {
		ev := copyEvent(e)
		ent := entry{event: ev, name: Normalize(ev.Name), choices: make([]string, len(ev.Choices))}
		for i, ch := range ev.Choices {
			ent.choices[i] = Normalize(ch.Text)
		}
		c.entries = append(c.entries, ent)
	}
	return c
}

// Len returns the number of events.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Events returns a copy of the events in catalog order.
func (c *Catalog) Events() []Event {
	if c == nil {
		return nil
	}
	out := make([]Event, len(c.entries))
	for i, ent := range c.entries {
		out[i] = copyEvent(ent.event)
	}
	return out
}

// Lookup returns the first event whose name contains text, ignoring case.
func (c *Catalog) Lookup(text string) (Event, bool) {
	needle := strings.ToLower(strings.TrimSpace(text))
	if c == nil || needle == "" {
		return Event{}, false
	}
	for _, ent := range c.entries {
		if strings.Contains(strings.ToLower(ent.event.Name), needle) {
			return copyEvent(ent.event), true
		}
	}
	return Event{}, false
}

func copyEvent(e Event) Event {
	if e.Choices != nil {
		e.Choices = append([]Choice(nil), e.Choices...)
	}
	return e
}
