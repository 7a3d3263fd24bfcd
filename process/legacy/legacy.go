// Package legacy reads event tables written by the old desktop helper.
package legacy

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"umahelper/models"
	"umahelper/pkg/events"

	_ "modernc.org/sqlite"
)

// Open opens the SQLite file at path read-only.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return db, nil
}

const selectEvents = `
SELECT event_name,
       COALESCE(event_name_jp, ''),
       COALESCE(choice1_text, ''), COALESCE(choice1_effects, ''),
       COALESCE(choice2_text, ''), COALESCE(choice2_effects, ''),
       COALESCE(choice3_text, ''), COALESCE(choice3_effects, ''),
       COALESCE(notes, '')
FROM events
ORDER BY id`

// ReadEvents converts every legacy row into an Event row ready to insert.
// Choice slots with empty text are dropped; rows without a name are skipped.
func ReadEvents(ctx context.Context, db *sql.DB) ([]models.Event, error) {
	rows, err := db.QueryContext(ctx, selectEvents)
	if err != nil {
		return nil, fmt.Errorf("query legacy events: %w", err)
	}
	defer rows.Close()

	var out []models.Event
	for rows.Next() {
		var name, nameJP, notes string
		var slots [3][2]string
		if err := rows.Scan(&name, &nameJP,
			&slots[0][0], &slots[0][1],
			&slots[1][0], &slots[1][1],
			&slots[2][0], &slots[2][1],
			&notes); err != nil {
			return nil, fmt.Errorf("scan legacy row: %w", err)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		ev := events.Event{Name: name}
		for _, s := range slots {
			if text := strings.TrimSpace(s[0]); text != "" {
				ev.Choices = append(ev.Choices, events.Choice{Text: text, Outcome: strings.TrimSpace(s[1])})
			}
		}
		out = append(out, models.FromCatalog(ev, strings.TrimSpace(nameJP), notes))
	}
	return out, rows.Err()
}
