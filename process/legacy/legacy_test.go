package legacy

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

const createLegacy = `CREATE TABLE events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	event_name TEXT UNIQUE NOT NULL,
	event_name_jp TEXT,
	choice1_text TEXT,
	choice1_effects TEXT,
	choice2_text TEXT,
	choice2_effects TEXT,
	choice3_text TEXT,
	choice3_effects TEXT,
	notes TEXT
)`

func writeLegacy(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "uma_events.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	stmts := []string{
		createLegacy,
		`INSERT INTO events (event_name, event_name_jp, choice1_text, choice1_effects, choice2_text, choice2_effects, choice3_text, choice3_effects)
		 VALUES ('Sample Training Event', 'Sample Training Event JP', 'Train harder', '+15 Speed, -10 Stamina', 'Take it easy', '+5 Wisdom, +10 Health', 'Focus on technique', '+10 Technique, +5 Guts')`,
		`INSERT INTO events (event_name, choice1_text, choice1_effects, notes) VALUES ('Extra Training', 'Yes', '+5 Power', 'only one choice')`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("exec: %v", err)
		}
	}
	return path
}

func TestReadEvents(t *testing.T) {
	db, err := Open(writeLegacy(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	evs, err := ReadEvents(context.Background(), db)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(evs) != 2 {
		t.Fatalf("expected 2 events got %d", len(evs))
	}
	first := evs[0]
	if first.Name != "Sample Training Event" || first.NameJP != "Sample Training Event JP" {
		t.Fatalf("unexpected first event %+v", first)
	}
	if len(first.Choices) != 3 || first.Choices[2].Number != "3" || first.Choices[0].Outcome != "+15 Speed, -10 Stamina" {
		t.Fatalf("unexpected choices %+v", first.Choices)
	}
	second := evs[1]
	if len(second.Choices) != 1 || second.Notes != "only one choice" || second.NameJP != "" {
		t.Fatalf("unexpected second event %+v", second)
	}
}
