package main

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// RunCatalogCheck connects to Postgres using dsn and prints catalog health:
// table sizes, events without choices, blank choice texts and names that
// differ only by case.
func RunCatalogCheck(dsn string) error {
	if dsn == "" {
		return fmt.Errorf("dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	var nEvents, nChoices, nBlank int
	if err := db.QueryRow(`SELECT count(*) FROM events`).Scan(&nEvents); err != nil {
		return fmt.Errorf("count events: %w", err)
	}
	if err := db.QueryRow(`SELECT count(*) FROM choices`).Scan(&nChoices); err != nil {
		return fmt.Errorf("count choices: %w", err)
	}
	if err := db.QueryRow(`SELECT count(*) FROM choices WHERE trim(text) = ''`).Scan(&nBlank); err != nil {
		return fmt.Errorf("count blank choices: %w", err)
	}
	fmt.Printf("events=%d choices=%d blank_choices=%d\n", nEvents, nChoices, nBlank)

	rows, err := db.Query(`
		SELECT e.id, e.name, COALESCE(e.character_name, '')
		FROM events e
		LEFT JOIN choices c ON c.event_id = e.id
		WHERE c.id IS NULL
		ORDER BY e.id`)
	if err != nil {
		return fmt.Errorf("query events without choices: %w", err)
	}
	defer rows.Close()
	fmt.Println("Events without choices:")
	for rows.Next() {
		var id int64
		var name, character string
		if err := rows.Scan(&id, &name, &character); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		fmt.Printf("- %d: %s %s\n", id, name, nullIfEmpty(character))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows err: %w", err)
	}

	dups, err := db.Query(`
		SELECT lower(name), count(*)
		FROM events
		GROUP BY lower(name), COALESCE(character_name, '')
		HAVING count(*) > 1
		ORDER BY 1`)
	if err != nil {
		return fmt.Errorf("query duplicates: %w", err)
	}
	defer dups.Close()
	fmt.Println("Case-insensitive duplicates:")
	for dups.Next() {
		var name string
		var n int
		if err := dups.Scan(&name, &n); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		fmt.Printf("- %s x%d\n", name, n)
	}
	return dups.Err()
}

func nullIfEmpty(s string) string {
	if s == "" {
		return ""
	}
	return "(" + s + ")"
}
