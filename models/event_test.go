package models

import (
	"testing"

	"umahelper/pkg/events"
)

func TestFromCatalogNumbersChoices(t *testing.T) {
	ev := events.Event{
		Name:         "Sample Training Event",
		RelationType: "common",
		Choices: []events.Choice{
			{Text: "Train harder", Outcome: "+15 Speed, -10 Stamina"},
			{Number: "B", Text: "Take it easy"},
		},
	}
	row := FromCatalog(ev, "サンプル", "seeded")
	if row.NameJP != "サンプル" || row.Notes != "seeded" || len(row.Choices) != 2 {
		t.Fatalf("unexpected row %+v", row)
	}
	if row.Choices[0].Number != "1" || row.Choices[0].Position != 0 {
		t.Fatalf("first choice not numbered: %+v", row.Choices[0])
	}
	if row.Choices[1].Number != "B" || row.Choices[1].Position != 1 {
		t.Fatalf("explicit number lost: %+v", row.Choices[1])
	}
	back := row.ToCatalog()
	if back.Name != ev.Name || back.RelationType != "common" || back.Choices[0].Outcome != "+15 Speed, -10 Stamina" {
		t.Fatalf("unexpected conversion %+v", back)
	}
}

func TestToCatalogNoChoices(t *testing.T) {
	if got := (Event{Name: "Hot Spring Trip"}).ToCatalog(); got.Choices != nil {
		t.Fatalf("expected nil choices got %v", got.Choices)
	}
}

func TestCanEditCatalog(t *testing.T) {
	if !CanEditCatalog(RoleAdministrator) || !CanEditCatalog(RoleEditor) || CanEditCatalog(RoleUser) || CanEditCatalog("") {
		t.Fatalf("unexpected role permissions")
	}
}
