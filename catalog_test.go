package main

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"umahelper/pkg/config"
)

func TestReloadCatalogConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	doc := `{"events": [{"name": "Speed Training"}, {"name": "Hot Spring Trip"}]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	db = nil
	cfg = config.Config{CatalogFile: path}

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- reloadCatalog()
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("reload: %v", err)
		}
	}

	// A reload that starts after the file changes must win over all earlier ones.
	doc = `{"events": [{"name": "Speed Training"}, {"name": "Hot Spring Trip"}, {"name": "New Year"}]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := reloadCatalog(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	cat := currentCatalog()
	if cat.Len() != 3 {
		t.Fatalf("expected 3 events in final snapshot, got %d", cat.Len())
	}
	if _, ok := cat.Lookup("New Year"); !ok {
		t.Fatalf("final snapshot is missing the newest event")
	}
}
