package main

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"umahelper/pkg/catalogfile"
	"umahelper/pkg/events"

	"github.com/rs/zerolog/log"
)

// catalogRef holds the snapshot every match runs against. Writers build a new
// Catalog and swap it in; readers never see a partial update.
var catalogRef atomic.Pointer[events.Catalog]

// reloadMu serializes reloads so an older read never replaces a newer snapshot.
var reloadMu sync.Mutex

func currentCatalog() *events.Catalog {
	if c := catalogRef.Load(); c != nil {
		return c
	}
	return events.NewCatalog(nil)
}

// reloadCatalog rebuilds the snapshot from CATALOG_FILE followed by the
// database. With neither configured the sample event is served.
func reloadCatalog() error {
	reloadMu.Lock()
	defer reloadMu.Unlock()
	var evs []events.Event
	if cfg.CatalogFile != "" {
		fromFile, err := catalogfile.Load(cfg.CatalogFile)
		if err != nil {
			return fmt.Errorf("load catalog file: %w", err)
		}
		evs = append(evs, fromFile...)
	}
	if db != nil {
		fromDB, err := loadDBEvents()
		if err != nil {
			return err
		}
		evs = append(evs, fromDB...)
	}
	if cfg.CatalogFile == "" && db == nil {
		evs = []events.Event{sampleEvent()}
	}
	catalogRef.Store(events.NewCatalog(evs))
	log.Info().Int("events", len(evs)).Msg("catalog loaded")
	return nil
}

// sortedByName returns the snapshot's events ordered by name.
func sortedByName(c *events.Catalog) []events.Event {
	evs := c.Events()
	if evs == nil {
		evs = []events.Event{}
	}
	sort.SliceStable(evs, func(i, j int) bool { return evs[i].Name < evs[j].Name })
	return evs
}
