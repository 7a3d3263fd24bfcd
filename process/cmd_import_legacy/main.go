package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"umahelper/models"
	"umahelper/pkg/config"
	"umahelper/pkg/events"
	"umahelper/pkg/logging"
	"umahelper/process/legacy"
)

// Copies events from the desktop helper's SQLite database into Postgres.
// Events already present (same name and character) are left alone.
func main() {
	home, _ := os.UserHomeDir()
	src := flag.String("sqlite", filepath.Join(home, "uma_events.db"), "legacy SQLite database")
	dryRun := flag.Bool("dry-run", false, "print what would be imported")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Setup(cfg.LogLevel, cfg.LogPretty)

	sdb, err := legacy.Open(*src)
	if err != nil {
		log.Fatal().Err(err).Msg("legacy db")
	}
	defer sdb.Close()
	rows, err := legacy.ReadEvents(context.Background(), sdb)
	if err != nil {
		log.Fatal().Err(err).Msg("read legacy events")
	}
	if *dryRun {
		for _, r := range rows {
			fmt.Printf("%s (%d choices)\n", r.Name, len(r.Choices))
		}
		return
	}
	if cfg.DBDSN == "" {
		log.Fatal().Msg("DB_DSN not set in env")
	}
	db, err := gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		log.Fatal().Err(err).Msg("open db")
	}

	var created, skipped, invalid int
	for _, r := range rows {
		if err := events.ValidateEvent(r.ToCatalog()); err != nil {
			log.Warn().Err(err).Str("event", r.Name).Msg("skipping invalid legacy event")
			invalid++
			continue
		}
		var existing models.Event
		err := db.Where("name = ? AND character_name = ?", r.Name, r.CharacterName).First(&existing).Error
		if err == nil {
			skipped++
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatal().Err(err).Msg("lookup failed")
		}
		if err := db.Create(&r).Error; err != nil {
			log.Fatal().Err(err).Str("event", r.Name).Msg("insert failed")
		}
		created++
	}
	log.Info().Int("created", created).Int("skipped", skipped).Int("invalid", invalid).Msg("legacy import done")
}
