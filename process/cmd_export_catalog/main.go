package main

import (
	"flag"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"umahelper/models"
	"umahelper/pkg/catalogfile"
	"umahelper/pkg/config"
	"umahelper/pkg/logging"
	"umahelper/process/export"
)

// Exports the stored catalog either as a spreadsheet or as a catalog file
// that CATALOG_FILE can load back.
func main() {
	out := flag.String("out", "catalog.xlsx", "output file; .json writes a catalog file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Setup(cfg.LogLevel, cfg.LogPretty)
	if cfg.DBDSN == "" {
		log.Fatal().Msg("DB_DSN not set in env")
	}
	db, err := gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		log.Fatal().Err(err).Msg("open db")
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatal().Err(err).Msg("create output")
	}
	defer f.Close()

	if strings.HasSuffix(strings.ToLower(*out), ".json") {
		evs, err := models.LoadCatalog(db)
		if err != nil {
			log.Fatal().Err(err).Msg("load catalog")
		}
		if err := catalogfile.Encode(f, evs); err != nil {
			log.Fatal().Err(err).Msg("encode")
		}
		log.Info().Int("events", len(evs)).Str("out", *out).Msg("catalog exported")
		return
	}
	rows, err := models.LoadEvents(db, "name")
	if err != nil {
		log.Fatal().Err(err).Msg("load events")
	}
	n, err := export.WriteXLSX(f, rows)
	if err != nil {
		log.Fatal().Err(err).Msg("xlsx")
	}
	log.Info().Int("events", len(rows)).Int("rows", n).Str("out", *out).Msg("spreadsheet exported")
}
