package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"umahelper/pkg/config"
	"umahelper/pkg/logging"
	"umahelper/process/report"
)

func main() {
	month := flag.String("month", time.Now().UTC().Format("2006-01"), "month to report (YYYY-MM)")
	source := flag.String("source", "", "only scans from this source (capture, upload, inbox)")
	top := flag.Int("top", 10, "number of top events to show")
	list := flag.Bool("list", false, "list matching rows")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Setup(cfg.LogLevel, cfg.LogPretty)
	if cfg.DBDSN == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN not set; export DB_DSN and retry")
		os.Exit(2)
	}
	db, err := gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		log.Fatal().Err(err).Msg("open db")
	}

	s, err := report.Build(db, *month, *source, *top)
	if err != nil {
		log.Fatal().Err(err).Msg("report")
	}
	report.Write(os.Stdout, s)
	if *list {
		if err := report.ListScans(db, os.Stdout, *month); err != nil {
			log.Fatal().Err(err).Msg("list")
		}
	}
}
