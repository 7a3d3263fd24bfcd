package main

import (
	"fmt"
	"os"

	"umahelper/pkg/artifacts"
	"umahelper/pkg/capture"
	"umahelper/pkg/config"
	"umahelper/pkg/logging"
	"umahelper/pkg/lookup"
	"umahelper/pkg/ocr"

	"github.com/rs/zerolog/log"
)

var (
	cfg       config.Config
	jwtSecret []byte
)

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Setup(cfg.LogLevel, cfg.LogPretty)
	jwtSecret = []byte(cfg.JWTSecret)
	if cfg.JWTSecret == config.DevJWTSecret {
		log.Warn().Msg("JWT_SECRET not set, using development secret")
	}

	// `umahelper migrate` runs AutoMigrate and seeding then exits.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := initDB(); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
		fmt.Println("migration and seeding completed")
		return
	}

	if cfg.DBDSN != "" {
		if err := initDB(); err != nil {
			log.Fatal().Err(err).Msg("database init failed")
		}
	} else {
		log.Warn().Msg("DB_DSN not set, running without persistence")
	}
	if err := reloadCatalog(); err != nil {
		log.Fatal().Err(err).Msg("catalog load failed")
	}
	scanner = newScanner(cfg)

	r := newRouter()
	log.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newScanner(c config.Config) *lookup.Service {
	return &lookup.Service{
		Capturer:   capture.Screen{},
		Recognizer: ocr.Tesseract{},
		Options:    c.OCROptions(),
		Artifacts:  artifacts.Store{Dir: c.DebugDir},
		Timeout:    c.OCRTimeout,
	}
}
