package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"

	"umahelper/pkg/artifacts"
	"umahelper/pkg/catalogfile"
	"umahelper/pkg/config"
	"umahelper/pkg/events"
	"umahelper/pkg/logging"
	"umahelper/pkg/lookup"
	"umahelper/pkg/ocr"
)

// Runs the full scan pipeline on one screenshot and prints every match.
func main() {
	f := flag.String("file", "", "image file to scan")
	catalog := flag.String("catalog", "", "catalog JSON file (default CATALOG_FILE)")
	flag.Parse()
	if *f == "" {
		log.Fatal().Msg("-file required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Setup(cfg.LogLevel, cfg.LogPretty)
	if *catalog == "" {
		*catalog = cfg.CatalogFile
	}
	if *catalog == "" {
		log.Fatal().Msg("-catalog or CATALOG_FILE required")
	}
	evs, err := catalogfile.Load(*catalog)
	if err != nil {
		log.Fatal().Err(err).Msg("catalog")
	}

	img, err := imaging.Open(*f, imaging.AutoOrientation(true))
	if err != nil {
		log.Fatal().Err(err).Msg("open image")
	}
	svc := &lookup.Service{
		Recognizer: ocr.Tesseract{},
		Options:    cfg.OCROptions(),
		Artifacts:  artifacts.Store{Dir: cfg.DebugDir},
		Timeout:    cfg.OCRTimeout,
	}
	res, err := svc.ScanImage(context.Background(), img, events.NewCatalog(evs))
	if err != nil {
		log.Fatal().Err(err).Msg("scan error")
	}
	fmt.Printf("id=%s conf=%.2f inverted=%v text=%q\n", res.ID, res.Confidence, res.Inverted, res.Text)
	for i, m := range res.Matches {
		fmt.Printf("%d. %s [%s] %.4f %q\n", i+1, m.Event.Name, m.Kind, m.Confidence, m.MatchedText)
	}
}
