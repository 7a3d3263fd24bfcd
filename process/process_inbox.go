package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/corona10/goimagehash"
	"github.com/disintegration/imaging"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"umahelper/models"
	"umahelper/pkg/artifacts"
	"umahelper/pkg/catalogfile"
	"umahelper/pkg/config"
	"umahelper/pkg/events"
	"umahelper/pkg/logging"
	"umahelper/pkg/lookup"
	"umahelper/pkg/ocr"
)

// maxHashDistance is the perceptual hash distance under which two screenshots
// count as the same frame.
const maxHashDistance = 5

// settleDelay is how long a file must go without writes before it is scanned.
const settleDelay = 300 * time.Millisecond

var verbose bool

func logV(format string, args ...any) {
	if verbose {
		log.Info().Msgf(format, args...)
	}
}

// frameFilter drops screenshots that look like the last accepted one.
type frameFilter struct {
	mu       sync.Mutex
	lastHash *goimagehash.ImageHash
	maxDist  int
}

func (f *frameFilter) duplicate(img image.Image) bool {
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lastHash == nil {
		f.lastHash = hash
		return false
	}
	dist, err := f.lastHash.Distance(hash)
	if err == nil && dist <= f.maxDist {
		return true
	}
	f.lastHash = hash
	return false
}

type processor struct {
	dir     string
	svc     *lookup.Service
	catalog *events.Catalog
	frames  *frameFilter
	db      *gorm.DB // nil unless -record
	move    bool
}

func mustInitDB(dsn string) *gorm.DB {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	return gdb
}

// Main: scans a directory of game screenshots, matches each against the
// catalog and optionally records the results; -watch keeps following the directory.
func main() {
	dirFlag := flag.String("dir", "inbox", "directory to scan for screenshots")
	dryRun := flag.Bool("dry-run", false, "list candidate files without running OCR")
	watch := flag.Bool("watch", false, "watch directory for new files")
	workers := flag.Int("workers", 0, "worker pool size (default NumCPU)")
	record := flag.Bool("record", false, "store each scan in the scans table (needs DB_DSN)")
	move := flag.Bool("move", false, "move processed files to <dir>/processed")
	check := flag.Bool("check", false, "print catalog health for DB_DSN and exit")
	flag.BoolVar(&verbose, "verbose", false, "verbose per-file logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Setup(cfg.LogLevel, cfg.LogPretty)

	if *check {
		if err := RunCatalogCheck(cfg.DBDSN); err != nil {
			log.Fatal().Err(err).Msg("catalog check failed")
		}
		return
	}

	files := listImageFiles(*dirFlag)
	if *dryRun {
		log.Info().Str("dir", *dirFlag).Int("files", len(files)).Msg("dry-run: no OCR")
		for _, f := range files {
			fmt.Println(f)
		}
		return
	}

	var gdb *gorm.DB
	if cfg.DBDSN != "" {
		gdb = mustInitDB(cfg.DBDSN)
	} else if *record {
		log.Fatal().Msg("-record needs DB_DSN")
	}
	cat, err := loadCatalog(cfg, gdb)
	if err != nil {
		log.Fatal().Err(err).Msg("catalog load failed")
	}
	p := &processor{
		dir: *dirFlag,
		svc: &lookup.Service{
			Recognizer: ocr.Tesseract{},
			Options:    cfg.OCROptions(),
			Artifacts:  artifacts.Store{Dir: cfg.DebugDir},
			Timeout:    cfg.OCRTimeout,
		},
		catalog: cat,
		frames:  &frameFilter{maxDist: maxHashDistance},
		move:    *move,
	}
	if *record {
		p.db = gdb
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n := effectiveWorkers(*workers)
	log.Info().Int("files", len(files)).Int("workers", n).Int("events", cat.Len()).Msg("scanning")
	initial := make(chan string, len(files))
	for _, f := range files {
		initial <- f
	}
	close(initial)
	runWorkerPool(ctx, p, initial, n)

	if *watch {
		if err := watchDirectory(ctx, p, n); err != nil {
			log.Fatal().Err(err).Msg("watch failed")
		}
	}
}

func loadCatalog(cfg config.Config, gdb *gorm.DB) (*events.Catalog, error) {
	var evs []events.Event
	if cfg.CatalogFile != "" {
		fromFile, err := catalogfile.Load(cfg.CatalogFile)
		if err != nil {
			return nil, err
		}
		evs = append(evs, fromFile...)
	}
	if gdb != nil {
		fromDB, err := models.LoadCatalog(gdb)
		if err != nil {
			return nil, err
		}
		evs = append(evs, fromDB...)
	}
	if len(evs) == 0 {
		return nil, fmt.Errorf("empty catalog: set CATALOG_FILE or DB_DSN")
	}
	return events.NewCatalog(evs), nil
}

func effectiveWorkers(w int) int {
	if w <= 0 {
		return runtime.NumCPU()
	}
	return w
}

func listImageFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !isSupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func isSupportedExt(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp":
		return true
	}
	return false
}

// runWorkerPool processes names from files until it is closed or ctx ends.
func runWorkerPool(ctx context.Context, p *processor, files <-chan string, workers int) {
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case name, ok := <-files:
					if !ok {
						return
					}
					p.processFile(ctx, name)
				}
			}
		}()
	}
	wg.Wait()
}

func watchDirectory(ctx context.Context, p *processor, workers int) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(p.dir); err != nil {
		return err
	}
	log.Info().Str("dir", p.dir).Msg("watching (debounced)")

	fileCh := make(chan string, 256)
	go debounce(ctx, w.Events, w.Errors, fileCh)
	runWorkerPool(ctx, p, fileCh, workers)
	return nil
}

// debounce forwards the names of supported files once they have been quiet
// for settleDelay. It closes out when it returns.
func debounce(ctx context.Context, evs <-chan fsnotify.Event, errs <-chan error, out chan<- string) {
	defer close(out)
	pending := map[string]time.Time{}
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-evs:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				name := filepath.Base(ev.Name)
				if isSupportedExt(name) {
					pending[name] = time.Now()
				}
			}
		case <-ticker.C:
			now := time.Now()
			for name, t := range pending {
				if now.Sub(t) > settleDelay {
					select {
					case out <- name:
					case <-ctx.Done():
						return
					}
					delete(pending, name)
				}
			}
		case err, ok := <-errs:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("watch error")
		}
	}
}

func (p *processor) processFile(ctx context.Context, name string) {
	path := filepath.Join(p.dir, name)
	img, err := imaging.Open(path)
	if err != nil {
		log.Warn().Err(err).Str("file", name).Msg("cannot decode")
		return
	}
	if p.frames.duplicate(img) {
		logV("SKIP same frame %s", name)
		return
	}
	res, err := p.svc.ScanImage(ctx, img, p.catalog)
	if err != nil {
		log.Error().Err(err).Str("file", name).Msg("scan failed")
		p.record(name, res, err)
		return
	}
	if len(res.Matches) == 0 {
		logV("NO MATCH %s text=%q", name, res.Text)
	} else {
		top := res.Matches[0]
		log.Info().
			Str("file", name).
			Str("event", top.Event.Name).
			Str("kind", string(top.Kind)).
			Float64("confidence", top.Confidence).
			Msg("matched")
	}
	p.record(name, res, nil)
	if p.move {
		if err := moveToProcessed(p.dir, name); err != nil {
			log.Warn().Err(err).Str("file", name).Msg("failed to move processed file")
		}
	}
}

func (p *processor) record(name string, res lookup.Result, scanErr error) {
	if p.db == nil {
		return
	}
	s := models.Scan{ScanID: res.ID, Source: "inbox", FileName: name, Text: res.Text, Confidence: res.Confidence, Inverted: res.Inverted, MatchCount: len(res.Matches)}
	if s.ScanID == "" {
		s.ScanID = artifacts.NewID()
	}
	if len(res.Matches) > 0 {
		s.TopEvent = res.Matches[0].Event.Name
		s.TopKind = string(res.Matches[0].Kind)
		s.TopConfidence = res.Matches[0].Confidence
	}
	if scanErr != nil {
		s.Fail(scanErr)
	}
	if err := p.db.Create(&s).Error; err != nil {
		log.Warn().Err(err).Str("file", name).Msg("failed to record scan")
	}
}

func moveToProcessed(dir, name string) error {
	processedDir := filepath.Join(dir, "processed")
	if err := os.MkdirAll(processedDir, 0o755); err != nil {
		return err
	}
	src := filepath.Join(dir, name)
	dst := filepath.Join(processedDir, name)
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	return copyRemove(src, dst)
}

func copyRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
