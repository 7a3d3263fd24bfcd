package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/otiai10/gosseract/v2"
)

var keys = []string{
	"HTTP_ADDR", "DB_DSN", "DB_AUTO_MIGRATE", "JWT_SECRET", "CATALOG_FILE", "DEBUG_DIR",
	"OCR_LANG", "OCR_TIMEOUT", "OCR_PSM", "LOG_LEVEL", "LOG_PRETTY", "CORS_ORIGINS", "ADMIN_PASSWORD",
}

func clearEnv(t *testing.T) {
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8081" || !cfg.DBAutoMigrate || cfg.JWTSecret != DevJWTSecret {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.OCRTimeout != 10*time.Second || cfg.OCRLang != "eng" || cfg.OCRPSM != 3 {
		t.Fatalf("unexpected ocr defaults %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("unexpected cors %v", cfg.CORSOrigins)
	}
	if cfg.OCROptions().PageSegMode != gosseract.PSM_AUTO {
		t.Fatalf("expected auto page segmentation")
	}
}

func TestEnvFileAndOverride(t *testing.T) {
	clearEnv(t)
	p := filepath.Join(t.TempDir(), ".env")
	body := "# local settings\nHTTP_ADDR=:9999\nOCR_TIMEOUT=3s\nDB_AUTO_MIGRATE=false\nCORS_ORIGINS=\"http://a.test, http://b.test\"\nLOG_LEVEL=warn\n"
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadFrom(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":9999" || cfg.OCRTimeout != 3*time.Second || cfg.DBAutoMigrate {
		t.Fatalf("env file not applied: %+v", cfg)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("environment should win over file, got %q", cfg.LogLevel)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected cors %v", cfg.CORSOrigins)
	}
}

func TestInvalidTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("OCR_TIMEOUT", "0s")
	if _, err := LoadFrom(""); err == nil {
		t.Fatalf("expected error for zero timeout")
	}
}
