package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"umahelper/pkg/ocr"

	"github.com/otiai10/gosseract/v2"
	"github.com/spf13/viper"
)

// DevJWTSecret is used when JWT_SECRET is not set.
const DevJWTSecret = "dev-insecure-secret-change"

// Config holds the process settings read from the environment and an optional .env file.
type Config struct {
	HTTPAddr      string
	DBDSN         string
	DBAutoMigrate bool
	JWTSecret     string
	CatalogFile   string
	DebugDir      string
	OCRLang       string
	OCRTimeout    time.Duration
	OCRPSM        int
	LogLevel      string
	LogPretty     bool
	CORSOrigins   []string
	AdminPassword string
}

// Load reads ./.env (if present) and the environment.
func Load() (Config, error) {
	return LoadFrom(".env")
}

// LoadFrom is Load with an explicit env file path. Variables already set in
// the environment win over the file; a missing file is not an error.
func LoadFrom(envFile string) (Config, error) {
	v := viper.New()
	v.SetDefault("HTTP_ADDR", ":8081")
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("JWT_SECRET", DevJWTSecret)
	v.SetDefault("OCR_LANG", "eng")
	v.SetDefault("OCR_TIMEOUT", "10s")
	v.SetDefault("OCR_PSM", int(gosseract.PSM_AUTO))
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("CORS_ORIGINS", "*")
	v.AutomaticEnv()

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("read %s: %w", envFile, err)
			}
		}
	}

	cfg := Config{
		HTTPAddr:      v.GetString("HTTP_ADDR"),
		DBDSN:         v.GetString("DB_DSN"),
		DBAutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		CatalogFile:   v.GetString("CATALOG_FILE"),
		DebugDir:      v.GetString("DEBUG_DIR"),
		OCRLang:       v.GetString("OCR_LANG"),
		OCRTimeout:    v.GetDuration("OCR_TIMEOUT"),
		OCRPSM:        v.GetInt("OCR_PSM"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		LogPretty:     v.GetBool("LOG_PRETTY"),
		CORSOrigins:   splitList(v.GetString("CORS_ORIGINS")),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),
	}
	if cfg.OCRTimeout <= 0 {
		return Config{}, fmt.Errorf("OCR_TIMEOUT must be positive, got %q", v.GetString("OCR_TIMEOUT"))
	}
	return cfg, nil
}

// OCROptions builds recognizer options from the OCR_* settings.
func (c Config) OCROptions() ocr.Options {
	o := ocr.DefaultOptions()
	if c.OCRLang != "" {
		o.Language = c.OCRLang
	}
	o.PageSegMode = gosseract.PageSegMode(c.OCRPSM)
	return o
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
