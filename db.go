package main

import (
	"errors"
	"fmt"

	"umahelper/models"
	"umahelper/pkg/events"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// errNoDB is returned by operations that need the Postgres store when none is configured.
var errNoDB = errors.New("database not configured")

// sampleEvent is seeded into an empty catalog so a fresh install has something to match.
func sampleEvent() events.Event {
	return events.Event{
		Name:         "Sample Training Event",
		RelationType: "common",
		Choices: []events.Choice{
			{Number: "1", Text: "Train harder", Outcome: "+15 Speed, -10 Stamina"},
			{Number: "2", Text: "Take it easy", Outcome: "+5 Wisdom, +10 Health"},
			{Number: "3", Text: "Focus on technique", Outcome: "+10 Technique, +5 Guts"},
		},
	}
}

func initDB() error {
	if cfg.DBDSN == "" {
		return errors.New("DB_DSN is not set")
	}
	conn, err := gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return fmt.Errorf("failed to connect postgres database: %w", err)
	}
	db = conn
	// Permission errors during migration are logged and ignored so a read-only
	// role can still serve lookups.
	if cfg.DBAutoMigrate {
		migrate()
	}
	seedDB()
	return nil
}

func migrate() {
	// roles first so the users FK can be applied
	tables := []struct {
		name  string
		model any
	}{
		{"roles", &models.Role{}},
		{"users", &models.User{}},
		{"events", &models.Event{}},
		{"choices", &models.Choice{}},
		{"scans", &models.Scan{}},
	}
	for _, t := range tables {
		if err := db.AutoMigrate(t.model); err != nil {
			log.Warn().Err(err).Str("table", t.name).Msg("migration warning")
		}
	}
}

func seedDB() {
	for _, r := range models.DefaultRoles() {
		var cnt int64
		db.Model(&models.Role{}).Where("name = ?", r.Name).Count(&cnt)
		if cnt == 0 {
			db.Create(&r)
		}
	}

	if cfg.AdminPassword != "" {
		var count int64
		db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
		if count == 0 {
			var role models.Role
			if err := db.Where("name = ?", models.RoleAdministrator).First(&role).Error; err != nil {
				log.Error().Err(err).Msg("failed to find administrator role")
			}
			rid := role.ID
			hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
			if err != nil {
				log.Error().Err(err).Msg("failed to hash admin password")
			} else if err := db.Create(&models.User{Username: "admin", HashedPassword: hashed, RoleID: &rid}).Error; err != nil {
				log.Error().Err(err).Msg("failed to seed admin user")
			} else {
				log.Info().Msg("seeded admin user")
			}
		}
	}

	var n int64
	db.Model(&models.Event{}).Count(&n)
	if n == 0 {
		row := models.FromCatalog(sampleEvent(), "", "seeded on first start")
		if err := db.Create(&row).Error; err != nil {
			log.Warn().Err(err).Msg("failed to seed sample event")
		}
	}
}

// loadDBEvents returns every valid stored event in insertion order.
func loadDBEvents() ([]events.Event, error) {
	if db == nil {
		return nil, errNoDB
	}
	return models.LoadCatalog(db)
}
