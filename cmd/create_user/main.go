package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"umahelper/models"
	"umahelper/pkg/config"
	"umahelper/pkg/logging"
)

const minPasswordLen = 6

func main() {
	username := flag.String("username", "", "username to create")
	password := flag.String("password", "", "plaintext password (min 6 chars)")
	roleName := flag.String("role", models.RoleUser, "role: administrator, editor or user")
	reset := flag.Bool("reset", false, "reset the password of an existing user instead")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Setup(cfg.LogLevel, cfg.LogPretty)

	if *username == "" || *password == "" {
		fmt.Println("usage: go run ./cmd/create_user -username <name> -password <pw> [-role editor] [-reset]")
		os.Exit(2)
	}
	if len(*password) < minPasswordLen {
		log.Fatal().Msg("password too short (min 6)")
	}
	if strings.TrimSpace(cfg.DBDSN) == "" {
		log.Fatal().Msg("DB_DSN not set in environment")
	}
	db, err := gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open db")
	}

	hpw, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt failed")
	}

	var existing models.User
	err = db.Where("username = ?", *username).First(&existing).Error
	switch {
	case err == nil && *reset:
		if err := db.Model(&existing).Update("hashed_password", hpw).Error; err != nil {
			log.Fatal().Err(err).Msg("failed to reset password")
		}
		fmt.Printf("password reset for %s (id=%d)\n", existing.Username, existing.ID)
		return
	case err == nil:
		fmt.Printf("user %s already exists (id=%d)\n", *username, existing.ID)
		return
	case !errors.Is(err, gorm.ErrRecordNotFound):
		log.Fatal().Err(err).Msg("lookup failed")
	case *reset:
		log.Fatal().Str("username", *username).Msg("user not found")
	}

	role, err := ensureRole(db, *roleName)
	if err != nil {
		log.Fatal().Err(err).Msg("role")
	}
	rid := role.ID
	user := models.User{Username: *username, HashedPassword: hpw, RoleID: &rid}
	if err := db.Create(&user).Error; err != nil {
		log.Fatal().Err(err).Msg("failed to create user")
	}
	fmt.Printf("created user %s role=%s id=%d\n", user.Username, role.Name, user.ID)
}

// ensureRole returns the named role, creating it from the defaults when missing.
func ensureRole(db *gorm.DB, name string) (models.Role, error) {
	var role models.Role
	err := db.Where("name = ?", name).First(&role).Error
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return role, err
	}
	for _, r := range models.DefaultRoles() {
		if r.Name == name {
			role = r
			return role, db.Create(&role).Error
		}
	}
	return role, fmt.Errorf("unknown role %q", name)
}
