package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"portfolio/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// openDB connects to the configured database. Postgres is used in
// production, SQLite for local development and tests.
func openDB(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	case "sqlite", "sqlite3", "":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(log.New(os.Stderr, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s database: %w", driver, err)
	}
	return gdb, nil
}

func initDB() error {
	gdb, err := openDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	db = gdb
	if cfg.DBAutoMigrate {
		migrate(db)
	}
	return nil
}

// migrate runs AutoMigrate per model so a failure on one table does not
// block the others. Failures are logged and ignored.
func migrate(gdb *gorm.DB) {
	tables := []struct {
		name  string
		model any
	}{
		{"admin_users", &models.AdminUser{}},
		{"personal_info", &models.PersonalInfo{}},
		{"technologies", &models.Technology{}},
		{"skills", &models.Skill{}},
		{"experiences", &models.Experience{}},
		{"education", &models.Education{}},
		{"projects", &models.Project{}},
	}
	for _, t := range tables {
		if err := gdb.AutoMigrate(t.model); err != nil {
			slog.Warn("migration warning", "table", t.name, "err", err)
		}
	}
}

// orderCol orders by a column name, quoted so reserved words such as
// "order" are safe.
func orderCol(name string, desc bool) clause.OrderByColumn {
	return clause.OrderByColumn{Column: clause.Column{Name: name}, Desc: desc}
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "UNIQUE constraint") || strings.Contains(s, "unique constraint")
}
