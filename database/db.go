package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"supplier-compliance-backend/config"
)

var DB *gorm.DB

// Connect opens the configured database and stores it in DB.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "postgres", "":
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gcfg)
	case "sqlite":
		db, err = OpenSQLite(cfg.SQLitePath, gcfg)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	DB = db
	return db, nil
}

// OpenSQLite opens a pure-Go SQLite database with foreign keys enforced.
// ":memory:" databases are pinned to one connection so every query sees the same data.
func OpenSQLite(path string, gcfg *gorm.Config) (*gorm.DB, error) {
	if gcfg == nil {
		gcfg = &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	}
	db, err := gorm.Open(sqlite.Open(path+"?_pragma=foreign_keys(1)"), gcfg)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// GetDB returns the request transaction opened by middlewares.RequestTx, or the shared DB.
func GetDB(c *fiber.Ctx) (*gorm.DB, error) {
	if v := c.Locals("tx"); v != nil {
		if tx, ok := v.(*gorm.DB); ok && tx != nil {
			return tx, nil
		}
	}
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	return DB.WithContext(c.UserContext()), nil
}
