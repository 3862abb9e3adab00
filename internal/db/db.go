// Package db opens the settings database and migrates its schema.
package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/GoPowerDNS-Admin/plugin-settings/internal/config"
	"github.com/GoPowerDNS-Admin/plugin-settings/internal/db/dsn"
	"github.com/GoPowerDNS-Admin/plugin-settings/internal/db/models"
	gormlogger "github.com/GoPowerDNS-Admin/plugin-settings/internal/logger/adapter/gorm"
)

// Supported values of config.DB.GormEngine.
const (
	EngineSQLite   = "sqlite"
	EngineMySQL    = "mysql"
	EnginePostgres = "postgres"
)

// ErrUnknownEngine is returned for an unsupported GormEngine.
var ErrUnknownEngine = errors.New("unknown gorm engine")

// Open connects to the database selected by cfg.GormEngine.
func Open(cfg config.DB) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.GormEngine {
	case EngineSQLite, "":
		dialector = sqlite.Open(dsn.SQLite(cfg))
	case EngineMySQL:
		dialector = gormmysql.Open(dsn.MySQL(cfg))
	case EnginePostgres:
		dialector = gormpostgres.Open(dsn.Postgres(cfg))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.GormEngine)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(gormlogger.Config{SlowThreshold: cfg.SlowThreshold}),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "failed to access connection pool")
		}

		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	return db, nil
}

// Migrate creates or updates the tables of the settings schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.PluginConfig{},
		&models.PluginSetting{},
		&models.PluginUserSetting{},
	); err != nil {
		return errors.Wrap(err, "failed to migrate database")
	}

	return nil
}
