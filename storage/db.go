package storage

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"scientify/config"
	"scientify/models"
)

// OpenDB öffnet die relationale Datenbank gemäß DB_DRIVER.
// TranslateError ist aktiv, damit Unique-Verletzungen als gorm.ErrDuplicatedKey ankommen.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}

	switch cfg.DBDriver {
	case "postgres", "":
		return gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
	case "sqlite":
		db, err := gorm.Open(sqlite.Open(cfg.DBPath), gormCfg)
		if err != nil {
			return nil, err
		}
		// SQLite serialisiert Schreibzugriffe ohnehin; eine Verbindung vermeidet "database is locked".
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}

// Migrate legt Tabellen, Join-Tabellen und Unique-Indizes an.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Author{}, &models.Keyword{}, &models.Publication{})
}
