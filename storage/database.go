package storage

import (
	"fmt"
	"strings"

	"govstay-server/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open connects to Postgres, or to SQLite when the DSN starts with "sqlite:".
// TranslateError lets callers match gorm.ErrDuplicatedKey on unique violations.
func Open(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "sqlite:") {
		dialector = sqlite.Open(strings.TrimPrefix(dsn, "sqlite:"))
	} else {
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("error connection to db: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Hotel{},
		&models.Booking{},
		&models.RoomNight{},
		&models.PublicBooking{},
		&models.AuditLog{},
	)
}

func InitializeDB(dsn string, migrate bool, log *logrus.Logger) (*gorm.DB, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := Migrate(db); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info("database schema migrated")
	}
	DB = db
	return db, nil
}
