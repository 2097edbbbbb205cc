package sqlite

import (
	"fmt"
	"time"

	"memento/internal/domain/entity"
	"memento/internal/pkg/logger"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// MemoryDSN opens a private in-memory database, used by tests.
const MemoryDSN = ":memory:"

// NewDB opens the SQLite database at dsn and migrates the schema. SQL statements are
// logged through log: slow ones as warnings, errors always.
func NewDB(dsn string, log logger.Logger) (*gorm.DB, error) {
	newLogger := gormlogger.New(
		log,
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to database %s", dsn)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get underlying *sql.DB")
	}
	// every new connection to ":memory:" would see its own empty database
	if dsn == MemoryDSN {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := AutoMigrate(db); err != nil {
		sqlDB.Close()
		return nil, err
	}
	log.Info(fmt.Sprintf("Connected to database %s", dsn))
	return db, nil
}

// AutoMigrate automatically migrates the database schema for the defined entities.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entity.UserConfig{},
		&reminderRow{},
	)
	if err != nil {
		return errors.Wrap(err, "schema migration failed")
	}
	return nil
}

// CloseDB closes the database connection.
func CloseDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get underlying *sql.DB")
	}
	return sqlDB.Close()
}
