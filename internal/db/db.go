package db

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sujalbistaa/bookit/internal/models"
)

type Options struct {
	MaxOpenConns int
	MaxIdleConns int
}

// Open connects to the database named by databaseURL. It must start with
// postgres:// (or postgresql://) or sqlite://.
func Open(databaseURL string, opts Options, log *zap.Logger) (*gorm.DB, error) {
	if databaseURL == "" {
		databaseURL = "sqlite://bookit.db"
		log.Info("DATABASE_URL not set, defaulting to sqlite", zap.String("path", "bookit.db"))
	}

	var dialector gorm.Dialector
	isSQLite := false

	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		dialector = postgres.Open(databaseURL)
		log.Info("Connecting to PostgreSQL database")
	case strings.HasPrefix(databaseURL, "sqlite://"):
		dsn := sqliteDSN(strings.TrimPrefix(databaseURL, "sqlite://"))
		dialector = sqlite.Open(dsn)
		isSQLite = true
		log.Info("Connecting to SQLite database", zap.String("dsn", dsn))
	default:
		return nil, fmt.Errorf("invalid DATABASE_URL prefix: must start with 'postgres://' or 'sqlite://'")
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if isSQLite {
		// SQLite has a single writer; one connection turns every
		// transaction into a serialized one instead of a SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxIdleConns(valueOr(opts.MaxIdleConns, 10))
		sqlDB.SetMaxOpenConns(valueOr(opts.MaxOpenConns, 100))
	}

	log.Info("Database connection established")
	return db, nil
}

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.SavedPost{},
		&models.Post{},
		&models.Review{},
		&models.Comment{},
		&models.Like{},
		&models.Product{},
		&models.ProductReview{},
		&models.Order{},
		&models.OrderItem{},
		&models.Report{},
	)
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "_pragma=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func valueOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
