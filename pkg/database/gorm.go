package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

type Options struct {
	Dialect  string
	DSN      string
	LogLevel logger.LogLevel
}

func getLogger(level logger.LogLevel) logger.Interface {
	if level == 0 {
		level = logger.Warn
	}
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  true,
		},
	)
}

func configureConnectionPool(db *gorm.DB, dialect string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	// SQLite serializes writers; a single connection also keeps an in-memory
	// database alive for the lifetime of the pool.
	if dialect == DialectSQLite {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		return nil
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return nil
}

// Open connects to the configured dialect. Duplicate-key violations are
// translated to gorm.ErrDuplicatedKey on every dialect.
func Open(opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Dialect {
	case "", DialectPostgres:
		if opts.DSN == "" {
			return nil, fmt.Errorf("database: DSN is required for postgres")
		}
		dialector = postgres.Open(opts.DSN)
	case DialectSQLite:
		dsn := opts.DSN
		if dsn == "" {
			dsn = "file::memory:?cache=shared"
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("database: unsupported dialect %q", opts.Dialect)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         getLogger(opts.LogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	dialect := opts.Dialect
	if dialect == "" {
		dialect = DialectPostgres
	}
	if err := configureConnectionPool(db, dialect); err != nil {
		return nil, err
	}

	return db, nil
}

func NewGormDBFromDSN(dsn string) (*gorm.DB, error) {
	return Open(Options{Dialect: DialectPostgres, DSN: dsn, LogLevel: logger.Info})
}
