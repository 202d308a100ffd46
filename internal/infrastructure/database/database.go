package database

import (
	"fmt"

	"erp-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens the configured database. driver is "postgres" (dsn is a Postgres URL) or "sqlite"
// (dsn is a file path or ":memory:").
func Open(driver, dsn string) (*gorm.DB, error) {
	switch driver {
	case "postgres":
		return OpenPostgres(dsn)
	case "sqlite":
		return OpenSQLite(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// OpenPostgres opens a GORM DB from DSN (Postgres or a pooler URL).
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") when using connection poolers (e.g. PgBouncer).
func OpenPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), gormConfig())
}

// OpenSQLite opens a pure-Go SQLite database. SQLite allows one writer at a time, so the pool is
// capped at a single connection; this also keeps ":memory:" databases shared across queries.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}
}

// AutoMigrate creates or updates the quotation engine tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Quotation{},
		&domain.QuotationItem{},
		&domain.QuotationTerm{},
		&domain.QuotationApproval{},
		&domain.Project{},
	)
}

// Pinger adapts a GORM handle to the health collector's DBPinger.
type Pinger struct {
	DB *gorm.DB
}

func (p *Pinger) Ping() error {
	if p == nil || p.DB == nil {
		return nil
	}
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
