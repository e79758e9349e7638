package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/catalog/internal/config"
	"github.com/mrlokans/catalog/internal/entities"
)

type Database struct {
	DB     *gorm.DB
	sqlite bool
}

// NewDatabase opens the catalog store. A postgres DSN selects the postgres
// driver, anything else is treated as a SQLite file.
func NewDatabase(dsn string) (*Database, error) {
	return open(dsn, logger.Info)
}

// NewQuietDatabase is NewDatabase without statement logging.
func NewQuietDatabase(dsn string) (*Database, error) {
	return open(dsn, logger.Silent)
}

func open(dsn string, level logger.LogLevel) (*Database, error) {
	isPostgres := config.Database{DSN: dsn}.IsPostgres()

	var dialector gorm.Dialector
	if isPostgres {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(withForeignKeys(dsn))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Authors first, books reference them
	err = db.AutoMigrate(
		&entities.Author{},
		&entities.Book{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if isPostgres {
		log.Printf("Database initialized successfully (postgres)")
	} else {
		log.Printf("Database initialized successfully at %s", dsn)
	}

	return &Database{DB: db, sqlite: !isPostgres}, nil
}

// withForeignKeys turns on SQLite's referential-integrity checks, which are
// off per connection by default.
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}

// IsSQLite reports whether the store is backed by SQLite.
func (d *Database) IsSQLite() bool {
	return d.sqlite
}

// SQLDB exposes the pooled connection for the session store.
func (d *Database) SQLDB() (*sql.DB, error) {
	return d.DB.DB()
}

func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
