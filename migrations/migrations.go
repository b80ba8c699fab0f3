// Package migrations embeds the SQL schema of the URL table
// and applies it with golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed postgres/*.sql sqlite/*.sql
var fs embed.FS

// UpPostgres runs postgres migrations all the way up.
func UpPostgres(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to init postgres migrate driver: %w", err)
	}
	return up("postgres", driver)
}

// UpSQLite runs sqlite migrations all the way up.
func UpSQLite(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to init sqlite migrate driver: %w", err)
	}
	return up("sqlite", driver)
}

// up applies the migrations from the embedded directory dir.
// Running it against an up to date database is not an error.
func up(dir string, driver database.Driver) error {
	d, err := iofs.New(fs, dir)
	if err != nil {
		return fmt.Errorf("failed to init io/fs driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, dir, driver)
	if err != nil {
		return fmt.Errorf("failed to init migrate instance: %w", err)
	}

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
