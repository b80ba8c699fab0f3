// Package sqlite provides a URL storage backed by an SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/KretovDmitry/tinyurl/internal/errs"
	"github.com/KretovDmitry/tinyurl/internal/logger"
	"github.com/KretovDmitry/tinyurl/internal/models"
	"github.com/KretovDmitry/tinyurl/migrations"
	"github.com/mattn/go-sqlite3"
)

// busyTimeoutMS is how long a writer waits for the database lock.
const busyTimeoutMS = 5000

// DSN builds the data source name of the database file at path.
func DSN(path string) string {
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=%d", path, busyTimeoutMS)
}

// URLRepository stores URL records in the urls table of an SQLite database.
type URLRepository struct {
	db     *sql.DB
	logger logger.Logger
}

// NewURLRepository creates a new repository on top of an open database.
// SQLite has a single writer, so the pool is limited to one connection.
func NewURLRepository(db *sql.DB, logger logger.Logger) (*URLRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: *sql.DB", errs.ErrNilDependency)
	}
	if logger == nil {
		return nil, fmt.Errorf("%w: logger", errs.ErrNilDependency)
	}
	db.SetMaxOpenConns(1)
	return &URLRepository{db: db, logger: logger}, nil
}

// EnsureSchema applies the migrations of the urls table.
func (r *URLRepository) EnsureSchema(context.Context) error {
	return migrations.UpSQLite(r.db)
}

// InsertOrGet inserts the record in a single upsert statement.
//
// The upsert targets the url only, so the returned id differs from the
// candidate exactly when the url was already stored. A duplicate id
// fails the statement with a constraint error and writes nothing.
func (r *URLRepository) InsertOrGet(
	ctx context.Context,
	id models.ShortID,
	url models.OriginalURL,
) (models.InsertResult, error) {
	const q = `
		INSERT INTO urls
			(id, url)
		VALUES
			(?, ?)
		ON CONFLICT (url) DO UPDATE
			SET url = excluded.url
		RETURNING
			id
	`

	var gotID string
	err := r.db.QueryRowContext(ctx, q, string(id), string(url)).Scan(&gotID)
	if err != nil {
		if isIDConflict(err) {
			r.logger.Debugf("short id %q is taken", id)
			return models.InsertResult{Outcome: models.IDConflict}, nil
		}
		return models.InsertResult{}, fmt.Errorf("insert url with query (%s): %w",
			formatQuery(q), err)
	}

	if models.ShortID(gotID) != id {
		return models.InsertResult{Outcome: models.ExistingForURL, ID: models.ShortID(gotID)}, nil
	}

	return models.InsertResult{Outcome: models.Inserted, ID: id}, nil
}

// GetByID retrieves the original URL by its short ID.
func (r *URLRepository) GetByID(ctx context.Context, id models.ShortID) (models.OriginalURL, error) {
	const q = `
		SELECT
			url
		FROM
			urls
		WHERE
			id = ?
	`

	var url string
	err := r.db.QueryRowContext(ctx, q, string(id)).Scan(&url)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", id, errs.ErrNotFound)
		}
		return "", fmt.Errorf("retrieve url with query (%s): %w", formatQuery(q), err)
	}

	return models.OriginalURL(url), nil
}

// Ping verifies the database file is reachable.
func (r *URLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database.
func (r *URLRepository) Close() error {
	return r.db.Close()
}

func isIDConflict(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code != sqlite3.ErrConstraint {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// formatQuery removes tabs and replaces newlines with spaces in the given query string.
func formatQuery(q string) string {
	return strings.TrimSpace(
		strings.ReplaceAll(strings.ReplaceAll(q, "\t", ""), "\n", " "),
	)
}
