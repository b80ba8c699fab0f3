// Package postgres provides a URL storage backed by PostgreSQL.
package postgres

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
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// pkeyConstraint is the primary key of the urls table, see migrations.
const pkeyConstraint = "urls_pkey"

// URLRepository stores URL records in the urls table.
type URLRepository struct {
	db     *sql.DB
	logger logger.Logger
}

// NewURLRepository creates a new repository on top of an open database.
func NewURLRepository(db *sql.DB, logger logger.Logger) (*URLRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: *sql.DB", errs.ErrNilDependency)
	}
	if logger == nil {
		return nil, fmt.Errorf("%w: logger", errs.ErrNilDependency)
	}
	return &URLRepository{db: db, logger: logger}, nil
}

// EnsureSchema applies the migrations of the urls table.
func (r *URLRepository) EnsureSchema(context.Context) error {
	return migrations.UpPostgres(r.db)
}

// InsertOrGet inserts the record in a single statement.
//
// A conflict on the url is resolved by the ON CONFLICT clause, which
// returns the id already stored for it; xmax is zero only for freshly
// inserted rows. A conflict on the id is not an arbiter of the statement,
// so it surfaces as a violation of the primary key and nothing is written.
// A url the database cannot encode is reported as errs.ErrInvalidRequest.
func (r *URLRepository) InsertOrGet(
	ctx context.Context,
	id models.ShortID,
	url models.OriginalURL,
) (models.InsertResult, error) {
	const q = `
		INSERT INTO urls
			(id, url)
		VALUES
			($1, $2)
		ON CONFLICT (url) DO UPDATE
			SET url = EXCLUDED.url
		RETURNING
			id, (xmax = 0) AS inserted
	`

	var (
		gotID    string
		inserted bool
	)

	err := r.db.QueryRowContext(ctx, q, string(id), string(url)).Scan(&gotID, &inserted)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgerrcode.UniqueViolation && pgErr.ConstraintName == pkeyConstraint {
				r.logger.Debugf("short id %q is taken", id)
				return models.InsertResult{Outcome: models.IDConflict}, nil
			}
			if isEncodingError(pgErr) {
				return models.InsertResult{}, fmt.Errorf("%w: %s", errs.ErrInvalidRequest, pgErr.Message)
			}
			// create a new error with additional context
			return models.InsertResult{}, fmt.Errorf("insert url with query (%s): %w",
				formatQuery(q), formatPgError(pgErr),
			)
		}

		return models.InsertResult{}, fmt.Errorf("insert url with query (%s): %w",
			formatQuery(q), err)
	}

	if !inserted {
		return models.InsertResult{Outcome: models.ExistingForURL, ID: models.ShortID(gotID)}, nil
	}

	return models.InsertResult{Outcome: models.Inserted, ID: models.ShortID(gotID)}, nil
}

// GetByID retrieves the original URL by its short ID.
// If the record does not exist, ErrNotFound is returned. An ID the
// database cannot encode was never allocated, so it is not found either.
func (r *URLRepository) GetByID(ctx context.Context, id models.ShortID) (models.OriginalURL, error) {
	const q = `
		SELECT
			url
		FROM
			urls
		WHERE
			id = $1
	`

	var url string
	err := r.db.QueryRowContext(ctx, q, string(id)).Scan(&url)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", id, errs.ErrNotFound)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if isEncodingError(pgErr) {
				return "", fmt.Errorf("%q: %w", id, errs.ErrNotFound)
			}
			// Create a new error with additional context.
			return "", fmt.Errorf("retrieve url with query (%s): %w",
				formatQuery(q), formatPgError(pgErr),
			)
		}

		return "", fmt.Errorf("retrieve url with query (%s): %w", formatQuery(q), err)
	}

	return models.OriginalURL(url), nil
}

// Ping verifies the connection to the database is alive.
func (r *URLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database.
func (r *URLRepository) Close() error {
	return r.db.Close()
}

// isEncodingError reports whether a parameter was rejected
// as invalid in the database encoding, e.g. a NUL byte.
func isEncodingError(pgErr *pgconn.PgError) bool {
	return pgErr.Code == pgerrcode.CharacterNotInRepertoire ||
		pgErr.Code == pgerrcode.UntranslatableCharacter
}

// formatQuery removes tabs and replaces newlines with spaces in the given query string.
func formatQuery(q string) string {
	return strings.TrimSpace(
		strings.ReplaceAll(strings.ReplaceAll(q, "\t", ""), "\n", " "),
	)
}

// formatPgError formats a PgError into a human-friendly error message.
func formatPgError(err *pgconn.PgError) error {
	return fmt.Errorf("SQL Error: %s, Detail: %s, Where: %s, Code: %s, SQLState: %s",
		err.Message,
		err.Detail,
		err.Where,
		err.Code,
		err.SQLState(),
	)
}
