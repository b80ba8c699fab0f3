// Package repository provides the interfaces of storage.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/KretovDmitry/tinyurl/internal/config"
	"github.com/KretovDmitry/tinyurl/internal/errs"
	"github.com/KretovDmitry/tinyurl/internal/logger"
	"github.com/KretovDmitry/tinyurl/internal/models"
	"github.com/KretovDmitry/tinyurl/internal/repository/filestore"
	"github.com/KretovDmitry/tinyurl/internal/repository/memstore"
	"github.com/KretovDmitry/tinyurl/internal/repository/postgres"
	"github.com/KretovDmitry/tinyurl/internal/repository/redisstore"
	"github.com/KretovDmitry/tinyurl/internal/repository/sqlite"
	"github.com/redis/go-redis/v9"
	sqldblogger "github.com/simukti/sqldb-logger"
)

// Interface of the URL storage.
type URLStorage interface {
	// InsertOrGet atomically stores the pair unless the url is already
	// stored (ExistingForURL with its id) or the id is taken (IDConflict).
	InsertOrGet(ctx context.Context, id models.ShortID, url models.OriginalURL) (models.InsertResult, error)

	// GetByID retrieves the original URL by its short ID.
	GetByID(ctx context.Context, id models.ShortID) (models.OriginalURL, error)

	// EnsureSchema creates the storage structures if needed. Idempotent.
	EnsureSchema(ctx context.Context) error

	// Ping checks the health of the storage.
	Ping(ctx context.Context) error

	// Close releases the storage resources.
	Close() error
}

// Interface implementation guards.
var (
	_ URLStorage = (*postgres.URLRepository)(nil)
	_ URLStorage = (*sqlite.URLRepository)(nil)
	_ URLStorage = (*redisstore.URLRepository)(nil)
	_ URLStorage = (*filestore.FileStore)(nil)
	_ URLStorage = (*memstore.URLRepository)(nil)
)

const pingTimeout = 5 * time.Second

// NewURLStore returns one of the URLStorage implementations based on
// the configuration and prepares its schema. The first configured option
// wins in the order: postgres, sqlite, redis, file, memory.
func NewURLStore(ctx context.Context, cfg *config.Config, logger logger.Logger) (URLStorage, error) {
	// Check for dependencies that can lead to panic.
	if cfg == nil {
		return nil, fmt.Errorf("%w: config", errs.ErrNilDependency)
	}
	if logger == nil {
		return nil, fmt.Errorf("%w: logger", errs.ErrNilDependency)
	}

	store, err := open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if err = store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return store, nil
}

func open(ctx context.Context, cfg *config.Config, logger logger.Logger) (URLStorage, error) {
	switch {
	case cfg.Storage.DSN != "":
		db, err := openSQL(ctx, "pgx", cfg.Storage.DSN, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("postgres storage initialized")
		return postgres.NewURLRepository(db, logger)

	case cfg.Storage.SQLitePath != "":
		db, err := openSQL(ctx, "sqlite3", sqlite.DSN(cfg.Storage.SQLitePath), logger)
		if err != nil {
			return nil, err
		}
		logger.Infof("sqlite storage initialized at: %q", cfg.Storage.SQLitePath)
		return sqlite.NewURLRepository(db, logger)

	case cfg.Storage.RedisURL != "":
		opts, err := redis.ParseURL(cfg.Storage.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis url: %w", err)
		}
		client := redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err = client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.Infof("redis storage initialized at: %q", opts.Addr)
		return redisstore.NewURLRepository(client, logger)

	case cfg.Storage.FileStoragePath != "":
		store, err := filestore.NewFileStore(cfg.Storage.FileStoragePath)
		if err != nil {
			return nil, fmt.Errorf("new file repository: %w", err)
		}
		logger.Infof("file storage initialized at: %q", cfg.Storage.FileStoragePath)
		return store, nil

	default:
		logger.Info("no storage configured, using in memory storage")
		return memstore.NewURLRepository(), nil
	}
}

// openSQL opens the database with every query logged and checks connectivity.
func openSQL(ctx context.Context, driver, dsn string, logger logger.Logger) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open the database: %w", err)
	}

	// Log every query to the database.
	db = sqldblogger.OpenDriver(dsn, db.Driver(), logger,
		sqldblogger.WithMinimumLevel(sqldblogger.LevelDebug),
	)

	// Check connectivity and DSN correctness.
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	return db, nil
}
