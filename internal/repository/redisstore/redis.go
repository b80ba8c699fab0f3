// Package redisstore provides a URL storage backed by Redis.
//
// Every record is kept under two keys, one per direction of the mapping.
// Both keys are written by a single Lua script, so an insert is atomic
// with respect to concurrent writers.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/KretovDmitry/tinyurl/internal/errs"
	"github.com/KretovDmitry/tinyurl/internal/logger"
	"github.com/KretovDmitry/tinyurl/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	idKeyPrefix  = "tinyurl:id:"
	urlKeyPrefix = "tinyurl:url:"
)

// Result codes of the insert script.
const (
	codeInserted int64 = iota
	codeExisting
	codeIDConflict
)

// KEYS[1] id key, KEYS[2] url key, ARGV[1] id, ARGV[2] url.
var insertOrGet = redis.NewScript(`
local existing = redis.call('GET', KEYS[2])
if existing then
	return {1, existing}
end
if redis.call('EXISTS', KEYS[1]) == 1 then
	return {2, ''}
end
redis.call('SET', KEYS[1], ARGV[2])
redis.call('SET', KEYS[2], ARGV[1])
return {0, ARGV[1]}
`)

// URLRepository stores URL records in Redis.
type URLRepository struct {
	client *redis.Client
	logger logger.Logger
}

// NewURLRepository creates a new repository using the given client.
func NewURLRepository(client *redis.Client, logger logger.Logger) (*URLRepository, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: redis client", errs.ErrNilDependency)
	}
	if logger == nil {
		return nil, fmt.Errorf("%w: logger", errs.ErrNilDependency)
	}
	return &URLRepository{client: client, logger: logger}, nil
}

// EnsureSchema loads the insert script into the server script cache.
func (r *URLRepository) EnsureSchema(ctx context.Context) error {
	if err := insertOrGet.Load(ctx, r.client).Err(); err != nil {
		return fmt.Errorf("load insert script: %w", err)
	}
	return nil
}

// InsertOrGet runs the insert script for the pair.
func (r *URLRepository) InsertOrGet(
	ctx context.Context,
	id models.ShortID,
	url models.OriginalURL,
) (models.InsertResult, error) {
	keys := []string{idKey(id), urlKey(url)}

	reply, err := insertOrGet.Run(ctx, r.client, keys, string(id), string(url)).Slice()
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("run insert script: %w", err)
	}

	code, gotID, err := parseReply(reply)
	if err != nil {
		return models.InsertResult{}, err
	}

	switch code {
	case codeInserted:
		return models.InsertResult{Outcome: models.Inserted, ID: gotID}, nil
	case codeExisting:
		return models.InsertResult{Outcome: models.ExistingForURL, ID: gotID}, nil
	case codeIDConflict:
		r.logger.Debugf("short id %q is taken", id)
		return models.InsertResult{Outcome: models.IDConflict}, nil
	default:
		return models.InsertResult{}, fmt.Errorf("unexpected insert script code: %d", code)
	}
}

// GetByID retrieves the original URL by its short ID.
func (r *URLRepository) GetByID(ctx context.Context, id models.ShortID) (models.OriginalURL, error) {
	url, err := r.client.Get(ctx, idKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("%s: %w", id, errs.ErrNotFound)
		}
		return "", fmt.Errorf("get %s: %w", idKey(id), err)
	}
	return models.OriginalURL(url), nil
}

// Ping checks the connection to Redis.
func (r *URLRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the client.
func (r *URLRepository) Close() error {
	return r.client.Close()
}

func parseReply(reply []any) (int64, models.ShortID, error) {
	if len(reply) != 2 {
		return 0, "", fmt.Errorf("unexpected insert script reply: %v", reply)
	}
	code, ok := reply[0].(int64)
	if !ok {
		return 0, "", fmt.Errorf("unexpected insert script code type: %T", reply[0])
	}
	id, ok := reply[1].(string)
	if !ok {
		return 0, "", fmt.Errorf("unexpected insert script id type: %T", reply[1])
	}
	return code, models.ShortID(id), nil
}

func idKey(id models.ShortID) string {
	return idKeyPrefix + string(id)
}

func urlKey(url models.OriginalURL) string {
	return urlKeyPrefix + string(url)
}
