// Package memstore provides an in-memory URL storage.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/KretovDmitry/tinyurl/internal/errs"
	"github.com/KretovDmitry/tinyurl/internal/models"
)

// URLRepository is an in-memory implementation of the URLStorage interface.
// It keeps both directions of the mapping, so that the uniqueness of
// IDs and of URLs is checked under one lock.
// It is safe for concurrent use.
type URLRepository struct {
	// byID maps short IDs to original URLs.
	byID map[models.ShortID]models.OriginalURL
	// byURL maps original URLs to short IDs.
	byURL map[models.OriginalURL]models.ShortID
	// mu protects both maps.
	mu sync.RWMutex
}

// NewURLRepository creates a new empty in-memory repository.
func NewURLRepository() *URLRepository {
	return &URLRepository{
		byID:  make(map[models.ShortID]models.OriginalURL),
		byURL: make(map[models.OriginalURL]models.ShortID),
	}
}

// InsertOrGet stores the pair unless the URL or the ID is already known.
func (r *URLRepository) InsertOrGet(
	_ context.Context,
	id models.ShortID,
	url models.OriginalURL,
) (models.InsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byURL[url]; ok {
		return models.InsertResult{Outcome: models.ExistingForURL, ID: existing}, nil
	}
	if _, ok := r.byID[id]; ok {
		return models.InsertResult{Outcome: models.IDConflict}, nil
	}

	r.byID[id] = url
	r.byURL[url] = id

	return models.InsertResult{Outcome: models.Inserted, ID: id}, nil
}

// GetByID retrieves the original URL by its short ID.
// If the ID is not found, it returns ErrNotFound.
func (r *URLRepository) GetByID(_ context.Context, id models.ShortID) (models.OriginalURL, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	url, found := r.byID[id]
	if !found {
		return "", fmt.Errorf("%s: %w", id, errs.ErrNotFound)
	}

	return url, nil
}

// Count returns the number of stored records.
func (r *URLRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Restore loads a record without conflict checks.
// It is used to warm the repository from a persistent log.
func (r *URLRepository) Restore(u *models.URL) {
	r.mu.Lock()
	r.byID[u.ID] = u.OriginalURL
	r.byURL[u.OriginalURL] = u.ID
	r.mu.Unlock()
}

// Remove undoes an insert whose persistence failed.
func (r *URLRepository) Remove(id models.ShortID) {
	r.mu.Lock()
	if url, ok := r.byID[id]; ok {
		delete(r.byURL, url)
		delete(r.byID, id)
	}
	r.mu.Unlock()
}

// EnsureSchema has nothing to create for maps.
func (r *URLRepository) EnsureSchema(context.Context) error {
	return nil
}

// Ping always succeeds: the maps live in the process.
func (r *URLRepository) Ping(context.Context) error {
	return nil
}

// Close is a no-op.
func (r *URLRepository) Close() error {
	return nil
}
