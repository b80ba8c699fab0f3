// Package shortener allocates short IDs for long URLs and resolves them back.
//
// The service keeps no state of its own: uniqueness of IDs and URLs is
// enforced by the store, whose insert-or-get is a single atomic operation.
// Any number of service instances may share one store.
package shortener

import (
	"context"
	"errors"
	"fmt"

	"github.com/KretovDmitry/tinyurl/internal/errs"
	"github.com/KretovDmitry/tinyurl/internal/logger"
	"github.com/KretovDmitry/tinyurl/internal/models"
	"github.com/KretovDmitry/tinyurl/internal/repository"
	"github.com/KretovDmitry/tinyurl/internal/shorturl"
)

// Service coordinates ID generation and the store.
type Service struct {
	store      repository.URLStorage
	gen        shorturl.Generator
	logger     logger.Logger
	maxRetries int
}

// NewService creates a new service. maxRetries is the number of extra
// attempts made after the first candidate ID collides.
func NewService(
	store repository.URLStorage,
	gen shorturl.Generator,
	logger logger.Logger,
	maxRetries int,
) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store", errs.ErrNilDependency)
	}
	if gen == nil {
		return nil, fmt.Errorf("%w: generator", errs.ErrNilDependency)
	}
	if logger == nil {
		return nil, fmt.Errorf("%w: logger", errs.ErrNilDependency)
	}
	if maxRetries < 0 {
		return nil, fmt.Errorf("negative max retries: %d", maxRetries)
	}

	return &Service{
		store:      store,
		gen:        gen,
		logger:     logger,
		maxRetries: maxRetries,
	}, nil
}

// Allocate returns the short ID of url, creating a record if the url
// is not stored yet. Submitting the same url again returns the same ID.
//
// A candidate ID taken by another url is discarded and a new one is
// generated, at most maxRetries times; after that an
// *errs.AllocationExhaustedError is returned. Store errors are returned
// without retrying; a url the store rejects matches errs.ErrInvalidRequest.
func (s *Service) Allocate(ctx context.Context, url models.OriginalURL) (models.ShortID, error) {
	if url == "" {
		return "", fmt.Errorf("%w: empty url", errs.ErrInvalidRequest)
	}

	l := s.logger.With(ctx)

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		candidate := s.gen.Generate()

		res, err := s.store.InsertOrGet(ctx, candidate, url)
		if err != nil {
			if errors.Is(err, errs.ErrInvalidRequest) {
				l.Debugf("allocate %q: %v", url, err)
			} else {
				l.Errorf("allocate %q: %v", url, err)
			}
			return "", fmt.Errorf("insert or get: %w", err)
		}

		switch res.Outcome {
		case models.Inserted:
			l.Debugf("allocated %q for %q", res.ID, url)
			return res.ID, nil
		case models.ExistingForURL:
			l.Debugf("found %q for %q", res.ID, url)
			return res.ID, nil
		case models.IDConflict:
			l.Debugf("candidate %q collided, attempt %d", candidate, attempt+1)
		default:
			err = fmt.Errorf("unexpected insert outcome: %s", res.Outcome)
			l.Error(err)
			return "", err
		}
	}

	err := &errs.AllocationExhaustedError{Retries: s.maxRetries}
	l.Warnf("allocate %q: %v", url, err)

	return "", err
}

// Resolve returns the original URL stored under id.
// The returned error matches errs.ErrNotFound when there is no such record.
func (s *Service) Resolve(ctx context.Context, id models.ShortID) (models.OriginalURL, error) {
	url, err := s.store.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			s.logger.With(ctx).Errorf("resolve %q: %v", id, err)
		}
		return "", err
	}
	return url, nil
}

// Ping checks that the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
