// Package filestore provides a URL storage persisted as a JSON lines file.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/KretovDmitry/tinyurl/internal/errs"
	"github.com/KretovDmitry/tinyurl/internal/models"
	"github.com/KretovDmitry/tinyurl/internal/repository/memstore"
)

// Producer is a struct that represents a producer for writing URL records to a file.
type Producer struct {
	// file is the underlying file handle for writing records.
	file *os.File
	// encoder is the JSON encoder used to write records to the file.
	encoder *json.Encoder
}

// NewProducer creates a new Producer instance for appending URL records to a file.
func NewProducer(fileName string) (*Producer, error) {
	file, err := os.OpenFile(fileName, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return nil, err
	}
	return &Producer{
		file:    file,
		encoder: json.NewEncoder(file),
	}, nil
}

// WriteRecord writes a URL record to the file using the JSON encoder.
func (p *Producer) WriteRecord(record *models.URL) error {
	return p.encoder.Encode(record)
}

// Close closes the underlying file.
func (p *Producer) Close() error {
	return p.file.Close()
}

// Consumer is a struct that represents a consumer for reading URL records from a file.
type Consumer struct {
	// file is the underlying file handle for reading records.
	file *os.File
	// decoder is the JSON decoder used to read records from the file.
	decoder *json.Decoder
}

// NewConsumer creates a new Consumer instance for reading URL records from a file.
func NewConsumer(fileName string) (*Consumer, error) {
	file, err := os.OpenFile(fileName, os.O_RDONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		file:    file,
		decoder: json.NewDecoder(file),
	}, nil
}

// ReadRecord reads a URL record from the file using the JSON decoder.
func (c *Consumer) ReadRecord() (*models.URL, error) {
	record := new(models.URL)
	if err := c.decoder.Decode(record); err != nil {
		return nil, err
	}

	return record, nil
}

// Close closes the underlying file.
func (c *Consumer) Close() error {
	return c.file.Close()
}

// FileStore is a file-based storage of URL records.
// All records are kept in memory and every new record is appended to the file.
type FileStore struct {
	// cache is an in memory instance of URL repository
	// used for caching URL records.
	cache *memstore.URLRepository
	// file is a Producer instance used for writing URL records to the file.
	file *Producer
	// path is the location of the file.
	path string
	// mu serializes inserts so that the cache and the file agree.
	mu sync.Mutex
}

// NewFileStore creates a new FileStore backed by the file at path.
// Records already present in the file are loaded by EnsureSchema.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("empty file storage path")
	}
	return &FileStore{
		cache: memstore.NewURLRepository(),
		path:  path,
	}, nil
}

// EnsureSchema replays the file into the cache and opens it for appending.
// Calling it again is a no-op.
func (fs *FileStore) EnsureSchema(context.Context) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.file != nil {
		return nil
	}

	consumer, err := NewConsumer(fs.path)
	if err != nil {
		return fmt.Errorf("new consumer: %w", err)
	}
	defer consumer.Close()

	for {
		record, err := consumer.ReadRecord()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read record: %w", err)
		}
		fs.cache.Restore(record)
	}

	producer, err := NewProducer(fs.path)
	if err != nil {
		return fmt.Errorf("new producer: %w", err)
	}

	fs.file = producer

	return nil
}

// InsertOrGet stores the pair in the cache and appends it to the file.
// Conflicts are resolved by the cache and never reach the file.
func (fs *FileStore) InsertOrGet(
	ctx context.Context,
	id models.ShortID,
	url models.OriginalURL,
) (models.InsertResult, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.file == nil {
		return models.InsertResult{}, errors.New("file storage is not initialized")
	}

	res, err := fs.cache.InsertOrGet(ctx, id, url)
	if err != nil || res.Outcome != models.Inserted {
		return res, err
	}

	if err = fs.file.WriteRecord(models.NewRecord(id, url)); err != nil {
		fs.cache.Remove(id)
		return models.InsertResult{}, fmt.Errorf("write record: %w", err)
	}

	return res, nil
}

// GetByID retrieves a URL record from the cache by its short ID.
func (fs *FileStore) GetByID(ctx context.Context, id models.ShortID) (models.OriginalURL, error) {
	return fs.cache.GetByID(ctx, id)
}

// Ping checks that the file is still open for writing.
// After Close it returns errs.ErrDBNotConnected.
func (fs *FileStore) Ping(context.Context) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.file == nil {
		return errs.ErrDBNotConnected
	}
	if _, err := fs.file.file.Stat(); err != nil {
		return fmt.Errorf("stat %s: %w", fs.path, err)
	}
	return nil
}

// Close closes the file.
func (fs *FileStore) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.file == nil {
		return nil
	}
	err := fs.file.Close()
	fs.file = nil
	return err
}
