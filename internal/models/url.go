// Package models contains the data models of the shortener.
package models

// ShortID is the fixed-length identifier a long URL is shortened to.
type ShortID string

// OriginalURL is the long URL as submitted by the client.
type OriginalURL string

// URL is the only persistent record: a short ID mapped to its original URL.
// Both fields are unique across all records and never change once stored.
type URL struct {
	ID          ShortID     `json:"id"`
	OriginalURL OriginalURL `json:"url"`
}

// NewRecord creates a new URL record.
func NewRecord(id ShortID, originalURL OriginalURL) *URL {
	return &URL{
		ID:          id,
		OriginalURL: originalURL,
	}
}

// Outcome tells how a store resolved an insert-or-get attempt.
type Outcome int

const (
	// Inserted means the candidate record was stored.
	Inserted Outcome = iota
	// ExistingForURL means the URL was already stored under another ID.
	ExistingForURL
	// IDConflict means the candidate ID is taken by a different URL.
	// Nothing was written.
	IDConflict
)

// String returns a human readable outcome name.
func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case ExistingForURL:
		return "existing_for_url"
	case IDConflict:
		return "id_conflict"
	default:
		return "unknown"
	}
}

// InsertResult is returned by an atomic insert-or-get.
// ID is the effective short ID of the URL and is empty on IDConflict.
type InsertResult struct {
	Outcome Outcome
	ID      ShortID
}
