// Package shorturl generates candidate short IDs.
//
// A generated ID is random and only probably unique: with the default
// alphabet of 64 characters and length 6 there are 64^6 possible IDs.
// Callers that persist IDs must handle collisions themselves.
package shorturl

import (
	"errors"
	"fmt"

	"github.com/KretovDmitry/tinyurl/internal/models"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Generator produces candidate short IDs.
type Generator interface {
	// Generate returns a new random short ID. It never fails.
	Generate() models.ShortID
}

// NanoID generates fixed-length IDs over a fixed alphabet
// using a cryptographically secure random source.
type NanoID struct {
	alphabet string
	length   int
}

var _ Generator = (*NanoID)(nil)

// NewNanoID validates the alphabet and length up front, so that
// Generate can never fail afterwards.
func NewNanoID(alphabet string, length int) (*NanoID, error) {
	if length <= 0 {
		return nil, fmt.Errorf("invalid id length: %d", length)
	}
	if len(alphabet) < 2 || len(alphabet) > 255 {
		return nil, fmt.Errorf("alphabet size must be in [2, 255], got %d",
			len(alphabet))
	}
	if !uniqueChars(alphabet) {
		return nil, errors.New("alphabet contains repeated characters")
	}
	return &NanoID{alphabet: alphabet, length: length}, nil
}

// Generate returns a new random short ID.
func (g *NanoID) Generate() models.ShortID {
	return models.ShortID(gonanoid.MustGenerate(g.alphabet, g.length))
}

// Length returns the length of generated IDs.
func (g *NanoID) Length() int {
	return g.length
}

func uniqueChars(s string) bool {
	seen := make(map[rune]struct{}, len(s))
	for _, r := range s {
		if _, ok := seen[r]; ok {
			return false
		}
		seen[r] = struct{}{}
	}
	return true
}
