// Package history keeps the report of the last run per store and document.
//
// Reports are keyed by a hash of the store locator and document id, so the
// same document opened through different stores keeps separate histories.
// [FileStore] writes one JSON file per key under a directory; [NullStore]
// discards everything and is used when history is disabled.
package history

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rajithraghunath/roomtag/pkg/placement"
)

// Entry is one stored report.
type Entry struct {
	Store    string            `json:"store"`
	Document string            `json:"document"`
	SavedAt  time.Time         `json:"saved_at"`
	Report   *placement.Report `json:"report"`
}

// Store persists last-run reports.
type Store interface {
	// Save records the report as the latest for (store, document).
	Save(ctx context.Context, store, document string, report *placement.Report) error

	// Latest returns the last saved entry. Returns nil, false, nil on a miss.
	Latest(ctx context.Context, store, document string) (*Entry, bool, error)

	// List returns every stored entry, newest first.
	List(ctx context.Context) ([]Entry, error)

	// Clear removes every entry and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}

// Key returns the storage key for a (store, document) pair.
// The key format is: report:sha256(json([store, document])).
func Key(store, document string) string {
	data, _ := json.Marshal([]string{store, document})
	return fmt.Sprintf("report:%s", Hash(data))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
