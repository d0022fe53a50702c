package history

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rajithraghunath/roomtag/pkg/placement"
)

// FileStore implements a file-based report store for CLI usage.
type FileStore struct {
	dir string
}

// NewFileStore creates a report store in the given directory.
// The directory will be created if it doesn't exist.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the store directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) Save(ctx context.Context, store, document string, report *placement.Report) error {
	data, err := json.MarshalIndent(Entry{
		Store:    store,
		Document: document,
		SavedAt:  time.Now(),
		Report:   report,
	}, "", "  ")
	if err != nil {
		return err
	}

	path := s.path(Key(store, document))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (s *FileStore) Latest(ctx context.Context, store, document string) (*Entry, bool, error) {
	path := s.path(Key(store, document))
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		// Invalid entry - treat as miss
		_ = os.Remove(path)
		return nil, false, nil
	}
	return &e, true, nil
}

func (s *FileStore) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	err := s.walk(func(path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var e Entry
		if json.Unmarshal(data, &e) == nil {
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(entries, func(a, b Entry) int { return b.SavedAt.Compare(a.SavedAt) })
	return entries, nil
}

func (s *FileStore) Clear(ctx context.Context) (int, error) {
	n := 0
	err := s.walk(func(path string) error {
		if err := os.Remove(path); err != nil {
			return err
		}
		n++
		return nil
	})
	return n, err
}

// walk calls fn for every entry file.
func (s *FileStore) walk(fn func(path string) error) error {
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		return fn(path)
	})
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// path converts a key to a file path.
// Uses a simple hash-based directory structure to avoid too many files in one dir.
func (s *FileStore) path(key string) string {
	hash := strings.TrimPrefix(key, "report:")
	return filepath.Join(s.dir, hash[:2], hash[2:]+".json")
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
