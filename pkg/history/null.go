package history

import (
	"context"

	"github.com/rajithraghunath/roomtag/pkg/placement"
)

// NullStore is a no-op store that never keeps anything.
// Used when history is disabled.
type NullStore struct{}

func (NullStore) Save(context.Context, string, string, *placement.Report) error { return nil }

func (NullStore) Latest(context.Context, string, string) (*Entry, bool, error) {
	return nil, false, nil
}

func (NullStore) List(context.Context) ([]Entry, error) { return nil, nil }

func (NullStore) Clear(context.Context) (int, error) { return 0, nil }

// Ensure NullStore implements Store.
var _ Store = NullStore{}
