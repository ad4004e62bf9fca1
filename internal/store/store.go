// Package store defines the persistence interface for the accounts document.
// Implementations include a JSON file (default), PostgreSQL, Redis
// (read-through cache over another store), and in-memory (for testing).
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fxdash/dashboard/internal/model"
)

// ErrCorruptDocument is returned when a stored document is not a valid dataset.
var ErrCorruptDocument = errors.New("corrupt accounts document")

// Store persists the whole accounts document. There is a single document
// per store; every save replaces it.
type Store interface {
	// Load returns the current dataset. A store that holds no document yet
	// returns an empty dataset, not an error.
	Load(ctx context.Context) (*model.Dataset, error)

	// Save replaces the stored dataset.
	Save(ctx context.Context, ds *model.Dataset) error
}

// decode parses a stored document. Missing accounts decode to an empty list.
func decode(data []byte) (*model.Dataset, error) {
	var ds model.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	if ds.Accounts == nil {
		ds.Accounts = []model.Account{}
	}
	return &ds, nil
}

// encode renders a dataset the way the file store writes it: two-space
// indentation, accounts always present.
func encode(ds *model.Dataset) ([]byte, error) {
	return json.MarshalIndent(ds.Clone(), "", "  ")
}

func emptyDataset() *model.Dataset {
	return &model.Dataset{Accounts: []model.Account{}}
}
