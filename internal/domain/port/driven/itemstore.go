// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/itempanel/internal/domain/model"
)

// ErrItemNotFound indicates the requested item does not exist.
var ErrItemNotFound = errors.New("item not found")

// ItemStore defines the driven port for Item persistence.
// Save and Delete return ErrItemNotFound if no item has the given code.
type ItemStore interface {
	// ListAll returns every item in the store's default order. No sort key
	// is applied.
	ListAll(ctx context.Context) ([]model.Item, error)

	// GetByCode returns the item with the given code, or (nil, nil) if absent.
	GetByCode(ctx context.Context, code string) (*model.Item, error)

	// InsertIfAbsent inserts the item only when no item with the same code
	// exists (set-on-insert). It reports whether a document was written;
	// an existing code, including one inserted concurrently, yields false.
	InsertIfAbsent(ctx context.Context, item model.Item) (bool, error)

	// Save replaces the description of the item with the same code.
	Save(ctx context.Context, item model.Item) error

	// Delete removes the item with the given code.
	Delete(ctx context.Context, code string) error
}
