package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/itempanel/internal/domain/model"
	"github.com/ericfisherdev/itempanel/internal/domain/port/driven"
)

// ItemService implements the list and form operations on items. It resolves
// the store through the session on every call so a re-login takes effect
// immediately. It depends only on port interfaces.
type ItemService struct {
	stores StoreProvider
	logger *slog.Logger
}

// NewItemService creates a new ItemService with the required dependencies.
func NewItemService(stores StoreProvider, logger *slog.Logger) *ItemService {
	return &ItemService{
		stores: stores,
		logger: logger,
	}
}

// Refresh queries every item in store-default order and projects each onto a
// ListRow. An empty store yields an empty, non-nil slice.
func (s *ItemService) Refresh(ctx context.Context) ([]model.ListRow, error) {
	store, err := s.stores.Store()
	if err != nil {
		return nil, err
	}

	items, err := store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	rows := make([]model.ListRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, item.Row())
	}
	return rows, nil
}

// Load returns the item with the given code for the edit form.
// Returns driven.ErrItemNotFound if it does not exist.
func (s *ItemService) Load(ctx context.Context, code string) (model.Item, error) {
	store, err := s.stores.Store()
	if err != nil {
		return model.Item{}, err
	}

	item, err := store.GetByCode(ctx, code)
	if err != nil {
		return model.Item{}, fmt.Errorf("get item %q: %w", code, err)
	}
	if item == nil {
		return model.Item{}, driven.ErrItemNotFound
	}
	return *item, nil
}

// SubmitNew creates an item from the new-record form. Both fields must be at
// least three characters long and within the schema limits, otherwise a
// *ValidationError is returned and nothing is written. The write is
// insert-if-absent: it reports false when an item with the code already
// exists, leaving that item unchanged.
func (s *ItemService) SubmitNew(ctx context.Context, code, description string) (bool, error) {
	in := newItemInput{Code: code, Description: description}
	if err := asValidationError(in.Validate()); err != nil {
		s.logger.Warn("new item rejected", "code", code, "error", err)
		return false, err
	}

	store, err := s.stores.Store()
	if err != nil {
		return false, err
	}

	created, err := store.InsertIfAbsent(ctx, model.Item{Code: code, Description: description})
	if err != nil {
		return false, fmt.Errorf("insert item %q: %w", code, err)
	}

	if created {
		s.logger.Info("item created", "code", code)
	} else {
		s.logger.Warn("item already exists, insert skipped", "code", code)
	}
	return created, nil
}

// SubmitEdit saves a new description for a loaded item. When description
// equals the loaded value nothing is written and false is returned.
func (s *ItemService) SubmitEdit(ctx context.Context, loaded model.Item, description string) (bool, error) {
	if description == loaded.Description {
		s.logger.Warn("tried to update item with the same value", "code", loaded.Code)
		return false, nil
	}

	in := editItemInput{Description: description}
	if err := asValidationError(in.Validate()); err != nil {
		s.logger.Warn("item update rejected", "code", loaded.Code, "error", err)
		return false, err
	}

	store, err := s.stores.Store()
	if err != nil {
		return false, err
	}

	updated := loaded
	updated.Description = description
	if err := store.Save(ctx, updated); err != nil {
		return false, fmt.Errorf("save item %q: %w", loaded.Code, err)
	}

	s.logger.Info("item updated", "code", loaded.Code, "desc", description)
	return true, nil
}

// Delete removes the item with the given code.
// Returns an error matching driven.ErrItemNotFound if it does not exist.
func (s *ItemService) Delete(ctx context.Context, code string) error {
	store, err := s.stores.Store()
	if err != nil {
		return err
	}

	if err := store.Delete(ctx, code); err != nil {
		return fmt.Errorf("delete item %q: %w", code, err)
	}

	s.logger.Info("item deleted", "code", code)
	return nil
}
