package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ericfisherdev/itempanel/internal/domain/model"
	"github.com/ericfisherdev/itempanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ItemStore = (*ItemRepo)(nil)

// ItemRepo is the SQLite implementation of the ItemStore port interface.
type ItemRepo struct {
	db *DB
}

// NewItemRepo creates a new ItemRepo backed by the given DB.
func NewItemRepo(db *DB) *ItemRepo {
	return &ItemRepo{db: db}
}

// ListAll returns all items in insertion order.
func (r *ItemRepo) ListAll(ctx context.Context) ([]model.Item, error) {
	const query = `SELECT id, code, "desc", created_at, updated_at FROM items ORDER BY id`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	return items, nil
}

// GetByCode returns the item with the given code, or (nil, nil) if absent.
func (r *ItemRepo) GetByCode(ctx context.Context, code string) (*model.Item, error) {
	const query = `SELECT id, code, "desc", created_at, updated_at FROM items WHERE code = ?`

	item, err := scanItem(r.db.Reader.QueryRowContext(ctx, query, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// InsertIfAbsent inserts the item unless its code is already taken.
func (r *ItemRepo) InsertIfAbsent(ctx context.Context, item model.Item) (bool, error) {
	const query = `INSERT INTO items (code, "desc") VALUES (?, ?) ON CONFLICT (code) DO NOTHING`

	result, err := r.db.Writer.ExecContext(ctx, query, item.Code, item.Description)
	if err != nil {
		return false, fmt.Errorf("insert item %q: %w", item.Code, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check rows affected: %w", err)
	}
	return n == 1, nil
}

// Save overwrites the description of the item with the same code.
func (r *ItemRepo) Save(ctx context.Context, item model.Item) error {
	const query = `UPDATE items SET "desc" = ?, updated_at = CURRENT_TIMESTAMP WHERE code = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, item.Description, item.Code)
	if err != nil {
		return fmt.Errorf("save item %q: %w", item.Code, err)
	}

	return requireOneRow(result, item.Code)
}

// Delete removes the item with the given code.
func (r *ItemRepo) Delete(ctx context.Context, code string) error {
	const query = `DELETE FROM items WHERE code = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, code)
	if err != nil {
		return fmt.Errorf("delete item %q: %w", code, err)
	}

	return requireOneRow(result, code)
}

func requireOneRow(result sql.Result, code string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("item %q: %w", code, driven.ErrItemNotFound)
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (model.Item, error) {
	var (
		item                 model.Item
		id                   int64
		createdAt, updatedAt string
	)

	if err := row.Scan(&id, &item.Code, &item.Description, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Item{}, err
		}
		return model.Item{}, fmt.Errorf("scan item: %w", err)
	}
	item.ID = strconv.FormatInt(id, 10)

	var err error
	if item.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Item{}, fmt.Errorf("parse created_at for item %q: %w", item.Code, err)
	}
	if item.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.Item{}, fmt.Errorf("parse updated_at for item %q: %w", item.Code, err)
	}

	return item, nil
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
