package model

import "time"

// Schema limits for the Items collection.
const (
	CodeMaxLength        = 10
	DescriptionMaxLength = 50

	// MinFieldLength is the shortest code or description accepted for a new item.
	MinFieldLength = 3
)

// Item is a single document in the Items collection. Code is unique within
// the store; uniqueness is enforced by the store, not the application.
type Item struct {
	ID          string
	Code        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ListRow is the read-only projection of an Item shown on the list screen.
type ListRow struct {
	Code        string
	Description string
}

// Row projects the item onto a ListRow.
func (i Item) Row() ListRow {
	return ListRow{Code: i.Code, Description: i.Description}
}
