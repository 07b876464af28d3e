// Package viewmodel defines presentation-ready structs for the page templates.
// View models decouple template rendering from domain model types.
package viewmodel

import "html/template"

// LayoutViewModel holds the data shared by every page frame.
type LayoutViewModel struct {
	Title     string
	Username  string
	LoggedIn  bool
	CSRFToken string
}

// LoginViewModel holds the login form state.
type LoginViewModel struct {
	Username  string
	Error     string
	CSRFToken string
}

// RowViewModel holds presentation-ready data for one list row.
type RowViewModel struct {
	Code            string
	DescriptionHTML template.HTML
	EditPath        string
}

// ListViewModel holds the item list and an optional notice from the last
// form action.
type ListViewModel struct {
	Rows      []RowViewModel
	Notice    string
	Error     string
	CSRFToken string
}

// FormViewModel holds the record form state for both modes.
type FormViewModel struct {
	IsNew       bool
	Code        string
	Description string

	CodeError        string
	DescriptionError string
	Error            string

	CodeMaxLength        int
	DescriptionMaxLength int

	Action       string // POST target for save
	DeleteAction string // POST target for delete, empty in new mode
	CSRFToken    string
}
