package model

// Credential holds the username/password pair used to open a store connection.
// It is never persisted.
type Credential struct {
	Username string
	Password string
}
