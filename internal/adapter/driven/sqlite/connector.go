package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ericfisherdev/itempanel/internal/domain/model"
	"github.com/ericfisherdev/itempanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.Connector  = (*Connector)(nil)
	_ driven.Connection = (*Connection)(nil)
)

// Connector opens one SQLite file per database name under a data directory.
type Connector struct {
	dataDir string
	logger  *slog.Logger
}

// NewConnector creates a Connector rooted at dataDir.
func NewConnector(dataDir string, logger *slog.Logger) *Connector {
	return &Connector{dataDir: dataDir, logger: logger}
}

// Connection is an open, authenticated SQLite database.
type Connection struct {
	*ItemRepo
	db *DB
}

// Close closes the database handles.
func (c *Connection) Close(_ context.Context) error {
	return c.db.Close()
}

// Connect opens the database file for databaseName, applies migrations and
// verifies cred against the accounts table.
func (c *Connector) Connect(ctx context.Context, databaseName string, cred model.Credential) (driven.Connection, error) {
	db, err := c.open(ctx, databaseName)
	if err != nil {
		return nil, err
	}

	if err := NewAccountRepo(db).Verify(ctx, cred.Username, cred.Password); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			c.logger.Error("error closing database", "path", db.Path(), "error", closeErr)
		}
		return nil, err
	}

	c.logger.Debug("sqlite connection opened", "path", db.Path(), "username", cred.Username)
	return &Connection{ItemRepo: NewItemRepo(db), db: db}, nil
}

// EnsureAccount creates the account in databaseName if it does not exist yet.
// It reports whether an account was created.
func (c *Connector) EnsureAccount(ctx context.Context, databaseName string, cred model.Credential) (bool, error) {
	db, err := c.open(ctx, databaseName)
	if err != nil {
		return false, err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			c.logger.Error("error closing database", "path", db.Path(), "error", closeErr)
		}
	}()

	return NewAccountRepo(db).Create(ctx, cred.Username, cred.Password)
}

func (c *Connector) open(ctx context.Context, databaseName string) (*DB, error) {
	path, err := c.pathFor(databaseName)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(c.dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir %q: %w", c.dataDir, err)
	}

	db, err := NewDB(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}

	if err := RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// pathFor maps a database name to its file, rejecting names that would
// escape the data directory.
func (c *Connector) pathFor(databaseName string) (string, error) {
	if databaseName == "" || databaseName == "." || databaseName == ".." ||
		strings.ContainsAny(databaseName, `/\`) {
		return "", fmt.Errorf("invalid database name %q", databaseName)
	}
	return filepath.Join(c.dataDir, databaseName+".db"), nil
}
