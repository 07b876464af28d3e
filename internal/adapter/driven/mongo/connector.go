// Package mongo implements the driven ports on a MongoDB document store.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/ericfisherdev/itempanel/internal/domain/model"
	"github.com/ericfisherdev/itempanel/internal/domain/port/driven"
)

// authenticationFailedCode is the server error code for rejected credentials.
const authenticationFailedCode = 18

// Compile-time interface satisfaction checks.
var (
	_ driven.Connector  = (*Connector)(nil)
	_ driven.Connection = (*Connection)(nil)
)

// Connector opens authenticated MongoDB clients.
type Connector struct {
	uri        string
	authSource string
	timeout    time.Duration
	logger     *slog.Logger
}

// NewConnector creates a Connector for the deployment at uri. authSource
// names the database holding the users; empty means the target database.
// timeout bounds server selection and the initial ping.
func NewConnector(uri, authSource string, timeout time.Duration, logger *slog.Logger) *Connector {
	return &Connector{
		uri:        uri,
		authSource: authSource,
		timeout:    timeout,
		logger:     logger,
	}
}

// Connection is a live client bound to the Items collection of one database.
type Connection struct {
	*ItemRepo
	client *mongo.Client
}

// Close disconnects the client.
func (c *Connection) Close(ctx context.Context) error {
	if err := c.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	return nil
}

// Connect opens a client with cred and pings the primary so bad credentials
// fail here rather than on the first query. Rejected credentials return an
// error matching driven.ErrAuthentication and the client is disconnected.
func (c *Connector) Connect(ctx context.Context, databaseName string, cred model.Credential) (driven.Connection, error) {
	opts := options.Client().
		ApplyURI(c.uri).
		SetConnectTimeout(c.timeout).
		SetServerSelectionTimeout(c.timeout)

	if cred.Username != "" {
		authSource := c.authSource
		if authSource == "" {
			authSource = databaseName
		}
		opts.SetAuth(options.Credential{
			Username:   cred.Username,
			Password:   cred.Password,
			AuthSource: authSource,
		})
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		c.disconnect(ctx, client)
		if isAuthError(err) {
			return nil, fmt.Errorf("user %q: %w", cred.Username, driven.ErrAuthentication)
		}
		return nil, fmt.Errorf("ping: %w", err)
	}

	coll := client.Database(databaseName).Collection(collectionName)
	if err := ensureIndexes(ctx, coll); err != nil {
		// Missing createIndex privileges must not block reads and writes.
		c.logger.Warn("could not ensure unique index on code", "database", databaseName, "error", err)
	}

	c.logger.Debug("mongo connection opened", "database", databaseName, "username", cred.Username)
	return &Connection{ItemRepo: NewItemRepo(coll), client: client}, nil
}

func (c *Connector) disconnect(ctx context.Context, client *mongo.Client) {
	if err := client.Disconnect(ctx); err != nil {
		c.logger.Error("error disconnecting client", "error", err)
	}
}

func ensureIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: fieldCode, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// errorCoder matches server and driver errors that carry a numeric code.
type errorCoder interface {
	HasErrorCode(code int) bool
}

// isAuthError reports whether err is the server rejecting credentials.
// Handshake failures arrive wrapped in connection errors whose chain does not
// always expose the code, so the message is checked as a fallback.
func isAuthError(err error) bool {
	if err == nil {
		return false
	}
	var coded errorCoder
	if errors.As(err, &coded) && coded.HasErrorCode(authenticationFailedCode) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "AuthenticationFailed") ||
		strings.Contains(msg, "Authentication failed")
}
