package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/itempanel/internal/domain/model"
)

// ErrAuthentication is returned by Connector.Connect when the store rejects
// the supplied credentials. Adapters wrap it so callers can match it with
// errors.Is regardless of the backend-specific error code.
var ErrAuthentication = errors.New("authentication failed")

// Connection is an open session against the document store.
type Connection interface {
	ItemStore

	// Close releases the underlying client.
	Close(ctx context.Context) error
}

// Connector defines the driven port for the database gateway. Connect opens
// a connection to databaseName authenticated with cred.
type Connector interface {
	Connect(ctx context.Context, databaseName string, cred model.Credential) (Connection, error)
}
