package application_test

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/ericfisherdev/itempanel/internal/domain/model"
	"github.com/ericfisherdev/itempanel/internal/domain/port/driven"
)

// --- Mock implementations ---

// mockConnection is an in-memory driven.Connection that keeps insertion order
// and counts writes.
type mockConnection struct {
	items  []model.Item
	writes int
	closed bool

	listErr   error
	insertErr error
	saveErr   error
}

var _ driven.Connection = (*mockConnection)(nil)

func (m *mockConnection) ListAll(_ context.Context) ([]model.Item, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]model.Item, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *mockConnection) GetByCode(_ context.Context, code string) (*model.Item, error) {
	for _, item := range m.items {
		if item.Code == code {
			found := item
			return &found, nil
		}
	}
	return nil, nil
}

func (m *mockConnection) InsertIfAbsent(_ context.Context, item model.Item) (bool, error) {
	if m.insertErr != nil {
		return false, m.insertErr
	}
	for _, existing := range m.items {
		if existing.Code == item.Code {
			return false, nil
		}
	}
	m.items = append(m.items, item)
	m.writes++
	return true, nil
}

func (m *mockConnection) Save(_ context.Context, item model.Item) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	for i, existing := range m.items {
		if existing.Code == item.Code {
			m.items[i].Description = item.Description
			m.writes++
			return nil
		}
	}
	return driven.ErrItemNotFound
}

func (m *mockConnection) Delete(_ context.Context, code string) error {
	for i, existing := range m.items {
		if existing.Code == code {
			m.items = append(m.items[:i], m.items[i+1:]...)
			m.writes++
			return nil
		}
	}
	return driven.ErrItemNotFound
}

func (m *mockConnection) Close(_ context.Context) error {
	m.closed = true
	return nil
}

// mockConnector accepts exactly one username/password pair.
type mockConnector struct {
	username string
	password string
	conn     *mockConnection
	err      error
	calls    int
}

func (m *mockConnector) Connect(_ context.Context, _ string, cred model.Credential) (driven.Connection, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if cred.Username != m.username || cred.Password != m.password {
		return nil, driven.ErrAuthentication
	}
	if m.conn == nil {
		m.conn = &mockConnection{}
	}
	return m.conn, nil
}

// staticStores is a StoreProvider over a fixed store.
type staticStores struct {
	store driven.ItemStore
	err   error
}

func (s staticStores) Store() (driven.ItemStore, error) {
	return s.store, s.err
}

var errStoreDown = errors.New("store down")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
