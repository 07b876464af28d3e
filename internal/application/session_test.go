package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/itempanel/internal/application"
	"github.com/ericfisherdev/itempanel/internal/domain/model"
	"github.com/ericfisherdev/itempanel/internal/domain/port/driven"
)

func newTestSession(connector driven.Connector) (*application.SessionService, *application.CredentialHolder) {
	holder := application.NewCredentialHolder(model.Credential{Username: "us", Password: "ps"})
	return application.NewSessionService(connector, "itempanel", holder, discardLogger()), holder
}

func TestSessionService_StoreBeforeLogin(t *testing.T) {
	session, _ := newTestSession(&mockConnector{username: "admin", password: "secret"})

	store, err := session.Store()

	assert.Nil(t, store)
	require.ErrorIs(t, err, application.ErrNotLoggedIn)
	assert.False(t, session.IsLoggedIn())
}

func TestSessionService_LoginSuccess(t *testing.T) {
	connector := &mockConnector{username: "admin", password: "secret"}
	session, holder := newTestSession(connector)

	err := session.Login(context.Background(), "admin", "secret")

	require.NoError(t, err)
	assert.True(t, session.IsLoggedIn())
	assert.Equal(t, model.Credential{Username: "admin", Password: "secret"}, holder.Credential())
	assert.Equal(t, "admin", session.Username())

	store, err := session.Store()
	require.NoError(t, err)
	assert.Same(t, connector.conn, store)
}

func TestSessionService_WrongCredentialsLeaveHolderUntouched(t *testing.T) {
	cases := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "admin", "nope"},
		{"wrong username", "mallory", "secret"},
		{"both empty", "", ""},
		{"placeholder defaults", "us", "ps"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			session, holder := newTestSession(&mockConnector{username: "admin", password: "secret"})

			err := session.Login(context.Background(), tc.username, tc.password)

			require.ErrorIs(t, err, driven.ErrAuthentication)
			assert.False(t, session.IsLoggedIn())
			assert.Equal(t, model.Credential{Username: "us", Password: "ps"}, holder.Credential())
		})
	}
}

func TestSessionService_AuthFailureDisconnects(t *testing.T) {
	connector := &mockConnector{username: "admin", password: "secret"}
	session, holder := newTestSession(connector)
	ctx := context.Background()

	require.NoError(t, session.Login(ctx, "admin", "secret"))
	first := connector.conn

	err := session.Login(ctx, "admin", "wrong")

	require.ErrorIs(t, err, driven.ErrAuthentication)
	assert.False(t, session.IsLoggedIn())
	assert.True(t, first.closed, "previous connection should be closed")
	assert.Equal(t, "admin", holder.Username())
}

func TestSessionService_ConnectErrorIsWrapped(t *testing.T) {
	boom := errors.New("server selection timeout")
	session, holder := newTestSession(&mockConnector{err: boom})

	err := session.Login(context.Background(), "admin", "secret")

	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, driven.ErrAuthentication)
	assert.Contains(t, err.Error(), "itempanel")
	assert.Equal(t, "us", holder.Username())
}

func TestSessionService_ReloginReplacesConnection(t *testing.T) {
	connector := &mockConnector{username: "admin", password: "secret"}
	session, _ := newTestSession(connector)
	ctx := context.Background()

	require.NoError(t, session.Login(ctx, "admin", "secret"))
	first := connector.conn

	connector.conn = &mockConnection{}
	require.NoError(t, session.Login(ctx, "admin", "secret"))

	assert.True(t, first.closed)
	store, err := session.Store()
	require.NoError(t, err)
	assert.Same(t, connector.conn, store)
}

func TestSessionService_Logout(t *testing.T) {
	connector := &mockConnector{username: "admin", password: "secret"}
	session, _ := newTestSession(connector)
	ctx := context.Background()

	require.NoError(t, session.Login(ctx, "admin", "secret"))
	session.Logout(ctx)

	assert.False(t, session.IsLoggedIn())
	assert.True(t, connector.conn.closed)

	// Logging out twice is harmless.
	session.Logout(ctx)
}

func TestSessionService_ConcurrentStoreLoginSafety(t *testing.T) {
	connector := &mockConnector{username: "admin", password: "secret"}
	session, _ := newTestSession(connector)
	ctx := context.Background()
	require.NoError(t, session.Login(ctx, "admin", "secret"))

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for range goroutines {
		go func() {
			defer wg.Done()
			store, err := session.Store()
			assert.NoError(t, err)
			assert.NotNil(t, store)
		}()
	}

	wg.Wait()
}
