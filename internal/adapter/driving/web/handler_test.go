package web

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/itempanel/internal/application"
	"github.com/ericfisherdev/itempanel/internal/domain/model"
	"github.com/ericfisherdev/itempanel/internal/domain/port/driven"
)

// --- Mock implementations ---

type mockConnection struct {
	items   []model.Item
	writes  int
	listErr error
	saveErr error
}

func (m *mockConnection) ListAll(_ context.Context) ([]model.Item, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]model.Item(nil), m.items...), nil
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
	for i := range m.items {
		if m.items[i].Code == item.Code {
			m.items[i].Description = item.Description
			m.writes++
			return nil
		}
	}
	return driven.ErrItemNotFound
}

func (m *mockConnection) Delete(_ context.Context, code string) error {
	for i := range m.items {
		if m.items[i].Code == code {
			m.items = append(m.items[:i], m.items[i+1:]...)
			m.writes++
			return nil
		}
	}
	return driven.ErrItemNotFound
}

func (m *mockConnection) Close(_ context.Context) error { return nil }

type mockConnector struct {
	conn *mockConnection
}

func (m *mockConnector) Connect(_ context.Context, _ string, cred model.Credential) (driven.Connection, error) {
	if cred.Username != "us" || cred.Password != "ps" {
		return nil, driven.ErrAuthentication
	}
	return m.conn, nil
}

// --- Helpers ---

const testToken = "test-csrf-token"

type fixture struct {
	conn    *mockConnection
	session *application.SessionService
	nav     *application.Navigator
	mux     *http.ServeMux
}

func newFixture(t *testing.T, items ...model.Item) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	conn := &mockConnection{items: items}
	creds := application.NewCredentialHolder(model.Credential{Username: "us", Password: "ps"})
	session := application.NewSessionService(&mockConnector{conn: conn}, "test", creds, logger)
	nav := application.NewNavigator(logger)
	h := NewHandler(session, application.NewItemService(session, logger), nav, logger)

	mux := http.NewServeMux()
	RegisterRoutes(mux, h)
	return &fixture{conn: conn, session: session, nav: nav, mux: mux}
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	rec := f.post("/login", url.Values{"username": {"us"}, "password": {"ps"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
}

func (f *fixture) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

// post submits form values with a matching CSRF cookie and field.
func (f *fixture) post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	form.Set(csrfFormField, testToken)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: testToken})
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func sampleItems() []model.Item {
	return []model.Item{
		{ID: "1", Code: "AB1", Description: "first **one**"},
		{ID: "2", Code: "XY2", Description: "second"},
	}
}

// --- Tests ---

func TestRoot_Redirects(t *testing.T) {
	f := newFixture(t)

	rec := f.get("/")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	f.login(t)
	rec = f.get("/")
	assert.Equal(t, "/items", rec.Header().Get("Location"))
}

func TestPagesRequireLogin(t *testing.T) {
	f := newFixture(t, sampleItems()...)

	for _, path := range []string{"/items", "/items/new", "/items/AB1"} {
		t.Run(path, func(t *testing.T) {
			rec := f.get(path)
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "/login", rec.Header().Get("Location"))
		})
	}
	assert.Equal(t, application.NavLoggedOut, f.nav.State())
}

func TestLoginForm_IssuesSingleToken(t *testing.T) {
	f := newFixture(t)

	rec := f.get("/login")
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, csrfCookieName, cookies[0].Name)
	assert.Contains(t, rec.Body.String(), `value="`+cookies[0].Value+`"`)
	assert.Contains(t, rec.Body.String(), `value="us"`)
}

func TestPost_RejectsMissingCSRF(t *testing.T) {
	f := newFixture(t)

	form := url.Values{"username": {"us"}, "password": {"ps"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, f.session.IsLoggedIn())
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture(t)

	rec := f.post("/login", url.Values{"username": {"us"}, "password": {"nope"}})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Login failed")
	assert.False(t, f.session.IsLoggedIn())
	assert.Equal(t, application.NavLoggedOut, f.nav.State())
}

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)

	rec := f.post("/login", url.Values{"username": {"us"}, "password": {"ps"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/items", rec.Header().Get("Location"))
	assert.True(t, f.session.IsLoggedIn())
	assert.Equal(t, application.NavList, f.nav.State())
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	rec := f.post("/logout", nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.False(t, f.session.IsLoggedIn())
	assert.Equal(t, application.NavLoggedOut, f.nav.State())
}

func TestList_RendersRows(t *testing.T) {
	f := newFixture(t, sampleItems()...)
	f.login(t)

	rec := f.get("/items?notice=created")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `href="/items/AB1"`)
	assert.Contains(t, body, "first <strong>one</strong>")
	assert.Contains(t, body, "XY2")
	assert.Contains(t, body, "Item created.")
	assert.Contains(t, body, `data-sort-col="0"`)
	assert.Contains(t, body, `data-sort-col="1"`)
	assert.Less(t, strings.Index(body, "AB1"), strings.Index(body, "XY2"))
}

func TestList_Empty(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	rec := f.get("/items")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No items yet.")
}

func TestList_StoreError(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.conn.listErr = errors.New("cursor failed")

	rec := f.get("/items")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Could not load items")
}

func TestCreate_Success(t *testing.T) {
	f := newFixture(t, sampleItems()...)
	f.login(t)

	rec := f.get("/items/new")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, application.NavFormNew, f.nav.State())

	rec = f.post("/items", url.Values{"code": {"NEW"}, "desc": {"brand new"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/items?notice=created", rec.Header().Get("Location"))
	assert.Equal(t, application.NavList, f.nav.State())
	require.Len(t, f.conn.items, 3)
	assert.Equal(t, "brand new", f.conn.items[2].Description)
}

func TestCreate_StoresValuesAsTyped(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.get("/items/new")

	rec := f.post("/items", url.Values{"code": {"A<B>C1"}, "desc": {"use &lt; and <b>x</b>"}})

	assert.Equal(t, "/items?notice=created", rec.Header().Get("Location"))
	require.Len(t, f.conn.items, 1)
	assert.Equal(t, "A<B>C1", f.conn.items[0].Code)
	assert.Equal(t, "use &lt; and <b>x</b>", f.conn.items[0].Description)
}

func TestCreate_RequiresOpenNewForm(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	rec := f.post("/items", url.Values{"code": {"NEW"}, "desc": {"brand new"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/items?notice=stale", rec.Header().Get("Location"))
	assert.Empty(t, f.conn.items)
	assert.Equal(t, application.NavList, f.nav.State())
}

func TestCreate_ExistingCode(t *testing.T) {
	f := newFixture(t, sampleItems()...)
	f.login(t)
	f.get("/items/new")

	rec := f.post("/items", url.Values{"code": {"AB1"}, "desc": {"other"}})

	assert.Equal(t, "/items?notice=exists", rec.Header().Get("Location"))
	assert.Equal(t, "first **one**", f.conn.items[0].Description)
}

func TestCreate_ValidationKeepsFormOpen(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.get("/items/new")

	rec := f.post("/items", url.Values{"code": {"AB"}, "desc": {"ok desc"}})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="field-error"`)
	assert.Contains(t, rec.Body.String(), `value="AB"`)
	assert.Equal(t, application.NavFormNew, f.nav.State())
	assert.Empty(t, f.conn.items)
}

func TestEditForm(t *testing.T) {
	f := newFixture(t, sampleItems()...)
	f.login(t)

	rec := f.get("/items/XY2")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `value="XY2" readonly`)
	assert.Contains(t, body, `value="second"`)
	assert.Contains(t, body, `action="/items/XY2/delete"`)
	assert.Equal(t, application.NavFormEdit, f.nav.State())
	assert.Equal(t, "XY2", f.nav.EditingCode())
}

func TestEditForm_Missing(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	rec := f.get("/items/NOPE")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/items?notice=missing", rec.Header().Get("Location"))
	assert.Equal(t, application.NavList, f.nav.State())
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name         string
		desc         string
		wantLocation string
		wantDesc     string
	}{
		{name: "changed", desc: "renamed", wantLocation: "/items?notice=updated", wantDesc: "renamed"},
		{name: "unchanged", desc: "second", wantLocation: "/items?notice=unchanged", wantDesc: "second"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, sampleItems()...)
			f.login(t)
			f.get("/items/XY2")

			rec := f.post("/items/XY2", url.Values{"desc": {tt.desc}})

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			assert.Equal(t, tt.wantDesc, f.conn.items[1].Description)
			assert.Equal(t, application.NavList, f.nav.State())
		})
	}
}

func TestUpdate_UnchangedMarkupWritesNothing(t *testing.T) {
	f := newFixture(t, model.Item{ID: "1", Code: "AB1", Description: "use <tag> here"})
	f.login(t)

	rec := f.get("/items/AB1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="use &lt;tag&gt; here"`)

	rec = f.post("/items/AB1", url.Values{"desc": {"use <tag> here"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/items?notice=unchanged", rec.Header().Get("Location"))
	assert.Equal(t, 0, f.conn.writes)
	assert.Equal(t, "use <tag> here", f.conn.items[0].Description)
}

func TestUpdate_RequiresMatchingEditForm(t *testing.T) {
	tests := []struct {
		name    string
		open    string
		wantNav application.NavState
	}{
		{name: "no form open", open: "", wantNav: application.NavList},
		{name: "other item open", open: "/items/AB1", wantNav: application.NavList},
		{name: "new form open", open: "/items/new", wantNav: application.NavList},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, sampleItems()...)
			f.login(t)
			if tt.open != "" {
				f.get(tt.open)
			}

			rec := f.post("/items/XY2", url.Values{"desc": {"renamed"}})

			assert.Equal(t, "/items?notice=stale", rec.Header().Get("Location"))
			assert.Equal(t, "second", f.conn.items[1].Description)
			assert.Equal(t, 0, f.conn.writes)
			assert.Equal(t, tt.wantNav, f.nav.State())
		})
	}
}

func TestUpdate_TooLong(t *testing.T) {
	f := newFixture(t, sampleItems()...)
	f.login(t)
	f.get("/items/XY2")

	rec := f.post("/items/XY2", url.Values{"desc": {strings.Repeat("x", 51)}})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "second", f.conn.items[1].Description)
}

func TestUpdate_StoreError(t *testing.T) {
	f := newFixture(t, sampleItems()...)
	f.login(t)
	f.get("/items/XY2")
	f.conn.saveErr = errors.New("write concern failed")

	rec := f.post("/items/XY2", url.Values{"desc": {"renamed"}})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Could not save the item")
}

func TestDelete(t *testing.T) {
	f := newFixture(t, sampleItems()...)
	f.login(t)
	f.get("/items/AB1")

	rec := f.post("/items/AB1/delete", nil)

	assert.Equal(t, "/items?notice=deleted", rec.Header().Get("Location"))
	require.Len(t, f.conn.items, 1)
	assert.Equal(t, "XY2", f.conn.items[0].Code)
	assert.Equal(t, application.NavList, f.nav.State())

	rec = f.post("/items/AB1/delete", nil)
	assert.Equal(t, "/items?notice=stale", rec.Header().Get("Location"))
}

func TestDelete_OnlyTheLoadedItem(t *testing.T) {
	f := newFixture(t, sampleItems()...)
	f.login(t)
	f.get("/items/AB1")
	require.Equal(t, "AB1", f.nav.EditingCode())

	rec := f.post("/items/XY2/delete", nil)

	assert.Equal(t, "/items?notice=stale", rec.Header().Get("Location"))
	assert.Len(t, f.conn.items, 2)
	assert.Equal(t, 0, f.conn.writes)
}

func TestDelete_RemovedElsewhere(t *testing.T) {
	f := newFixture(t, sampleItems()...)
	f.login(t)
	f.get("/items/AB1")
	f.conn.items = f.conn.items[1:]

	rec := f.post("/items/AB1/delete", nil)

	assert.Equal(t, "/items?notice=missing", rec.Header().Get("Location"))
	assert.Equal(t, application.NavList, f.nav.State())
}

func TestStaticAssets(t *testing.T) {
	f := newFixture(t)

	rec := f.get("/static/style.css")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "body")

	rec = f.get("/static/sort.js")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "data-sort-col")
}
