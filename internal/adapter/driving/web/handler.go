// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/itempanel/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/itempanel/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/itempanel/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/itempanel/internal/application"
	"github.com/ericfisherdev/itempanel/internal/domain/port/driven"
)

// Handler is the web GUI driving adapter. It renders the login, list and form
// screens and moves the navigator as the operator clicks through them.
type Handler struct {
	session *application.SessionService
	items   *application.ItemService
	nav     *application.Navigator
	logger  *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	session *application.SessionService,
	items *application.ItemService,
	nav *application.Navigator,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		session: session,
		items:   items,
		nav:     nav,
		logger:  logger,
	}
}

// Root sends the operator to the screen matching the session.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	if h.session.IsLoggedIn() {
		http.Redirect(w, r, "/items", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// LoginForm renders the login screen prefilled with the held username.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	csrf := csrfToken(w, r)
	h.renderLogin(w, r, http.StatusOK, vm.LoginViewModel{
		Username:  h.session.Username(),
		CSRFToken: csrf,
	})
}

// Login authenticates against the store. On success the list is shown; on
// failure the login screen is shown again with the reason.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")
	csrf := csrfToken(w, r)

	if err := h.session.Login(r.Context(), username, password); err != nil {
		h.fire(application.EventLoggedOut, "")

		data := vm.LoginViewModel{Username: username, CSRFToken: csrf}
		status := http.StatusUnauthorized
		if errors.Is(err, driven.ErrAuthentication) {
			data.Error = "Login failed: user name or password rejected."
		} else {
			h.logger.Error("failed to connect to store", "username", username, "error", err)
			data.Error = "Could not reach the document store."
			status = http.StatusServiceUnavailable
		}
		h.renderLogin(w, r, status, data)
		return
	}

	h.nav.Close()
	h.fire(application.EventLoginSucceeded, "")
	http.Redirect(w, r, "/items", http.StatusSeeOther)
}

// Logout closes the session and returns to the login screen.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.session.Logout(r.Context())
	h.fire(application.EventLoggedOut, "")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// List re-queries the store and renders every item. Reaching the list closes
// any open form.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if !h.requireSession(w, r) {
		return
	}
	h.nav.Close()

	csrf := csrfToken(w, r)
	data := vm.ListViewModel{
		Rows:      []vm.RowViewModel{},
		Notice:    noticeMessage(r.URL.Query().Get("notice")),
		CSRFToken: csrf,
	}

	status := http.StatusOK
	rows, err := h.items.Refresh(r.Context())
	if err != nil {
		if h.redirectIfLoggedOut(w, r, err) {
			return
		}
		h.logger.Error("failed to refresh item list", "error", err)
		data.Error = "Could not load items from the document store."
		status = http.StatusInternalServerError
	} else {
		data.Rows = toRowViewModels(rows)
	}

	h.render(w, r, status, "Items", pages.List(data))
}

// NewForm opens an empty record form.
func (h *Handler) NewForm(w http.ResponseWriter, r *http.Request) {
	if !h.requireSession(w, r) {
		return
	}
	h.openForm(application.EventCreateClicked, "")

	h.render(w, r, http.StatusOK, "New item", pages.Form(newFormViewModel(csrfToken(w, r))))
}

// Create submits the new-record form. Validation failures keep the form open
// with per-field messages; an existing code closes the form without writing.
// Values are stored as typed.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.requireSession(w, r) || !h.requireForm(w, r, application.NavFormNew, "") {
		return
	}

	code := r.FormValue("code")
	desc := r.FormValue("desc")

	created, err := h.items.SubmitNew(r.Context(), code, desc)
	if err != nil {
		form := newFormViewModel(csrfToken(w, r))
		form.Code = code
		form.Description = desc
		h.renderFormError(w, r, "New item", form, err)
		return
	}

	notice := noticeCreated
	if !created {
		notice = noticeExists
	}
	h.closeForm(w, r, notice)
}

// EditForm opens the record form for an existing item.
func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	if !h.requireSession(w, r) {
		return
	}
	code := r.PathValue("code")

	item, err := h.items.Load(r.Context(), code)
	if err != nil {
		if h.redirectIfLoggedOut(w, r, err) {
			return
		}
		if errors.Is(err, driven.ErrItemNotFound) {
			h.closeForm(w, r, noticeMissing)
			return
		}
		h.logger.Error("failed to load item", "code", code, "error", err)
		h.renderListError(w, r, "Could not load the item from the document store.")
		return
	}

	h.openForm(application.EventRowActivated, item.Code)
	h.render(w, r, http.StatusOK, "Edit item", pages.Form(editFormViewModel(item, csrfToken(w, r))))
}

// Update saves the edited description. An unchanged description closes the
// form without writing.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if !h.requireSession(w, r) || !h.requireForm(w, r, application.NavFormEdit, code) {
		return
	}
	desc := r.FormValue("desc")

	item, err := h.items.Load(r.Context(), code)
	if err != nil {
		if h.redirectIfLoggedOut(w, r, err) {
			return
		}
		if errors.Is(err, driven.ErrItemNotFound) {
			h.closeForm(w, r, noticeMissing)
			return
		}
		h.logger.Error("failed to load item", "code", code, "error", err)
		h.renderListError(w, r, "Could not load the item from the document store.")
		return
	}

	changed, err := h.items.SubmitEdit(r.Context(), item, desc)
	if err != nil {
		form := editFormViewModel(item, csrfToken(w, r))
		form.Description = desc
		h.renderFormError(w, r, "Edit item", form, err)
		return
	}

	notice := noticeUpdated
	if !changed {
		notice = noticeUnchanged
	}
	h.closeForm(w, r, notice)
}

// Delete removes the item shown in the edit form.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if !h.requireSession(w, r) || !h.requireForm(w, r, application.NavFormEdit, code) {
		return
	}

	if err := h.items.Delete(r.Context(), code); err != nil {
		if h.redirectIfLoggedOut(w, r, err) {
			return
		}
		if errors.Is(err, driven.ErrItemNotFound) {
			h.closeForm(w, r, noticeMissing)
			return
		}
		h.logger.Error("failed to delete item", "code", code, "error", err)
		h.renderListError(w, r, "Could not delete the item.")
		return
	}

	h.closeForm(w, r, noticeDeleted)
}

// requireSession redirects to the login screen when no connection is held.
// A session opened through the JSON API moves the navigator past login.
func (h *Handler) requireSession(w http.ResponseWriter, r *http.Request) bool {
	if !h.session.IsLoggedIn() {
		h.fire(application.EventLoggedOut, "")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return false
	}
	if h.nav.State() == application.NavLoggedOut {
		h.fire(application.EventLoginSucceeded, "")
	}
	return true
}

// requireForm accepts a form submit only while the navigator shows that
// form. An edit submit must also target the code the form loaded. Anything
// else returns to the list without writing.
func (h *Handler) requireForm(w http.ResponseWriter, r *http.Request, want application.NavState, code string) bool {
	state := h.nav.State()
	if state == want && (want != application.NavFormEdit || h.nav.EditingCode() == code) {
		return true
	}
	h.logger.Warn("form submit rejected",
		"path", r.URL.Path,
		"state", state,
		"editing", h.nav.EditingCode(),
	)
	h.closeForm(w, r, noticeStale)
	return false
}

// redirectIfLoggedOut handles a session closed between the check and the
// store call.
func (h *Handler) redirectIfLoggedOut(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, application.ErrNotLoggedIn) {
		return false
	}
	h.fire(application.EventLoggedOut, "")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
	return true
}

// openForm moves the navigator from the list into a form. A form left open
// by browser navigation is closed first.
func (h *Handler) openForm(event application.NavEvent, code string) {
	h.nav.Close()
	h.fire(event, code)
}

// closeForm returns to the list, which re-queries the store.
func (h *Handler) closeForm(w http.ResponseWriter, r *http.Request, notice string) {
	h.nav.Close()
	http.Redirect(w, r, "/items?notice="+notice, http.StatusSeeOther)
}

func (h *Handler) fire(event application.NavEvent, code string) {
	if _, err := h.nav.Fire(event, code); err != nil {
		h.logger.Warn("ignored screen transition", "event", event, "error", err)
	}
}

// renderFormError shows a failed submit. Validation errors stay in the form;
// store errors are logged and shown above it.
func (h *Handler) renderFormError(w http.ResponseWriter, r *http.Request, title string, form vm.FormViewModel, err error) {
	if h.redirectIfLoggedOut(w, r, err) {
		return
	}

	var verr *application.ValidationError
	if errors.As(err, &verr) {
		applyValidation(&form, verr)
		h.render(w, r, http.StatusUnprocessableEntity, title, pages.Form(form))
		return
	}

	h.logger.Error("failed to save item", "code", form.Code, "error", err)
	form.Error = "Could not save the item to the document store."
	h.render(w, r, http.StatusInternalServerError, title, pages.Form(form))
}

// renderListError shows the list screen with an error banner and no rows.
func (h *Handler) renderListError(w http.ResponseWriter, r *http.Request, msg string) {
	h.nav.Close()
	data := vm.ListViewModel{Rows: []vm.RowViewModel{}, Error: msg, CSRFToken: csrfToken(w, r)}
	h.render(w, r, http.StatusInternalServerError, "Items", pages.List(data))
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, data vm.LoginViewModel) {
	layout := templates.Layout(vm.LayoutViewModel{Title: "Log in", CSRFToken: data.CSRFToken}, pages.Login(data))
	h.write(w, r, status, layout)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, title string, body templ.Component) {
	layout := templates.Layout(vm.LayoutViewModel{
		Title:     title,
		Username:  h.session.Username(),
		LoggedIn:  h.session.IsLoggedIn(),
		CSRFToken: csrfToken(w, r),
	}, body)
	h.write(w, r, status, layout)
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render page", "path", r.URL.Path, "error", err)
	}
}
