// Package httphandler implements the JSON REST API driving adapter.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/itempanel/internal/application"
	"github.com/ericfisherdev/itempanel/internal/domain/port/driven"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	session *application.SessionService
	items   *application.ItemService
	logger  *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	session *application.SessionService,
	items *application.ItemService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		session: session,
		items:   items,
		logger:  logger,
	}
}

// RegisterAPIRoutes registers all API routes on the provided mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/session", h.GetSession)
	mux.HandleFunc("POST /api/v1/session", requireJSON(h.Login))
	mux.HandleFunc("DELETE /api/v1/session", h.Logout)
	mux.HandleFunc("GET /api/v1/items", h.ListItems)
	mux.HandleFunc("POST /api/v1/items", requireJSON(h.CreateItem))
	mux.HandleFunc("GET /api/v1/items/{code}", h.GetItem)
	mux.HandleFunc("PUT /api/v1/items/{code}", requireJSON(h.UpdateItem))
	mux.HandleFunc("DELETE /api/v1/items/{code}", h.DeleteItem)
	mux.HandleFunc("GET /api/v1/health", h.Health)
}

// NewServeMux creates an http.Handler with all API routes registered and
// wrapped with the standard middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	RegisterAPIRoutes(mux, h)
	return ApplyMiddleware(mux, logger)
}

// GetSession reports whether a store connection is open.
func (h *Handler) GetSession(w http.ResponseWriter, _ *http.Request) {
	resp := SessionResponse{LoggedIn: h.session.IsLoggedIn()}
	if resp.LoggedIn {
		resp.Username = h.session.Username()
	}
	writeJSON(w, http.StatusOK, resp)
}

// Login opens a store connection with the supplied credentials.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.session.Login(r.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, driven.ErrAuthentication) {
			writeError(w, http.StatusUnauthorized, "authentication failed")
			return
		}
		h.logger.Error("failed to connect to store", "username", req.Username, "error", err)
		writeError(w, http.StatusServiceUnavailable, "document store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{LoggedIn: true, Username: req.Username})
}

// Logout closes the store connection.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.session.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// ListItems returns every item in store order.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	rows, err := h.items.Refresh(r.Context())
	if err != nil {
		h.writeServiceError(w, "failed to list items", "", err)
		return
	}

	writeJSON(w, http.StatusOK, toItemRowResponses(rows))
}

// GetItem returns a single item by code.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	item, err := h.items.Load(r.Context(), code)
	if err != nil {
		h.writeServiceError(w, "failed to get item", code, err)
		return
	}

	writeJSON(w, http.StatusOK, toItemResponse(item))
}

// CreateItem inserts an item unless its code already exists. An existing
// code is not an error: the response reports created=false with 200.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.items.SubmitNew(r.Context(), req.Code, req.Description)
	if err != nil {
		h.writeServiceError(w, "failed to create item", req.Code, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, CreateItemResponse{Code: req.Code, Created: created})
}

// UpdateItem sets a new description on an existing item.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	loaded, err := h.items.Load(r.Context(), code)
	if err != nil {
		h.writeServiceError(w, "failed to load item", code, err)
		return
	}

	changed, err := h.items.SubmitEdit(r.Context(), loaded, req.Description)
	if err != nil {
		h.writeServiceError(w, "failed to update item", code, err)
		return
	}

	writeJSON(w, http.StatusOK, UpdateItemResponse{Code: code, Changed: changed})
}

// DeleteItem removes an item by code.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	if err := h.items.Delete(r.Context(), code); err != nil {
		h.writeServiceError(w, "failed to delete item", code, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Time:     time.Now().UTC().Format(time.RFC3339),
		LoggedIn: h.session.IsLoggedIn(),
	})
}

// writeServiceError maps application and port errors to status codes.
// Unexpected errors are logged and reported as 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, msg, code string, err error) {
	var verr *application.ValidationError
	switch {
	case errors.Is(err, application.ErrNotLoggedIn):
		writeError(w, http.StatusUnauthorized, "not logged in")
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: verr.Fields()})
	case errors.Is(err, driven.ErrItemNotFound):
		writeError(w, http.StatusNotFound, "item not found")
	default:
		h.logger.Error(msg, "code", code, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
