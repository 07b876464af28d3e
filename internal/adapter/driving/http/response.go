package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/itempanel/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body. Fields is set only for
// validation failures.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// LoginRequest is the body of POST /api/v1/session.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateItemRequest is the body of POST /api/v1/items.
type CreateItemRequest struct {
	Code        string `json:"code"`
	Description string `json:"desc"`
}

// UpdateItemRequest is the body of PUT /api/v1/items/{code}.
type UpdateItemRequest struct {
	Description string `json:"desc"`
}

// ItemRowResponse is the JSON representation of a list row.
type ItemRowResponse struct {
	Code        string `json:"code"`
	Description string `json:"desc"`
}

// ItemResponse is the JSON representation of a single item.
type ItemResponse struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Description string `json:"desc"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// CreateItemResponse reports whether POST /api/v1/items wrote a document.
type CreateItemResponse struct {
	Code    string `json:"code"`
	Created bool   `json:"created"`
}

// UpdateItemResponse reports whether PUT /api/v1/items/{code} wrote a change.
type UpdateItemResponse struct {
	Code    string `json:"code"`
	Changed bool   `json:"changed"`
}

// SessionResponse describes the current session.
type SessionResponse struct {
	LoggedIn bool   `json:"logged_in"`
	Username string `json:"username,omitempty"`
}

// HealthResponse is the response body for the health check endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Time     string `json:"time"`
	LoggedIn bool   `json:"logged_in"`
}

func toItemRowResponses(rows []model.ListRow) []ItemRowResponse {
	resp := make([]ItemRowResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, ItemRowResponse{Code: row.Code, Description: row.Description})
	}
	return resp
}

func toItemResponse(item model.Item) ItemResponse {
	return ItemResponse{
		ID:          item.ID,
		Code:        item.Code,
		Description: item.Description,
		CreatedAt:   formatTime(item.CreatedAt),
		UpdatedAt:   formatTime(item.UpdatedAt),
	}
}

// formatTime renders t as RFC 3339 in UTC, or "" for the zero time.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
