package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// Static assets are served from the embedded filesystem at /static/*.
// Every POST requires a CSRF token matching the cookie.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Static assets (embedded via go:embed).
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	mux.HandleFunc("GET /{$}", h.Root)
	mux.HandleFunc("GET /login", h.LoginForm)
	mux.HandleFunc("POST /login", requireCSRF(h.Login))
	mux.HandleFunc("POST /logout", requireCSRF(h.Logout))

	mux.HandleFunc("GET /items", h.List)
	mux.HandleFunc("GET /items/new", h.NewForm)
	mux.HandleFunc("POST /items", requireCSRF(h.Create))
	mux.HandleFunc("GET /items/{code}", h.EditForm)
	mux.HandleFunc("POST /items/{code}", requireCSRF(h.Update))
	mux.HandleFunc("POST /items/{code}/delete", requireCSRF(h.Delete))
}
