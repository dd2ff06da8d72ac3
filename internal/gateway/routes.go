package gateway

import (
	"net/http"
	"strings"
)

// Allowed methods per resource path.
var (
	collectionMethods = []string{http.MethodGet, http.MethodPost}
	itemMethods       = []string{http.MethodPut, http.MethodDelete}
)

// registerHTTPRoutes sets up all HTTP routes on the server mux.
func (s *Server) registerHTTPRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/agents", s.handleListAgents)
	// GET patterns also match HEAD
	mux.HandleFunc("HEAD /api/agents", methodNotAllowed(collectionMethods))
	mux.HandleFunc("POST /api/agents", s.handleCreateAgent)
	mux.HandleFunc("/api/agents", methodNotAllowed(collectionMethods))

	mux.HandleFunc("PUT /api/agents/{id}", s.handleUpdateSalary)
	mux.HandleFunc("DELETE /api/agents/{id}", s.handleDeleteAgent)
	mux.HandleFunc("/api/agents/{id}", methodNotAllowed(itemMethods))

	// Catch-all for unknown routes
	mux.HandleFunc("/", handleNotFound)
}

// methodNotAllowed answers 405 and advertises the allowed methods both in
// the Allow header and in the body.
func methodNotAllowed(allow []string) http.HandlerFunc {
	header := strings.Join(allow, ", ")
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", header)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{
			"error": "Method Not Allowed",
			"allow": allow,
		})
	}
}
