package recordstore

import (
	"net/http"
	"strings"
)

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /agents", s.handleListAgents)
	mux.HandleFunc("POST /agents", s.handleCreateAgent)
	mux.HandleFunc("/agents", methodNotAllowed(http.MethodGet, http.MethodPost))
	mux.HandleFunc("GET /agents/{id}", s.handleGetAgent)
	mux.HandleFunc("PUT /agents/{id}", s.handleUpdateSalary)
	mux.HandleFunc("DELETE /agents/{id}", s.handleDeleteAgent)
	mux.HandleFunc("/agents/{id}", methodNotAllowed(http.MethodGet, http.MethodPut, http.MethodDelete))

	mux.HandleFunc("GET /missions", s.handleListMissions)
	mux.HandleFunc("POST /missions", s.handleCreateMission)
	mux.HandleFunc("/missions", methodNotAllowed(http.MethodGet, http.MethodPost))
	mux.HandleFunc("GET /missions/{id}", s.handleGetMission)
	mux.HandleFunc("/missions/{id}", methodNotAllowed(http.MethodGet))
	mux.HandleFunc("PUT /missions/{id}/assignment", s.handleAssign)
	mux.HandleFunc("DELETE /missions/{id}/assignment", s.handleUnassign)
	mux.HandleFunc("/missions/{id}/assignment", methodNotAllowed(http.MethodPut, http.MethodDelete))

	mux.HandleFunc("PUT /targets/{id}", s.handleUpdateTarget)
	mux.HandleFunc("/targets/{id}", methodNotAllowed(http.MethodPut))

	mux.HandleFunc("/", handleNotFound)
}

func methodNotAllowed(allow ...string) http.HandlerFunc {
	header := strings.Join(allow, ", ")
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", header)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method Not Allowed")
	}
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not_found", "Not Found")
}
