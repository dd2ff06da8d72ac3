package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/soyeahso/roster/internal/hooks"
	"github.com/soyeahso/roster/internal/proxy"
)

// maxBodyBytes bounds a forwarded request body.
const maxBodyBytes = 1 << 20

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// handleNotFound returns a 404 for unknown routes.
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "Not Found",
		"path":  r.URL.Path,
	})
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := s.fwd.ListAgentsJSON(r.Context())
	if err != nil {
		s.writeProxyError(w, r, err)
		return
	}
	writeRaw(w, http.StatusOK, agents)
}

func (s *Server) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	agent, reply, err := s.fwd.CreateAgentJSON(r.Context(), body)
	if err != nil {
		s.writeProxyError(w, r, err)
		return
	}
	s.emit(hooks.EventAgentCreated, map[string]any{"id": agent.ID, "name": agent.Name})
	writeRaw(w, http.StatusCreated, reply)
}

func (s *Server) handleUpdateSalary(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	agent, reply, err := s.fwd.UpdateSalaryJSON(r.Context(), id, body)
	if err != nil {
		s.writeProxyError(w, r, err)
		return
	}
	s.emit(hooks.EventSalaryUpdated, map[string]any{"id": id, "salary": agent.Salary})
	writeRaw(w, http.StatusOK, reply)
}

func (s *Server) handleDeleteAgent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	conf, err := s.fwd.DeleteAgent(r.Context(), id)
	if err != nil {
		if proxy.IsAssignmentConflict(err) {
			s.log.Info().Str("agentId", id).Msg("delete refused, agent assigned to a mission")
		}
		s.writeProxyError(w, r, err)
		return
	}
	s.emit(hooks.EventAgentDeleted, map[string]any{"id": id})
	writeJSON(w, http.StatusOK, conf)
}

// readBody reads the request body for verbatim forwarding.
func readBody(w http.ResponseWriter, r *http.Request) (json.RawMessage, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "Request Entity Too Large"})
			return nil, false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Bad Request"})
		return nil, false
	}
	return body, true
}

// writeProxyError writes a normalized proxy failure as status and body.
func (s *Server) writeProxyError(w http.ResponseWriter, r *http.Request, err error) {
	pe := proxy.AsError(err)
	if pe.Status >= 500 {
		s.log.Warn().Int("status", pe.Status).Str("path", r.URL.Path).Msg("backend call failed")
	}
	writeJSON(w, pe.Status, pe.Body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeRaw writes a backend success body as received.
func writeRaw(w http.ResponseWriter, status int, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
