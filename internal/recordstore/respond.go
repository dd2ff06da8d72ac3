package recordstore

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/soyeahso/roster/internal/domain"
	"github.com/soyeahso/roster/internal/store"
)

// ErrorBody is the shape of every error reply.
type ErrorBody struct {
	Detail any    `json:"detail"` // string, or []domain.FieldError for validation failures
	Code   string `json:"code"`
}

// MessageBody acknowledges a mutation.
type MessageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, ErrorBody{Detail: detail, Code: code})
}

func writeValidation(w http.ResponseWriter, errs []domain.FieldError) {
	writeJSON(w, http.StatusUnprocessableEntity, ErrorBody{Detail: errs, Code: "validation_error"})
}

// storeFailure maps a store sentinel to its reply. notFound names the missing
// record in the 404 detail.
func (s *Server) storeFailure(w http.ResponseWriter, err error, notFound string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", notFound+" not found")
	case errors.Is(err, store.ErrAgentAssigned):
		writeError(w, http.StatusBadRequest, "agent_assigned", "Cannot delete agent assigned to a mission")
	case errors.Is(err, store.ErrAgentBusy):
		writeError(w, http.StatusConflict, "agent_busy", "Agent already has an active mission")
	case errors.Is(err, store.ErrMissionCompleted):
		writeError(w, http.StatusBadRequest, "mission_completed", "Cannot update a completed mission")
	case errors.Is(err, store.ErrTargetCompleted):
		writeError(w, http.StatusBadRequest, "target_completed", "Cannot update notes for completed target")
	case errors.Is(err, store.ErrTargetCount):
		writeError(w, http.StatusBadRequest, "target_count", "Mission must have 1-3 targets")
	default:
		s.log.Error().Err(err).Msg("store failure")
		writeError(w, http.StatusInternalServerError, "internal", "Internal Server Error")
	}
}

// pathID parses the {id} path value. On failure it writes a 422 and
// returns false.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeValidation(w, []domain.FieldError{{Field: "id", Message: "must be a positive integer"}})
		return 0, false
	}
	return id, true
}

// decodeBody reads a JSON request body into v. On failure it writes a 422
// and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeValidation(w, []domain.FieldError{{Field: "body", Message: "invalid JSON body: " + err.Error()}})
		return false
	}
	return true
}
