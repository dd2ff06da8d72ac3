package recordstore

import (
	"net/http"

	"github.com/soyeahso/roster/internal/domain"
)

func (s *Server) handleListMissions(w http.ResponseWriter, r *http.Request) {
	missions, err := s.missions.List()
	if err != nil {
		s.storeFailure(w, err, "Mission")
		return
	}
	writeJSON(w, http.StatusOK, missions)
}

func (s *Server) handleCreateMission(w http.ResponseWriter, r *http.Request) {
	var in domain.MissionInput
	if !decodeBody(w, r, &in) {
		return
	}
	if errs := in.Validate(); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	m, err := s.missions.Create(in)
	if err != nil {
		s.storeFailure(w, err, "Agent")
		return
	}
	s.log.Info().Int64("missionId", m.ID).Int("targets", len(m.Targets)).Msg("mission created")
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleGetMission(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	m, err := s.missions.Get(id)
	if err != nil {
		s.storeFailure(w, err, "Mission")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var a domain.Assignment
	if !decodeBody(w, r, &a) {
		return
	}
	if a.AgentID <= 0 {
		writeValidation(w, []domain.FieldError{{Field: "agent_id", Message: "must be a positive integer"}})
		return
	}

	m, err := s.missions.Assign(id, a.AgentID)
	if err != nil {
		s.storeFailure(w, err, "Mission or agent")
		return
	}
	s.log.Info().Int64("missionId", id).Int64("agentId", a.AgentID).Msg("mission assigned")
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleUnassign(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	m, err := s.missions.Unassign(id)
	if err != nil {
		s.storeFailure(w, err, "Mission")
		return
	}
	s.log.Info().Int64("missionId", id).Msg("mission unassigned")
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleUpdateTarget(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var upd domain.TargetUpdate
	if !decodeBody(w, r, &upd) {
		return
	}
	if _, err := s.missions.UpdateTarget(id, upd); err != nil {
		s.storeFailure(w, err, "Target")
		return
	}
	writeJSON(w, http.StatusOK, MessageBody{Message: "Target updated successfully"})
}
