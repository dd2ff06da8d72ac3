package recordstore

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/soyeahso/roster/internal/breeds"
	"github.com/soyeahso/roster/internal/domain"
)

type healthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		s.log.Warn().Err(err).Msg("health check failed")
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	skip, ok := queryInt(w, r, "skip", 0)
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", 0)
	if !ok {
		return
	}

	agents, err := s.agents.List(skip, limit)
	if err != nil {
		s.storeFailure(w, err, "Agent")
		return
	}
	writeJSON(w, http.StatusOK, agents)
}

// createAgentBody keeps absent fields apart from zero values.
type createAgentBody struct {
	Name              *string  `json:"name"`
	YearsOfExperience *int     `json:"years_of_experience"`
	Breed             *string  `json:"breed"`
	Salary            *float64 `json:"salary"`
}

var createAgentFields = []string{"name", "years_of_experience", "breed", "salary"}

// input converts the body, reporting absent fields as required and the
// rest through AgentInput.Validate, in field order.
func (b createAgentBody) input() (domain.AgentInput, []domain.FieldError) {
	var in domain.AgentInput
	missing := make(map[string]bool)
	if b.Name != nil {
		in.Name = *b.Name
	} else {
		missing["name"] = true
	}
	if b.YearsOfExperience != nil {
		in.YearsOfExperience = *b.YearsOfExperience
	} else {
		missing["years_of_experience"] = true
	}
	if b.Breed != nil {
		in.Breed = *b.Breed
	} else {
		missing["breed"] = true
	}
	if b.Salary != nil {
		in.Salary = *b.Salary
	} else {
		missing["salary"] = true
	}

	invalid := in.Validate()
	var errs []domain.FieldError
	for _, field := range createAgentFields {
		if missing[field] {
			errs = append(errs, domain.FieldError{Field: field, Message: field + " is required"})
			continue
		}
		for _, fe := range invalid {
			if fe.Field == field {
				errs = append(errs, fe)
			}
		}
	}
	return in, errs
}

func (s *Server) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	var body createAgentBody
	if !decodeBody(w, r, &body) {
		return
	}
	in, errs := body.input()
	if len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	if s.breeds != nil {
		if err := s.breeds.Validate(r.Context(), in.Breed); err != nil {
			var invalid *breeds.InvalidBreedError
			if errors.As(err, &invalid) {
				writeError(w, http.StatusBadRequest, "invalid_breed", invalid.Error())
				return
			}
			s.log.Warn().Err(err).Msg("breed catalog unavailable")
			writeError(w, http.StatusBadGateway, "breed_catalog_unavailable", "Breed catalog unavailable")
			return
		}
	}

	agent, err := s.agents.Create(in)
	if err != nil {
		s.storeFailure(w, err, "Agent")
		return
	}
	s.log.Info().Int64("agentId", agent.ID).Str("breed", agent.Breed).Msg("agent created")
	writeJSON(w, http.StatusCreated, agent)
}

func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	agent, err := s.agents.Get(id)
	if err != nil {
		s.storeFailure(w, err, "Agent")
		return
	}
	writeJSON(w, http.StatusOK, agent)
}

// handleUpdateSalary accepts {"salary": v} or a ?salary= query parameter.
// The query parameter wins when both are present.
func (s *Server) handleUpdateSalary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var upd domain.SalaryUpdate
	if raw := r.URL.Query().Get("salary"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeValidation(w, []domain.FieldError{{Field: "salary", Message: "must be a number"}})
			return
		}
		upd.Salary = v
	} else {
		var body struct {
			Salary *float64 `json:"salary"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		if body.Salary == nil {
			writeValidation(w, []domain.FieldError{{Field: "salary", Message: "salary is required"}})
			return
		}
		upd.Salary = *body.Salary
	}
	if errs := upd.Validate(); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	agent, err := s.agents.UpdateSalary(id, upd.Salary)
	if err != nil {
		s.storeFailure(w, err, "Agent")
		return
	}
	s.log.Info().Int64("agentId", id).Float64("salary", agent.Salary).Msg("salary updated")
	writeJSON(w, http.StatusOK, agent)
}

func (s *Server) handleDeleteAgent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.agents.Delete(id); err != nil {
		s.storeFailure(w, err, "Agent")
		return
	}
	s.log.Info().Int64("agentId", id).Msg("agent deleted")
	writeJSON(w, http.StatusOK, MessageBody{Message: "Agent deleted successfully"})
}

func queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		writeValidation(w, []domain.FieldError{{Field: name, Message: "must be a non-negative integer"}})
		return 0, false
	}
	return v, true
}
