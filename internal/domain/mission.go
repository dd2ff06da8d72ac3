package domain

import "strings"

// Mission limits on the number of targets.
const (
	MinTargets = 1
	MaxTargets = 3
)

// Mission groups one to three targets and may be assigned to one agent.
type Mission struct {
	ID          int64    `json:"id"`
	AgentID     *int64   `json:"agent_id"`
	IsCompleted bool     `json:"is_completed"`
	Targets     []Target `json:"targets"`
}

// Active reports whether the mission still holds its agent.
func (m Mission) Active() bool {
	return m.AgentID != nil && !m.IsCompleted
}

// Target is one objective within a mission.
type Target struct {
	ID          int64  `json:"id"`
	MissionID   int64  `json:"mission_id"`
	Name        string `json:"name"`
	Country     string `json:"country"`
	Notes       string `json:"notes"`
	IsCompleted bool   `json:"is_completed"`
}

// TargetInput is a target as supplied when a mission is created.
type TargetInput struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

// MissionInput is the body of a mission create request.
type MissionInput struct {
	AgentID *int64        `json:"agent_id,omitempty"`
	Targets []TargetInput `json:"targets"`
}

// TargetUpdate is a partial update of a target. Nil fields are left alone.
type TargetUpdate struct {
	Notes       *string `json:"notes,omitempty"`
	IsCompleted *bool   `json:"is_completed,omitempty"`
}

// Assignment is the body of a mission assignment request.
type Assignment struct {
	AgentID int64 `json:"agent_id"`
}

// Validate checks the target fields. The target count is a store rule and is
// not checked here.
func (in MissionInput) Validate() []FieldError {
	var errs []FieldError
	for _, t := range in.Targets {
		if strings.TrimSpace(t.Name) == "" {
			errs = append(errs, FieldError{Field: "targets.name", Message: "target name is required"})
		}
		if strings.TrimSpace(t.Country) == "" {
			errs = append(errs, FieldError{Field: "targets.country", Message: "target country is required"})
		}
	}
	return errs
}
