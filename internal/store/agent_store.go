package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/soyeahso/roster/internal/domain"
)

// AgentStore persists agent records.
type AgentStore struct {
	db *DB
}

// NewAgentStore creates an agent store using the given database.
func NewAgentStore(db *DB) *AgentStore {
	return &AgentStore{db: db}
}

const agentColumns = "id, name, years_of_experience, breed, salary"

func scanAgent(row interface{ Scan(...any) error }) (domain.Agent, error) {
	var a domain.Agent
	err := row.Scan(&a.ID, &a.Name, &a.YearsOfExperience, &a.Breed, &a.Salary)
	return a, err
}

// List returns agents in id order, skipping the first skip rows. A
// non-positive limit returns every remaining row.
func (s *AgentStore) List(skip, limit int) ([]domain.Agent, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = -1 // sqlite: no upper bound
	}

	rows, err := s.db.sql.Query(
		"SELECT "+agentColumns+" FROM agents ORDER BY id LIMIT ? OFFSET ?", limit, skip,
	)
	if err != nil {
		return nil, fmt.Errorf("listing agents: %w", err)
	}
	defer rows.Close()

	agents := []domain.Agent{}
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning agent: %w", err)
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// Get returns one agent, or ErrNotFound.
func (s *AgentStore) Get(id int64) (domain.Agent, error) {
	a, err := scanAgent(s.db.sql.QueryRow("SELECT "+agentColumns+" FROM agents WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Agent{}, ErrNotFound
	}
	if err != nil {
		return domain.Agent{}, fmt.Errorf("getting agent %d: %w", id, err)
	}
	return a, nil
}

// Create inserts a new agent. The input is assumed to be validated.
func (s *AgentStore) Create(in domain.AgentInput) (domain.Agent, error) {
	res, err := s.db.sql.Exec(
		"INSERT INTO agents (name, years_of_experience, breed, salary) VALUES (?, ?, ?, ?)",
		in.Name, in.YearsOfExperience, in.Breed, in.Salary,
	)
	if err != nil {
		return domain.Agent{}, fmt.Errorf("inserting agent: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Agent{}, fmt.Errorf("reading agent id: %w", err)
	}

	s.db.log.Debug().Int64("agentId", id).Str("name", in.Name).Msg("agent created")
	return in.WithID(id), nil
}

// UpdateSalary sets the salary of one agent and returns the updated record.
func (s *AgentStore) UpdateSalary(id int64, salary float64) (domain.Agent, error) {
	res, err := s.db.sql.Exec(
		"UPDATE agents SET salary = ?, updated_at = datetime('now') WHERE id = ?", salary, id,
	)
	if err != nil {
		return domain.Agent{}, fmt.Errorf("updating agent %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Agent{}, ErrNotFound
	}
	return s.Get(id)
}

// Delete removes an agent. An agent held by an active mission is refused
// with ErrAgentAssigned; completed missions lose their reference.
func (s *AgentStore) Delete(id int64) error {
	tx, err := s.db.sql.Begin()
	if err != nil {
		return fmt.Errorf("begin delete agent: %w", err)
	}
	defer tx.Rollback()

	found, err := exists(tx, "agents", id)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}

	missionID, err := activeMissionFor(tx, id)
	if err != nil {
		return err
	}
	if missionID != 0 {
		s.db.log.Debug().Int64("agentId", id).Int64("missionId", missionID).Msg("delete refused, agent assigned")
		return ErrAgentAssigned
	}

	if _, err := tx.Exec("DELETE FROM agents WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting agent %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete agent: %w", err)
	}

	s.db.log.Debug().Int64("agentId", id).Msg("agent deleted")
	return nil
}
