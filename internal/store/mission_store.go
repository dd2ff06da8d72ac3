package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/soyeahso/roster/internal/domain"
)

// MissionStore persists missions and their targets.
type MissionStore struct {
	db *DB
}

// NewMissionStore creates a mission store using the given database.
func NewMissionStore(db *DB) *MissionStore {
	return &MissionStore{db: db}
}

// Create inserts a mission with its targets. When AgentID is set the agent
// must exist and must not already hold an active mission.
func (s *MissionStore) Create(in domain.MissionInput) (domain.Mission, error) {
	if len(in.Targets) < domain.MinTargets || len(in.Targets) > domain.MaxTargets {
		return domain.Mission{}, ErrTargetCount
	}

	tx, err := s.db.sql.Begin()
	if err != nil {
		return domain.Mission{}, fmt.Errorf("begin create mission: %w", err)
	}
	defer tx.Rollback()

	if in.AgentID != nil {
		if err := checkAssignable(tx, *in.AgentID); err != nil {
			return domain.Mission{}, err
		}
	}

	res, err := tx.Exec("INSERT INTO missions (agent_id) VALUES (?)", nullableID(in.AgentID))
	if err != nil {
		return domain.Mission{}, fmt.Errorf("inserting mission: %w", err)
	}
	missionID, err := res.LastInsertId()
	if err != nil {
		return domain.Mission{}, fmt.Errorf("reading mission id: %w", err)
	}

	for _, t := range in.Targets {
		if _, err := tx.Exec(
			"INSERT INTO targets (mission_id, name, country) VALUES (?, ?, ?)",
			missionID, t.Name, t.Country,
		); err != nil {
			return domain.Mission{}, fmt.Errorf("inserting target: %w", err)
		}
	}

	m, err := loadMission(tx, missionID)
	if err != nil {
		return domain.Mission{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Mission{}, fmt.Errorf("commit create mission: %w", err)
	}

	s.db.log.Debug().Int64("missionId", missionID).Int("targets", len(in.Targets)).Msg("mission created")
	return m, nil
}

// Get returns one mission with its targets, or ErrNotFound.
func (s *MissionStore) Get(id int64) (domain.Mission, error) {
	return loadMission(s.db.sql, id)
}

// List returns every mission with its targets, in id order.
func (s *MissionStore) List() ([]domain.Mission, error) {
	rows, err := s.db.sql.Query("SELECT id, agent_id, is_completed FROM missions ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing missions: %w", err)
	}
	missions := []domain.Mission{}
	index := map[int64]int{}
	for rows.Next() {
		m, err := scanMission(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		index[m.ID] = len(missions)
		missions = append(missions, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing missions: %w", err)
	}

	trows, err := s.db.sql.Query(
		"SELECT " + targetColumns + " FROM targets ORDER BY mission_id, id",
	)
	if err != nil {
		return nil, fmt.Errorf("listing targets: %w", err)
	}
	defer trows.Close()
	for trows.Next() {
		t, err := scanTarget(trows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[t.MissionID]; ok {
			missions[i].Targets = append(missions[i].Targets, t)
		}
	}
	return missions, trows.Err()
}

// Assign hands a mission to an agent. Re-assigning to the current agent is
// a no-op.
func (s *MissionStore) Assign(missionID, agentID int64) (domain.Mission, error) {
	tx, err := s.db.sql.Begin()
	if err != nil {
		return domain.Mission{}, fmt.Errorf("begin assign mission: %w", err)
	}
	defer tx.Rollback()

	m, err := loadMission(tx, missionID)
	if err != nil {
		return domain.Mission{}, err
	}
	if m.IsCompleted {
		return domain.Mission{}, ErrMissionCompleted
	}
	if m.AgentID != nil && *m.AgentID == agentID {
		return m, nil
	}
	if err := checkAssignable(tx, agentID); err != nil {
		return domain.Mission{}, err
	}

	if _, err := tx.Exec("UPDATE missions SET agent_id = ? WHERE id = ?", agentID, missionID); err != nil {
		return domain.Mission{}, fmt.Errorf("assigning mission %d: %w", missionID, err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Mission{}, fmt.Errorf("commit assign mission: %w", err)
	}

	s.db.log.Debug().Int64("missionId", missionID).Int64("agentId", agentID).Msg("mission assigned")
	m.AgentID = &agentID
	return m, nil
}

// Unassign clears the agent reference of a mission.
func (s *MissionStore) Unassign(missionID int64) (domain.Mission, error) {
	res, err := s.db.sql.Exec("UPDATE missions SET agent_id = NULL WHERE id = ?", missionID)
	if err != nil {
		return domain.Mission{}, fmt.Errorf("unassigning mission %d: %w", missionID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Mission{}, ErrNotFound
	}
	s.db.log.Debug().Int64("missionId", missionID).Msg("mission unassigned")
	return s.Get(missionID)
}

// UpdateTarget applies a partial update to a target. Completing the last
// open target completes its mission.
func (s *MissionStore) UpdateTarget(targetID int64, upd domain.TargetUpdate) (domain.Target, error) {
	tx, err := s.db.sql.Begin()
	if err != nil {
		return domain.Target{}, fmt.Errorf("begin update target: %w", err)
	}
	defer tx.Rollback()

	t, err := scanTarget(tx.QueryRow("SELECT "+targetColumns+" FROM targets WHERE id = ?", targetID))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Target{}, ErrNotFound
	}
	if err != nil {
		return domain.Target{}, fmt.Errorf("getting target %d: %w", targetID, err)
	}

	var missionDone bool
	if err := tx.QueryRow("SELECT is_completed FROM missions WHERE id = ?", t.MissionID).Scan(&missionDone); err != nil {
		return domain.Target{}, fmt.Errorf("getting mission %d: %w", t.MissionID, err)
	}
	if missionDone {
		return domain.Target{}, ErrMissionCompleted
	}
	if upd.Notes != nil && t.IsCompleted {
		return domain.Target{}, ErrTargetCompleted
	}

	if upd.Notes != nil {
		t.Notes = *upd.Notes
	}
	if upd.IsCompleted != nil {
		t.IsCompleted = *upd.IsCompleted
	}
	if _, err := tx.Exec(
		"UPDATE targets SET notes = ?, is_completed = ? WHERE id = ?", t.Notes, t.IsCompleted, targetID,
	); err != nil {
		return domain.Target{}, fmt.Errorf("updating target %d: %w", targetID, err)
	}

	if upd.IsCompleted != nil {
		var open int
		if err := tx.QueryRow(
			"SELECT COUNT(*) FROM targets WHERE mission_id = ? AND is_completed = 0", t.MissionID,
		).Scan(&open); err != nil {
			return domain.Target{}, fmt.Errorf("counting open targets: %w", err)
		}
		if open == 0 {
			if _, err := tx.Exec("UPDATE missions SET is_completed = 1 WHERE id = ?", t.MissionID); err != nil {
				return domain.Target{}, fmt.Errorf("completing mission %d: %w", t.MissionID, err)
			}
			s.db.log.Debug().Int64("missionId", t.MissionID).Msg("mission completed")
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Target{}, fmt.Errorf("commit update target: %w", err)
	}
	return t, nil
}

// checkAssignable returns ErrNotFound for an unknown agent and ErrAgentBusy
// for one that already holds an active mission.
func checkAssignable(q querier, agentID int64) error {
	found, err := exists(q, "agents", agentID)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	active, err := activeMissionFor(q, agentID)
	if err != nil {
		return err
	}
	if active != 0 {
		return ErrAgentBusy
	}
	return nil
}

const targetColumns = "id, mission_id, name, country, notes, is_completed"

func scanTarget(row interface{ Scan(...any) error }) (domain.Target, error) {
	var t domain.Target
	err := row.Scan(&t.ID, &t.MissionID, &t.Name, &t.Country, &t.Notes, &t.IsCompleted)
	return t, err
}

func scanMission(row interface{ Scan(...any) error }) (domain.Mission, error) {
	var m domain.Mission
	var agentID sql.NullInt64
	if err := row.Scan(&m.ID, &agentID, &m.IsCompleted); err != nil {
		return domain.Mission{}, err
	}
	if agentID.Valid {
		id := agentID.Int64
		m.AgentID = &id
	}
	m.Targets = []domain.Target{}
	return m, nil
}

// loadMission reads a mission and its targets through q.
func loadMission(q querier, id int64) (domain.Mission, error) {
	m, err := scanMission(q.QueryRow("SELECT id, agent_id, is_completed FROM missions WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Mission{}, ErrNotFound
	}
	if err != nil {
		return domain.Mission{}, fmt.Errorf("getting mission %d: %w", id, err)
	}

	rows, err := q.Query("SELECT "+targetColumns+" FROM targets WHERE mission_id = ? ORDER BY id", id)
	if err != nil {
		return domain.Mission{}, fmt.Errorf("getting targets of mission %d: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		t, err := scanTarget(rows)
		if err != nil {
			return domain.Mission{}, fmt.Errorf("scanning target: %w", err)
		}
		m.Targets = append(m.Targets, t)
	}
	return m, rows.Err()
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
