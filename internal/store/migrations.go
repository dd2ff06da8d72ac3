package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create agents, missions and targets",
		SQL: `
			CREATE TABLE agents (
				id                  INTEGER PRIMARY KEY AUTOINCREMENT,
				name                TEXT NOT NULL,
				years_of_experience INTEGER NOT NULL CHECK (years_of_experience >= 0),
				breed               TEXT NOT NULL,
				salary              REAL NOT NULL CHECK (salary >= 0),
				created_at          TEXT NOT NULL DEFAULT (datetime('now')),
				updated_at          TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE TABLE missions (
				id           INTEGER PRIMARY KEY AUTOINCREMENT,
				agent_id     INTEGER REFERENCES agents(id) ON DELETE SET NULL,
				is_completed INTEGER NOT NULL DEFAULT 0,
				created_at   TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_missions_agent ON missions (agent_id);

			CREATE TABLE targets (
				id           INTEGER PRIMARY KEY AUTOINCREMENT,
				mission_id   INTEGER NOT NULL REFERENCES missions(id) ON DELETE CASCADE,
				name         TEXT NOT NULL,
				country      TEXT NOT NULL,
				notes        TEXT NOT NULL DEFAULT '',
				is_completed INTEGER NOT NULL DEFAULT 0
			);

			CREATE INDEX idx_targets_mission ON targets (mission_id, id);
		`,
	},
	{
		Version: 2,
		Name:    "one active mission per agent",
		SQL: `
			CREATE UNIQUE INDEX idx_missions_active_agent
				ON missions (agent_id)
				WHERE agent_id IS NOT NULL AND is_completed = 0;
		`,
	},
}
