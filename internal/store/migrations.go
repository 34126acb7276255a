package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

type migration struct {
	version int
	schema  string
}

var migrations = []migration{
	{1, `
	CREATE TABLE IF NOT EXISTS sites (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL DEFAULT '',
		content    TEXT NOT NULL,
		version    INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS onboarding_sessions (
		id         TEXT PRIMARY KEY,
		step       TEXT NOT NULL,
		answers    TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_updated ON onboarding_sessions(updated_at);
	`},
	{2, `
	CREATE TABLE IF NOT EXISTS action_log (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		site_id     TEXT NOT NULL REFERENCES sites(id) ON DELETE CASCADE,
		request_id  TEXT NOT NULL DEFAULT '',
		action      TEXT NOT NULL,
		success     INTEGER NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		error       TEXT,
		code        TEXT,
		created_at  INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_action_log_site ON action_log(site_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_action_log_created ON action_log(created_at);
	`},
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create meta table: %w", err)
	}

	current, err := s.schemaVersion()
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if _, err := s.db.Exec(m.schema); err != nil {
			return fmt.Errorf("failed to execute migration v%d: %w", m.version, err)
		}
		if _, err := s.db.Exec(`INSERT OR REPLACE INTO meta(key, value) VALUES ('schema_version', ?)`,
			strconv.Itoa(m.version)); err != nil {
			return fmt.Errorf("failed to update schema version: %w", err)
		}
		s.logger.Info().Int("version", m.version).Msg("Applied migration")
	}
	return nil
}

// schemaVersion returns 0 for a fresh database.
func (s *Store) schemaVersion() (int, error) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("bad schema_version %q: %w", raw, err)
	}
	return v, nil
}
