package store

import (
	"context"
	"fmt"
	"time"
)

const (
	actionLogRetention = 30 * 24 * time.Hour
	sessionIdleTimeout = 7 * 24 * time.Hour
)

// RunRetention cleans up old data according to retention policies
func (s *Store) RunRetention(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM action_log WHERE created_at < ?",
		now.Add(-actionLogRetention).UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to delete old action log rows: %w", err)
	}
	logRows, _ := res.RowsAffected()

	// Abandoned onboarding sessions
	res, err = s.db.ExecContext(ctx,
		"DELETE FROM onboarding_sessions WHERE updated_at < ?",
		now.Add(-sessionIdleTimeout).UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to delete idle sessions: %w", err)
	}
	sessions, _ := res.RowsAffected()

	s.logger.Debug().
		Int64("action_log_rows", logRows).
		Int64("sessions", sessions).
		Msg("Retention pass complete")
	return nil
}

// DBSizeBytes returns the database size in bytes
func (s *Store) DBSizeBytes() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pageCount, pageSize int64
	if err := s.db.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	if err := s.db.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0, fmt.Errorf("failed to get page size: %w", err)
	}
	return pageCount * pageSize, nil
}
