package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/p-blackswan/site-agent/internal/action"
	perrors "github.com/p-blackswan/site-agent/internal/errors"
)

// LoggedOutcome is one row of the action log.
type LoggedOutcome struct {
	ID        int64  `json:"id"`
	SiteID    string `json:"siteId"`
	RequestID string `json:"requestId,omitempty"`
	action.Outcome
	CreatedAt int64 `json:"createdAt"`
}

// RecordOutcomes appends a batch's outcomes to the action log in one
// transaction.
func (s *Store) RecordOutcomes(ctx context.Context, siteID, requestID string, outcomes []action.Outcome) error {
	if len(outcomes) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO action_log (site_id, request_id, action, success, description, error, code, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare action log insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UnixMilli()
	for _, o := range outcomes {
		_, err := stmt.ExecContext(ctx,
			siteID, requestID, string(o.Action), o.Success, o.Description,
			sql.NullString{String: o.Error, Valid: o.Error != ""},
			sql.NullString{String: string(o.Code), Valid: o.Code != ""},
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to record outcome: %w", err)
		}
	}
	return tx.Commit()
}

// ListOutcomes returns up to limit action-log rows for a site, newest first.
func (s *Store) ListOutcomes(ctx context.Context, siteID string, limit int) ([]LoggedOutcome, error) {
	if limit <= 0 {
		limit = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
	SELECT id, site_id, request_id, action, success, description, error, code, created_at
	FROM action_log WHERE site_id = ?
	ORDER BY created_at DESC, id DESC
	LIMIT ?
	`, siteID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}
	defer rows.Close()

	out := []LoggedOutcome{}
	for rows.Next() {
		var lo LoggedOutcome
		var name string
		var errMsg, code sql.NullString
		if err := rows.Scan(&lo.ID, &lo.SiteID, &lo.RequestID, &name, &lo.Success,
			&lo.Description, &errMsg, &code, &lo.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		lo.Action = action.Name(name)
		lo.Error = errMsg.String
		lo.Code = perrors.Code(code.String)
		out = append(out, lo)
	}
	return out, rows.Err()
}
