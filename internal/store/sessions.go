package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	perrors "github.com/p-blackswan/site-agent/internal/errors"
	"github.com/p-blackswan/site-agent/internal/onboarding"
)

// Session is a persisted onboarding state.
type Session struct {
	ID        string           `json:"id"`
	State     onboarding.State `json:"state"`
	CreatedAt int64            `json:"createdAt"`
	UpdatedAt int64            `json:"updatedAt"`
}

// SaveSession inserts or replaces the state of an onboarding session.
func (s *Store) SaveSession(ctx context.Context, id string, state onboarding.State) error {
	answers, err := json.Marshal(state.Answers)
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixMilli()
	_, err = s.db.ExecContext(ctx, `
	INSERT INTO onboarding_sessions (id, step, answers, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET step = excluded.step, answers = excluded.answers, updated_at = excluded.updated_at
	`, id, string(state.Step), string(answers), now, now)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// LoadSession retrieves an onboarding session by ID.
func (s *Store) LoadSession(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess := &Session{}
	var step, answers string
	err := s.db.QueryRowContext(ctx, `
	SELECT id, step, answers, created_at, updated_at
	FROM onboarding_sessions WHERE id = ?
	`, id).Scan(&sess.ID, &step, &answers, &sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, perrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	sess.State.Step = onboarding.Step(step)
	if err := json.Unmarshal([]byte(answers), &sess.State.Answers); err != nil {
		return nil, fmt.Errorf("failed to decode answers for session %s: %w", id, err)
	}
	if sess.State.Answers == nil {
		sess.State.Answers = map[string]any{}
	}
	return sess, nil
}

// DeleteSession removes an onboarding session.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM onboarding_sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("session %s: %w", id, perrors.ErrNotFound)
	}
	return nil
}
