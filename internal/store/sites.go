package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	perrors "github.com/p-blackswan/site-agent/internal/errors"
	"github.com/p-blackswan/site-agent/internal/site"
)

// Site is a persisted ContentModel with its bookkeeping columns.
type Site struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Content   site.ContentModel `json:"content"`
	Version   int64             `json:"version"`
	CreatedAt int64             `json:"createdAt"`
	UpdatedAt int64             `json:"updatedAt"`
}

// CreateSite stores model as a new site and returns it with its id.
func (s *Store) CreateSite(ctx context.Context, name string, model site.ContentModel) (*Site, error) {
	content, err := json.Marshal(model)
	if err != nil {
		return nil, fmt.Errorf("failed to encode content model: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixMilli()
	st := &Site{ID: uuid.NewString(), Name: name, Content: model, Version: 1, CreatedAt: now, UpdatedAt: now}
	_, err = s.db.ExecContext(ctx, `
	INSERT INTO sites (id, name, content, version, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`, st.ID, st.Name, string(content), st.Version, st.CreatedAt, st.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create site: %w", err)
	}
	return st, nil
}

// GetSite retrieves a site by ID.
func (s *Store) GetSite(ctx context.Context, id string) (*Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := &Site{}
	var content string
	err := s.db.QueryRowContext(ctx, `
	SELECT id, name, content, version, created_at, updated_at
	FROM sites WHERE id = ?
	`, id).Scan(&st.ID, &st.Name, &content, &st.Version, &st.CreatedAt, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("site %s: %w", id, perrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get site: %w", err)
	}
	if err := json.Unmarshal([]byte(content), &st.Content); err != nil {
		return nil, fmt.Errorf("failed to decode content model for site %s: %w", id, err)
	}
	return st, nil
}

// LoadContentModel returns the current snapshot of a site.
func (s *Store) LoadContentModel(ctx context.Context, siteID string) (site.ContentModel, error) {
	st, err := s.GetSite(ctx, siteID)
	if err != nil {
		return site.ContentModel{}, err
	}
	return st.Content, nil
}

// SaveContentModel replaces the whole document of a site. Concurrent writers
// are not detected: the last write wins.
func (s *Store) SaveContentModel(ctx context.Context, siteID string, model site.ContentModel) error {
	content, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("failed to encode content model: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
	UPDATE sites SET content = ?, version = version + 1, updated_at = ?
	WHERE id = ?
	`, string(content), time.Now().UnixMilli(), siteID)
	if err != nil {
		return fmt.Errorf("failed to save content model: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to save content model: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("site %s: %w", siteID, perrors.ErrNotFound)
	}
	return nil
}

// DeleteSite removes a site and its action log.
func (s *Store) DeleteSite(ctx context.Context, siteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM action_log WHERE site_id = ?`, siteID); err != nil {
		return fmt.Errorf("failed to delete action log: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sites WHERE id = ?`, siteID)
	if err != nil {
		return fmt.Errorf("failed to delete site: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("site %s: %w", siteID, perrors.ErrNotFound)
	}
	return tx.Commit()
}
