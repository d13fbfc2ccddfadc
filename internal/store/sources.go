package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jasonCodeSpace/articles-x-sub000/internal/models"
)

// UpsertSource registers a list as a harvest source or updates its
// metadata. Existing scan history is preserved.
func (s *Store) UpsertSource(ctx context.Context, src models.Source) error {
	now := time.Now().UTC().Format(timeLayout)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sources (list_id, name, description, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (list_id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			active = excluded.active,
			updated_at = excluded.updated_at`,
		src.ListID, src.Name, src.Description, src.Active, now, now,
	)
	if err != nil {
		return fmt.Errorf("upserting source %s: %w", src.ListID, err)
	}
	return nil
}

// ActiveSourceIDs returns the list IDs currently enabled for harvesting.
func (s *Store) ActiveSourceIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT list_id FROM sources WHERE active = 1 ORDER BY list_id")
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkScanned records a completed scan of a source and how many articles
// it yielded.
func (s *Store) MarkScanned(ctx context.Context, listID string, articlesFound int) error {
	now := time.Now().UTC().Format(timeLayout)
	_, err := s.db.ExecContext(ctx, `
		UPDATE sources
		SET last_scanned_at = ?, articles_found = articles_found + ?, updated_at = ?
		WHERE list_id = ?`,
		now, articlesFound, now, listID,
	)
	if err != nil {
		return fmt.Errorf("marking source %s scanned: %w", listID, err)
	}
	return nil
}

// GetSource returns a source by list ID, or nil when absent.
func (s *Store) GetSource(ctx context.Context, listID string) (*models.Source, error) {
	var (
		src           models.Source
		lastScannedAt sql.NullString
		createdAt     string
		updatedAt     string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT list_id, name, description, active, last_scanned_at, articles_found, created_at, updated_at
		FROM sources WHERE list_id = ?`, listID).
		Scan(&src.ListID, &src.Name, &src.Description, &src.Active,
			&lastScannedAt, &src.ArticlesFound, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying source %s: %w", listID, err)
	}

	if lastScannedAt.Valid {
		src.LastScannedAt = parseTime(lastScannedAt.String)
	}
	src.CreatedAt = parseTime(createdAt)
	src.UpdatedAt = parseTime(updatedAt)
	return &src, nil
}
