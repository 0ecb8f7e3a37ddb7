package db

import (
	"context"
	"fmt"

	"github.com/becalab/becamap/internal/models"
)

func (s *Store) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, body, read, dismissed, created_at
		FROM notifications
		WHERE dismissed = FALSE
		ORDER BY created_at DESC
		LIMIT 50
	`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var items []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.Title, &n.Body, &n.Read, &n.Dismissed, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		items = append(items, n)
	}
	if items == nil {
		items = []models.Notification{}
	}
	return items, rows.Err()
}

func (s *Store) MarkNotificationRead(ctx context.Context, id int64) error {
	_, err := s.pool.Exec(ctx, "UPDATE notifications SET read = TRUE WHERE id = $1", id)
	return err
}

func (s *Store) DismissNotification(ctx context.Context, id int64) error {
	_, err := s.pool.Exec(ctx, "UPDATE notifications SET dismissed = TRUE WHERE id = $1", id)
	return err
}

// CreateNotification is used by batch jobs to surface completion notices.
func (s *Store) CreateNotification(ctx context.Context, title, body string) error {
	_, err := s.pool.Exec(ctx, "INSERT INTO notifications (title, body) VALUES ($1, $2)", title, body)
	return err
}
