package db

import (
	"context"
	"fmt"

	"github.com/becalab/becamap/internal/models"
)

const contentCols = `id, brand, content_status, format, red_social, funnel_stage,
	goal_pillar, producto, hook_text, caption_ai, manychat_keyword,
	manychat_automation, freebie_link, ref_url, upsell_target,
	scheduled_date, priority, created_at, updated_at`

func scanContentPiece(scan func(dest ...interface{}) error) (models.ContentPiece, error) {
	var c models.ContentPiece
	err := scan(
		&c.ID, &c.Brand, &c.ContentStatus, &c.Format, &c.RedSocial, &c.FunnelStage,
		&c.GoalPillar, &c.Producto, &c.HookText, &c.CaptionAI, &c.ManychatKeyword,
		&c.ManychatAutomation, &c.FreebieLink, &c.RefURL, &c.UpsellTarget,
		&c.ScheduledDate, &c.Priority, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

type ContentListParams struct {
	Brand       string
	FunnelStage string
	Status      string
}

func (s *Store) ListContentPieces(ctx context.Context, params ContentListParams) ([]models.ContentPiece, error) {
	where := "WHERE 1=1"
	var args []interface{}
	argIdx := 1

	if params.Brand != "" {
		where += fmt.Sprintf(" AND brand = $%d", argIdx)
		args = append(args, params.Brand)
		argIdx++
	}
	if params.FunnelStage != "" {
		where += fmt.Sprintf(" AND funnel_stage = $%d", argIdx)
		args = append(args, params.FunnelStage)
		argIdx++
	}
	if params.Status != "" {
		where += fmt.Sprintf(" AND content_status = $%d", argIdx)
		args = append(args, params.Status)
		argIdx++
	}

	sql := fmt.Sprintf("SELECT %s FROM becacontent_matrix %s ORDER BY created_at DESC", contentCols, where)
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var pieces []models.ContentPiece
	for rows.Next() {
		c, err := scanContentPiece(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		pieces = append(pieces, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	if pieces == nil {
		pieces = []models.ContentPiece{}
	}
	return pieces, nil
}

func (s *Store) CreateContentPiece(ctx context.Context, c *models.ContentPiece) error {
	if c.Priority < 1 || c.Priority > 5 {
		c.Priority = 2
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO becacontent_matrix (
			brand, content_status, format, red_social, funnel_stage,
			goal_pillar, producto, hook_text, caption_ai, manychat_keyword,
			manychat_automation, freebie_link, ref_url, upsell_target,
			scheduled_date, priority
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at
	`,
		c.Brand, c.ContentStatus, c.Format, c.RedSocial, c.FunnelStage,
		c.GoalPillar, c.Producto, c.HookText, c.CaptionAI, c.ManychatKeyword,
		c.ManychatAutomation, c.FreebieLink, c.RefURL, c.UpsellTarget,
		c.ScheduledDate, c.Priority,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert failed: %w", err)
	}
	return nil
}

func (s *Store) UpdateContentPiece(ctx context.Context, c *models.ContentPiece) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE becacontent_matrix SET
			brand = $2, content_status = $3, format = $4, red_social = $5,
			funnel_stage = $6, goal_pillar = $7, producto = $8, hook_text = $9,
			caption_ai = $10, manychat_keyword = $11, manychat_automation = $12,
			freebie_link = $13, ref_url = $14, upsell_target = $15,
			scheduled_date = $16, priority = $17, updated_at = NOW()
		WHERE id = $1
	`,
		c.ID, c.Brand, c.ContentStatus, c.Format, c.RedSocial,
		c.FunnelStage, c.GoalPillar, c.Producto, c.HookText,
		c.CaptionAI, c.ManychatKeyword, c.ManychatAutomation,
		c.FreebieLink, c.RefURL, c.UpsellTarget,
		c.ScheduledDate, c.Priority,
	)
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no content piece with id %d", c.ID)
	}
	return nil
}

func (s *Store) DeleteContentPiece(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM becacontent_matrix WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no content piece with id %d", id)
	}
	return nil
}

func (s *Store) GetContentStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var total int
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM becacontent_matrix").Scan(&total)
	stats["total"] = total

	statusCounts := map[string]int{}
	rows, err := s.pool.Query(ctx, "SELECT content_status, COUNT(*) FROM becacontent_matrix GROUP BY content_status")
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var status string
			var count int
			if scanErr := rows.Scan(&status, &count); scanErr == nil {
				statusCounts[status] = count
			}
		}
	}
	stats["status_counts"] = statusCounts

	var scheduled int
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM becacontent_matrix WHERE scheduled_date IS NOT NULL AND scheduled_date >= CURRENT_DATE").Scan(&scheduled)
	stats["upcoming_scheduled"] = scheduled

	return stats, nil
}
