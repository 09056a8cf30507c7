// internal/repository/postgres/content_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"communityledger/internal/domain"
	"communityledger/internal/repository"
	"communityledger/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// ContentRepository implements repository.ContentRepository for PostgreSQL.
type ContentRepository struct{}

// NewContentRepository creates a new ContentRepository.
func NewContentRepository(db *sqlx.DB) repository.ContentRepository {
	return &ContentRepository{}
}

// GetContentByID retrieves community content by its ID using the provided DBExecutor.
func (r *ContentRepository) GetContentByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.CommunityContent, error) {
	var content domain.CommunityContent
	query := `SELECT id, community_id, title, funding_goal, funding_raised, status, created_at, updated_at
              FROM community_contents WHERE id = $1`
	err := q.GetContext(ctx, &content, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get content by ID %d: %w", id, err)
	}
	return &content, nil
}

// AddFunding increments the accumulated funding and completes the content in
// the same statement when the increment reaches the goal. The goal check
// lives here and nowhere else.
func (r *ContentRepository) AddFunding(ctx context.Context, q repository.DBExecutor, contentID int64, amount decimal.Decimal) error {
	query := `UPDATE community_contents
              SET funding_raised = funding_raised + $1,
                  status = CASE
                      WHEN funding_goal > 0 AND funding_raised + $1 >= funding_goal THEN 'completed'
                      ELSE status
                  END,
                  updated_at = $2
              WHERE id = $3`
	result, err := q.ExecContext(ctx, query, amount, time.Now().UTC(), contentID)
	if err != nil {
		return fmt.Errorf("failed to add funding to content %d: %w", contentID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for content %d: %w", contentID, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}
