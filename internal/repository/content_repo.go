// internal/repository/content_repo.go
package repository

import (
	"context"

	"communityledger/internal/domain"

	"github.com/shopspring/decimal"
)

// ContentRepository defines the interface for community content data operations.
type ContentRepository interface {
	// GetContentByID retrieves a piece of community content by its ID.
	GetContentByID(ctx context.Context, q DBExecutor, id int64) (*domain.CommunityContent, error)
	// AddFunding increments the content's accumulated funding and marks the
	// content completed in the same statement when the increment reaches the
	// funding goal.
	AddFunding(ctx context.Context, q DBExecutor, contentID int64, amount decimal.Decimal) error
}
