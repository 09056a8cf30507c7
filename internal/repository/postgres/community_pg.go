// internal/repository/postgres/community_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"communityledger/internal/domain"
	"communityledger/internal/repository"
	"communityledger/internal/util"

	"github.com/jmoiron/sqlx"
)

// CommunityRepository implements repository.CommunityRepository for PostgreSQL.
type CommunityRepository struct{}

// NewCommunityRepository creates a new CommunityRepository.
func NewCommunityRepository(db *sqlx.DB) repository.CommunityRepository {
	return &CommunityRepository{}
}

// GetCommunityByID retrieves a community by its ID using the provided DBExecutor.
func (r *CommunityRepository) GetCommunityByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Community, error) {
	var community domain.Community
	query := `SELECT id, name, founder_id, stripe_account_id, created_at FROM communities WHERE id = $1`
	err := q.GetContext(ctx, &community, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get community by ID %d: %w", id, err)
	}
	return &community, nil
}

// GetMemberRole retrieves the role a user holds in a community using the
// provided DBExecutor.
func (r *CommunityRepository) GetMemberRole(ctx context.Context, q repository.DBExecutor, communityID, userID int64) (domain.MemberRole, error) {
	var role domain.MemberRole
	query := `SELECT role FROM community_members WHERE community_id = $1 AND user_id = $2`
	err := q.GetContext(ctx, &role, query, communityID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", util.ErrNotFound
		}
		return "", fmt.Errorf("failed to get member role for user %d in community %d: %w", userID, communityID, err)
	}
	return role, nil
}
