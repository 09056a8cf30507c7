// internal/repository/community_repo.go
package repository

import (
	"context"

	"communityledger/internal/domain"
)

// CommunityRepository defines the interface for community and membership
// data operations needed by the ledger core.
type CommunityRepository interface {
	// GetCommunityByID retrieves a community by its ID.
	GetCommunityByID(ctx context.Context, q DBExecutor, id int64) (*domain.Community, error)
	// GetMemberRole retrieves the role a user holds in a community.
	// Returns util.ErrNotFound when the user is not a member.
	GetMemberRole(ctx context.Context, q DBExecutor, communityID, userID int64) (domain.MemberRole, error)
}
