// internal/domain/community.go
package domain

import "time"

// Community is the owning scope for contents, memberships and a treasury
// wallet. StripeAccountID is the founder's connected payout account, when
// one has been linked.
type Community struct {
	ID              int64     `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	FounderID       int64     `db:"founder_id" json:"founder_id"`
	StripeAccountID *string   `db:"stripe_account_id" json:"stripe_account_id"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// MemberRole defines a user's role within a community.
type MemberRole string

const (
	MemberRoleMember    MemberRole = "member"
	MemberRoleModerator MemberRole = "moderator"
	MemberRoleAdmin     MemberRole = "admin"
)

// CanManageTreasury reports whether the role may move treasury funds.
func (r MemberRole) CanManageTreasury() bool {
	return r == MemberRoleAdmin || r == MemberRoleModerator
}

// Membership ties a user to a community with a role.
type Membership struct {
	CommunityID int64      `db:"community_id" json:"community_id"`
	UserID      int64      `db:"user_id" json:"user_id"`
	Role        MemberRole `db:"role" json:"role"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
