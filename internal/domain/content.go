// internal/domain/content.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContentStatus defines the funding state of a piece of community content.
type ContentStatus string

const (
	ContentStatusOpen      ContentStatus = "open"
	ContentStatusCompleted ContentStatus = "completed"
)

// CommunityContent is the funding target of sponsorships and treasury
// spends. FundingRaised accumulates every settled amount; the content
// flips to completed once the goal is reached, atomically with the
// increment that crossed it.
type CommunityContent struct {
	ID            int64           `db:"id" json:"id"`
	CommunityID   int64           `db:"community_id" json:"community_id"`
	Title         string          `db:"title" json:"title"`
	FundingGoal   decimal.Decimal `db:"funding_goal" json:"funding_goal"`
	FundingRaised decimal.Decimal `db:"funding_raised" json:"funding_raised"`
	Status        ContentStatus   `db:"status" json:"status"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}
