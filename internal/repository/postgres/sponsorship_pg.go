// internal/repository/postgres/sponsorship_pg.go
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

// SponsorshipRepository implements repository.SponsorshipRepository for PostgreSQL.
type SponsorshipRepository struct{}

// NewSponsorshipRepository creates a new SponsorshipRepository.
func NewSponsorshipRepository(db *sqlx.DB) repository.SponsorshipRepository {
	return &SponsorshipRepository{}
}

const sponsorshipColumns = `id, community_id, content_id, sponsor_id, brand_name, brand_url,
		amount, status, covers_fee, platform_fee_amount, founder_amount,
		stripe_session_id, stripe_payment_intent, stripe_transfer_id,
		funded_by_treasury, paid_at, created_at, updated_at`

// GetSponsorshipByID retrieves a sponsorship by its ID using the provided DBExecutor.
func (r *SponsorshipRepository) GetSponsorshipByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Sponsorship, error) {
	var sponsorship domain.Sponsorship
	query := `SELECT ` + sponsorshipColumns + ` FROM sponsorships WHERE id = $1`
	err := q.GetContext(ctx, &sponsorship, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get sponsorship by ID %d: %w", id, err)
	}
	return &sponsorship, nil
}

// TransitionStatus moves a sponsorship from one status to another. The WHERE
// clause on the current status makes the transition a compare-and-swap;
// concurrent callers cannot both win.
func (r *SponsorshipRepository) TransitionStatus(ctx context.Context, q repository.DBExecutor, id int64, from, to domain.SponsorshipStatus) (bool, error) {
	query := `UPDATE sponsorships SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := q.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return false, fmt.Errorf("failed to transition sponsorship %d to %s: %w", id, to, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected for sponsorship %d: %w", id, err)
	}
	return rowsAffected == 1, nil
}

// SetCheckoutSession stores the provider session id and fee split using the
// provided DBExecutor.
func (r *SponsorshipRepository) SetCheckoutSession(ctx context.Context, q repository.DBExecutor, id int64, sessionID string, platformFee, founderAmount decimal.Decimal) error {
	query := `UPDATE sponsorships
              SET stripe_session_id = $1, platform_fee_amount = $2, founder_amount = $3, updated_at = $4
              WHERE id = $5`
	result, err := q.ExecContext(ctx, query, sessionID, platformFee, founderAmount, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to store checkout session for sponsorship %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for sponsorship %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}

// MarkPaid settles a sponsorship in a single conditional write. The status
// guard makes redelivered webhooks lose here rather than double-settle.
func (r *SponsorshipRepository) MarkPaid(ctx context.Context, q repository.DBExecutor, id int64, sessionID, paymentIntentID string, platformFee, founderAmount decimal.Decimal, paidAt time.Time) (bool, error) {
	query := `UPDATE sponsorships
              SET status = $1, stripe_session_id = $2, stripe_payment_intent = $3,
                  platform_fee_amount = $4, founder_amount = $5, paid_at = $6, updated_at = $7
              WHERE id = $8 AND status <> $1`
	result, err := q.ExecContext(ctx, query,
		domain.SponsorshipStatusPaid, sessionID, paymentIntentID,
		platformFee, founderAmount, paidAt, time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("failed to mark sponsorship %d paid: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected for sponsorship %d: %w", id, err)
	}
	return rowsAffected == 1, nil
}

// MarkPaidByTreasury settles a sponsorship out of the community treasury.
func (r *SponsorshipRepository) MarkPaidByTreasury(ctx context.Context, q repository.DBExecutor, id int64, paidAt time.Time) (bool, error) {
	query := `UPDATE sponsorships
              SET status = $1, funded_by_treasury = TRUE, paid_at = $2, updated_at = $3
              WHERE id = $4 AND status <> $1`
	result, err := q.ExecContext(ctx, query, domain.SponsorshipStatusPaid, paidAt, time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("failed to mark sponsorship %d paid by treasury: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected for sponsorship %d: %w", id, err)
	}
	return rowsAffected == 1, nil
}

// SetTransferID stores the resolved connected-account transfer id.
func (r *SponsorshipRepository) SetTransferID(ctx context.Context, q repository.DBExecutor, id int64, transferID string) error {
	query := `UPDATE sponsorships SET stripe_transfer_id = $1, updated_at = $2 WHERE id = $3`
	if _, err := q.ExecContext(ctx, query, transferID, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to store transfer id for sponsorship %d: %w", id, err)
	}
	return nil
}
