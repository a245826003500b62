package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonasahlin/matbit/internal/interfaces"
)

type usageRepository struct {
	db DB
}

func NewUsageRepository(db DB) interfaces.CouponUsageRepository {
	return &usageRepository{db: db}
}

func (r *usageRepository) CountForUser(ctx context.Context, userID, code string) (int, error) {
	query := `
		SELECT COALESCE(SUM(usage_count), 0)
		FROM coupon_usage
		WHERE user_id = $1 AND coupon_code = $2
	`
	var count int
	err := r.db.QueryRow(ctx, query, userID, strings.ToUpper(code)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count coupon usage: %w", err)
	}
	return count, nil
}

// RecordUse is a single upsert so concurrent checkouts by the same user
// cannot under-count the usage the way a read-then-write would.
func (r *usageRepository) RecordUse(ctx context.Context, userID, code, campaignID string) error {
	query := `
		INSERT INTO coupon_usage (user_id, coupon_code, campaign_id, usage_count, first_used, last_used)
		VALUES ($1, $2, $3, 1, $4, $4)
		ON CONFLICT (user_id, coupon_code)
		DO UPDATE SET usage_count = coupon_usage.usage_count + 1, last_used = $4
	`
	_, err := r.db.Exec(ctx, query, userID, strings.ToUpper(code), campaignID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to record coupon usage: %w", err)
	}
	return nil
}
