package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jonasahlin/matbit/internal/domain"
	"github.com/jonasahlin/matbit/internal/interfaces"
)

type campaignRepository struct {
	db DB
}

func NewCampaignRepository(db DB) interfaces.CampaignRepository {
	return &campaignRepository{db: db}
}

const campaignColumns = `id, title_en, title_sv, subtitle_en, subtitle_sv, text_en, text_sv,
	       image, text_position, is_main, start_date, end_date,
	       coupon_code, hide_coupon_code, discount_type, discount_percentage, discount_fixed,
	       max_usages_per_user, minimum_order_amount, eligible_dishes,
	       has_time_restriction, start_time, end_time, days_of_week,
	       auto_apply_on_menu, created_at, updated_at`

func (r *campaignRepository) Create(ctx context.Context, c *domain.Campaign) error {
	dishes, days, err := encodeCampaignLists(c)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO campaigns (id, title_en, title_sv, subtitle_en, subtitle_sv, text_en, text_sv,
		                       image, text_position, is_main, start_date, end_date,
		                       coupon_code, hide_coupon_code, discount_type, discount_percentage, discount_fixed,
		                       max_usages_per_user, minimum_order_amount, eligible_dishes,
		                       has_time_restriction, start_time, end_time, days_of_week,
		                       auto_apply_on_menu, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
		        $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)
	`
	_, err = r.db.Exec(ctx, query,
		c.ID, c.Title.English, c.Title.Swedish, c.Subtitle.English, c.Subtitle.Swedish,
		c.Text.English, c.Text.Swedish, c.Image, c.TextPosition, c.IsMain,
		nullTime(c.StartDate), nullTime(c.EndDate),
		c.CouponCode, c.HideCouponCode, string(c.DiscountType), c.DiscountPercentage, c.DiscountFixed,
		c.MaxUsagesPerUser, c.MinimumOrderAmount, dishes,
		c.HasTimeRestriction, c.StartTime, c.EndTime, days,
		c.AutoApplyOnMenu, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert campaign: %w", err)
	}
	return nil
}

func (r *campaignRepository) Update(ctx context.Context, c *domain.Campaign) error {
	dishes, days, err := encodeCampaignLists(c)
	if err != nil {
		return err
	}

	query := `
		UPDATE campaigns
		SET title_en = $1, title_sv = $2, subtitle_en = $3, subtitle_sv = $4,
		    text_en = $5, text_sv = $6, image = $7, text_position = $8, is_main = $9,
		    start_date = $10, end_date = $11, coupon_code = $12, hide_coupon_code = $13,
		    discount_type = $14, discount_percentage = $15, discount_fixed = $16,
		    max_usages_per_user = $17, minimum_order_amount = $18, eligible_dishes = $19,
		    has_time_restriction = $20, start_time = $21, end_time = $22, days_of_week = $23,
		    auto_apply_on_menu = $24, updated_at = $25
		WHERE id = $26
	`
	_, err = r.db.Exec(ctx, query,
		c.Title.English, c.Title.Swedish, c.Subtitle.English, c.Subtitle.Swedish,
		c.Text.English, c.Text.Swedish, c.Image, c.TextPosition, c.IsMain,
		nullTime(c.StartDate), nullTime(c.EndDate), c.CouponCode, c.HideCouponCode,
		string(c.DiscountType), c.DiscountPercentage, c.DiscountFixed,
		c.MaxUsagesPerUser, c.MinimumOrderAmount, dishes,
		c.HasTimeRestriction, c.StartTime, c.EndTime, days,
		c.AutoApplyOnMenu, time.Now(), c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update campaign: %w", err)
	}
	return nil
}

func (r *campaignRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}
	return nil
}

func (r *campaignRepository) FindByID(ctx context.Context, id string) (*domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`
	c, err := scanCampaign(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("campaign not found: %w", err)
	}
	return c, nil
}

// FindByCoupon returns (nil, nil) when no campaign carries the code, so an
// unknown code is a rejection rather than an internal error.
func (r *campaignRepository) FindByCoupon(ctx context.Context, code string) (*domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE UPPER(coupon_code) = $1`
	c, err := scanCampaign(r.db.QueryRow(ctx, query, strings.ToUpper(code)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up coupon: %w", err)
	}
	return c, nil
}

func (r *campaignRepository) ListAll(ctx context.Context) ([]*domain.Campaign, error) {
	return r.list(ctx, `SELECT `+campaignColumns+` FROM campaigns ORDER BY created_at DESC`)
}

func (r *campaignRepository) ListAutoApply(ctx context.Context) ([]*domain.Campaign, error) {
	return r.list(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE auto_apply_on_menu AND has_time_restriction`)
}

func (r *campaignRepository) list(ctx context.Context, query string) ([]*domain.Campaign, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, nil
}

func scanCampaign(row Row) (*domain.Campaign, error) {
	var (
		c            domain.Campaign
		start, end   *time.Time
		discountType string
		dishes, days []byte
	)
	err := row.Scan(
		&c.ID, &c.Title.English, &c.Title.Swedish, &c.Subtitle.English, &c.Subtitle.Swedish,
		&c.Text.English, &c.Text.Swedish, &c.Image, &c.TextPosition, &c.IsMain,
		&start, &end, &c.CouponCode, &c.HideCouponCode,
		&discountType, &c.DiscountPercentage, &c.DiscountFixed,
		&c.MaxUsagesPerUser, &c.MinimumOrderAmount, &dishes,
		&c.HasTimeRestriction, &c.StartTime, &c.EndTime, &days,
		&c.AutoApplyOnMenu, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if start != nil {
		c.StartDate = *start
	}
	if end != nil {
		c.EndDate = *end
	}
	c.DiscountType = domain.DiscountType(discountType)

	if len(dishes) > 0 {
		if err := json.Unmarshal(dishes, &c.EligibleDishes); err != nil {
			return nil, fmt.Errorf("failed to decode eligible dishes: %w", err)
		}
	}
	if len(days) > 0 {
		if err := json.Unmarshal(days, &c.DaysOfWeek); err != nil {
			return nil, fmt.Errorf("failed to decode days of week: %w", err)
		}
	}
	return &c, nil
}

func encodeCampaignLists(c *domain.Campaign) ([]byte, []byte, error) {
	dishes, err := json.Marshal(c.EligibleDishes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode eligible dishes: %w", err)
	}
	days, err := json.Marshal(c.DaysOfWeek)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode days of week: %w", err)
	}
	return dishes, days, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
