package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonasahlin/matbit/internal/domain"
	"github.com/jonasahlin/matbit/internal/interfaces"
)

type menuRepository struct {
	db DB
}

func NewMenuRepository(db DB) interfaces.MenuRepository {
	return &menuRepository{db: db}
}

const menuColumns = `id, name_en, name_sv, description_en, description_sv, price,
	       category, sub_category, image, available,
	       discount_enabled, discount_value, original_price, created_at, updated_at`

func (r *menuRepository) Create(ctx context.Context, item *domain.MenuItem) error {
	price, err := json.Marshal(item.Price)
	if err != nil {
		return fmt.Errorf("failed to encode price: %w", err)
	}

	discountEnabled := false
	discountValue := 0.0
	if item.Discount != nil {
		discountEnabled = item.Discount.Enabled
		discountValue = item.Discount.Value
	}

	query := `
		INSERT INTO foods (id, name_en, name_sv, description_en, description_sv, price,
		                   category, sub_category, image, available,
		                   discount_enabled, discount_value, original_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err = r.db.Exec(ctx, query,
		item.ID, item.Name.English, item.Name.Swedish,
		item.Description.English, item.Description.Swedish, price,
		item.Category, item.SubCategory, item.Image, item.Available,
		discountEnabled, discountValue, item.OriginalPrice, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert menu item: %w", err)
	}
	return nil
}

func (r *menuRepository) Update(ctx context.Context, item *domain.MenuItem) error {
	price, err := json.Marshal(item.Price)
	if err != nil {
		return fmt.Errorf("failed to encode price: %w", err)
	}

	discountEnabled := false
	discountValue := 0.0
	if item.Discount != nil {
		discountEnabled = item.Discount.Enabled
		discountValue = item.Discount.Value
	}

	query := `
		UPDATE foods
		SET name_en = $1, name_sv = $2, description_en = $3, description_sv = $4,
		    price = $5, category = $6, sub_category = $7, image = $8, available = $9,
		    discount_enabled = $10, discount_value = $11, original_price = $12, updated_at = $13
		WHERE id = $14
	`
	_, err = r.db.Exec(ctx, query,
		item.Name.English, item.Name.Swedish,
		item.Description.English, item.Description.Swedish,
		price, item.Category, item.SubCategory, item.Image, item.Available,
		discountEnabled, discountValue, item.OriginalPrice, time.Now(), item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update menu item: %w", err)
	}
	return nil
}

func (r *menuRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM foods WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete menu item: %w", err)
	}
	return nil
}

func (r *menuRepository) FindByID(ctx context.Context, id string) (*domain.MenuItem, error) {
	query := `SELECT ` + menuColumns + ` FROM foods WHERE id = $1`
	item, err := scanMenuItem(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("menu item not found: %w", err)
	}
	return item, nil
}

func (r *menuRepository) ListAll(ctx context.Context) ([]*domain.MenuItem, error) {
	return r.list(ctx, `SELECT `+menuColumns+` FROM foods ORDER BY category, name_en`)
}

func (r *menuRepository) ListAvailable(ctx context.Context) ([]*domain.MenuItem, error) {
	return r.list(ctx, `SELECT `+menuColumns+` FROM foods WHERE available ORDER BY category, name_en`)
}

func (r *menuRepository) list(ctx context.Context, query string) ([]*domain.MenuItem, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	var items []*domain.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

func scanMenuItem(row Row) (*domain.MenuItem, error) {
	var (
		item            domain.MenuItem
		price           []byte
		discountEnabled bool
		discountValue   float64
	)
	err := row.Scan(
		&item.ID, &item.Name.English, &item.Name.Swedish,
		&item.Description.English, &item.Description.Swedish, &price,
		&item.Category, &item.SubCategory, &item.Image, &item.Available,
		&discountEnabled, &discountValue, &item.OriginalPrice,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(price, &item.Price); err != nil {
		return nil, fmt.Errorf("failed to decode price: %w", err)
	}
	if discountEnabled || discountValue != 0 {
		item.Discount = &domain.ItemDiscount{Enabled: discountEnabled, Value: discountValue}
	}
	return &item, nil
}
