package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jonasahlin/matbit/internal/domain"
	"github.com/jonasahlin/matbit/internal/interfaces"
)

type newsRepository struct {
	db DB
}

func NewNewsRepository(db DB) interfaces.NewsRepository {
	return &newsRepository{db: db}
}

func (r *newsRepository) Create(ctx context.Context, news *domain.News) error {
	query := `
		INSERT INTO news (id, title_en, title_sv, body_en, body_sv, image, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		news.ID, news.Title.English, news.Title.Swedish,
		news.Body.English, news.Body.Swedish, news.Image, news.Published,
		news.CreatedAt, news.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert news: %w", err)
	}
	return nil
}

func (r *newsRepository) Update(ctx context.Context, news *domain.News) error {
	query := `
		UPDATE news
		SET title_en = $1, title_sv = $2, body_en = $3, body_sv = $4,
		    image = $5, published = $6, updated_at = $7
		WHERE id = $8
	`
	_, err := r.db.Exec(ctx, query,
		news.Title.English, news.Title.Swedish, news.Body.English, news.Body.Swedish,
		news.Image, news.Published, time.Now(), news.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update news: %w", err)
	}
	return nil
}

func (r *newsRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM news WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete news: %w", err)
	}
	return nil
}

func (r *newsRepository) ListAll(ctx context.Context) ([]*domain.News, error) {
	return r.list(ctx, `SELECT id, title_en, title_sv, body_en, body_sv, image, published, created_at, updated_at
		FROM news ORDER BY created_at DESC`)
}

func (r *newsRepository) ListPublished(ctx context.Context) ([]*domain.News, error) {
	return r.list(ctx, `SELECT id, title_en, title_sv, body_en, body_sv, image, published, created_at, updated_at
		FROM news WHERE published ORDER BY created_at DESC`)
}

func (r *newsRepository) list(ctx context.Context, query string) ([]*domain.News, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query news: %w", err)
	}
	defer rows.Close()

	var items []*domain.News
	for rows.Next() {
		var n domain.News
		if err := rows.Scan(
			&n.ID, &n.Title.English, &n.Title.Swedish, &n.Body.English, &n.Body.Swedish,
			&n.Image, &n.Published, &n.CreatedAt, &n.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan news: %w", err)
		}
		items = append(items, &n)
	}
	return items, nil
}
