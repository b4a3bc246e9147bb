package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/model"
)

type CategoryRepo struct {
	pool *pgxpool.Pool
}

func NewCategoryRepo(pool *pgxpool.Pool) *CategoryRepo {
	return &CategoryRepo{pool: pool}
}

func (r *CategoryRepo) ListCategories(ctx context.Context) ([]model.Category, error) {
	if r.pool == nil {
		return nil, errNoPool
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, name
FROM categories
ORDER BY name ASC
`)
	if err != nil {
		return nil, classify("list categories", err)
	}
	defer rows.Close()

	items := make([]model.Category, 0)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, classify("scan category", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate categories", err)
	}
	return items, nil
}
