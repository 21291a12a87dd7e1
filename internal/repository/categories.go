package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/palmcourt/hotel-admin/internal/domain"
)

type categoryRow struct {
	Image     sql.NullString
	SortOrder sql.NullInt32
	IsActive  sql.NullBool
}

func (row *categoryRow) apply(c *domain.Category) {
	c.Image, c.SortOrder, c.IsActive = nil, nil, nil
	if row.Image.Valid {
		c.Image = &row.Image.String
	}
	if row.SortOrder.Valid {
		c.SortOrder = &row.SortOrder.Int32
	}
	if row.IsActive.Valid {
		c.IsActive = &row.IsActive.Bool
	}
}

func (r *Repository) GetAllCategories() ([]*domain.Category, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, name, image, sort_order, is_active, created_at, version
		FROM dining_categories
		ORDER BY sort_order NULLS LAST, name
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]*domain.Category, 0)
	for rows.Next() {
		c := &domain.Category{}
		var row categoryRow

		dst := []any{&c.ID, &c.Name, &row.Image, &row.SortOrder, &row.IsActive, &c.CreatedAt, &c.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		row.apply(c)

		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *Repository) GetCategoryByID(id string) (*domain.Category, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT name, image, sort_order, is_active, created_at, version
		FROM dining_categories WHERE id = $1
	`

	c := &domain.Category{
		ID: id,
	}
	var row categoryRow

	dst := []any{&c.Name, &row.Image, &row.SortOrder, &row.IsActive, &c.CreatedAt, &c.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}
	row.apply(c)

	return c, nil
}

func (r *Repository) CreateCategory(c *domain.Category) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	c.ID = uuid.NewString()

	query := `
		INSERT INTO dining_categories (id, name, image, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, version
	`

	args := []any{c.ID, c.Name, c.Image, c.SortOrder, c.IsActive}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&c.CreatedAt, &c.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateCategory(c *domain.Category) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE dining_categories
		SET
			name = $1,
			image = $2,
			sort_order = $3,
			is_active = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING version
	`

	args := []any{c.Name, c.Image, c.SortOrder, c.IsActive, c.ID, c.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&c.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteCategory(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM dining_categories WHERE id = $1
	`

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
