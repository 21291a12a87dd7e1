package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/palmcourt/hotel-admin/internal/domain"
)

const menuItemColumns = `
	mi.id,
	mi.name,
	mi.category_id,
	dc.name,
	mi.base_price,
	mi.is_veg,
	mi.preparation_time,
	mi.spice_level,
	mi.is_available,
	mi.description,
	mi.created_at,
	mi.updated_at,
	mi.version,
	mii.path
`

// scanMenuItems 把 LEFT JOIN 图片表得到的多行合并成菜品列表，保持查询顺序
func scanMenuItems(rows *sql.Rows) ([]*domain.MenuItem, error) {
	items := make([]*domain.MenuItem, 0)
	itemsMap := make(map[string]*domain.MenuItem)

	for rows.Next() {
		var row struct {
			Item      domain.MenuItem
			ImagePath sql.NullString
		}

		dst := []any{
			&row.Item.ID,
			&row.Item.Name,
			&row.Item.Category.ID,
			&row.Item.Category.Name,
			&row.Item.BasePrice,
			&row.Item.IsVeg,
			&row.Item.PreparationTime,
			&row.Item.SpiceLevel,
			&row.Item.IsAvailable,
			&row.Item.Description,
			&row.Item.CreatedAt,
			&row.Item.UpdatedAt,
			&row.Item.Version,
			&row.ImagePath,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		item, exists := itemsMap[row.Item.ID]
		if !exists {
			// 第一次遇到这个菜品
			item = &row.Item
			item.Images = make([]string, 0)
			itemsMap[item.ID] = item
			items = append(items, item)
		}

		if row.ImagePath.Valid {
			item.Images = append(item.Images, row.ImagePath.String)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *Repository) GetAllMenuItems() ([]*domain.MenuItem, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT ` + menuItemColumns + `
		FROM menu_items mi
		JOIN dining_categories dc ON mi.category_id = dc.id
		LEFT JOIN menu_item_images mii ON mi.id = mii.menu_item_id
		ORDER BY mi.created_at, mi.id, mii.position
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMenuItems(rows)
}

func (r *Repository) GetMenuItemByID(id string) (*domain.MenuItem, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT ` + menuItemColumns + `
		FROM menu_items mi
		JOIN dining_categories dc ON mi.category_id = dc.id
		LEFT JOIN menu_item_images mii ON mi.id = mii.menu_item_id
		WHERE mi.id = $1
		ORDER BY mii.position
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanMenuItems(rows)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, sql.ErrNoRows
	}

	return items[0], nil
}

func insertMenuItemImages(ctx context.Context, tx *sql.Tx, itemID string, images []string) error {
	for i, path := range images {
		query := `
			INSERT INTO menu_item_images (menu_item_id, path, position)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, itemID, path, i); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) CreateMenuItem(item *domain.MenuItem) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	item.ID = uuid.NewString()

	query := `
		INSERT INTO menu_items (id, name, category_id, base_price, is_veg, preparation_time, spice_level, is_available, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at, version
	`
	args := []any{item.ID, item.Name, item.Category.ID, item.BasePrice, item.IsVeg, item.PreparationTime, item.SpiceLevel, item.IsAvailable, item.Description}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&item.CreatedAt, &item.UpdatedAt, &item.Version); err != nil {
		return err
	}

	if err := insertMenuItemImages(ctx, tx, item.ID, item.Images); err != nil {
		return err
	}

	query = `SELECT name FROM dining_categories WHERE id = $1`
	if err := tx.QueryRowContext(ctx, query, item.Category.ID).Scan(&item.Category.Name); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// UpdateMenuItem 使用 version 做乐观锁，replaceImages 为 true 时整体替换图片
func (r *Repository) UpdateMenuItem(item *domain.MenuItem, replaceImages bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE menu_items
		SET
			name = $1,
			category_id = $2,
			base_price = $3,
			is_veg = $4,
			preparation_time = $5,
			spice_level = $6,
			is_available = $7,
			description = $8,
			updated_at = NOW(),
			version = version + 1
		WHERE id = $9 AND version = $10
		RETURNING updated_at, version
	`
	args := []any{item.Name, item.Category.ID, item.BasePrice, item.IsVeg, item.PreparationTime, item.SpiceLevel, item.IsAvailable, item.Description, item.ID, item.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&item.UpdatedAt, &item.Version); err != nil {
		return err
	}

	if replaceImages {
		if _, err := tx.ExecContext(ctx, `DELETE FROM menu_item_images WHERE menu_item_id = $1`, item.ID); err != nil {
			return err
		}
		if err := insertMenuItemImages(ctx, tx, item.ID, item.Images); err != nil {
			return err
		}
	}

	query = `SELECT name FROM dining_categories WHERE id = $1`
	if err := tx.QueryRowContext(ctx, query, item.Category.ID).Scan(&item.Category.Name); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) ToggleMenuItemAvailability(id string) (*domain.MenuItem, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE menu_items
		SET is_available = NOT is_available, updated_at = NOW(), version = version + 1
		WHERE id = $1
	`

	res, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return nil, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, sql.ErrNoRows
	}

	return r.GetMenuItemByID(id)
}

func (r *Repository) DeleteMenuItem(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM menu_items WHERE id = $1
	`

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
