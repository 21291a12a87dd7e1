package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/palmcourt/hotel-admin/internal/domain"
)

const rosterQuery = `
	SELECT
		dr.id,
		dr.roster_date,
		dr.notes,
		dr.created_at,
		dr.updated_at,
		mi.id,
		mi.name,
		dc.id,
		dc.name,
		mi.base_price,
		mi.is_veg,
		mi.spice_level,
		mi.is_available
	FROM daily_rosters dr
	LEFT JOIN daily_roster_items dri ON dr.id = dri.roster_id
	LEFT JOIN menu_items mi ON dri.menu_item_id = mi.id
	LEFT JOIN dining_categories dc ON mi.category_id = dc.id
`

func scanRosters(rows *sql.Rows) ([]*domain.DailyRoster, error) {
	rosters := make([]*domain.DailyRoster, 0)
	rostersMap := make(map[string]*domain.DailyRoster)

	for rows.Next() {
		var row struct {
			ID        string
			Date      domain.Date
			Notes     string
			CreatedAt time.Time
			UpdatedAt time.Time

			ItemID       sql.NullString
			ItemName     sql.NullString
			CategoryID   sql.NullString
			CategoryName sql.NullString
			BasePrice    sql.NullFloat64
			IsVeg        sql.NullBool
			SpiceLevel   sql.NullString
			IsAvailable  sql.NullBool
		}

		dst := []any{
			&row.ID,
			&row.Date,
			&row.Notes,
			&row.CreatedAt,
			&row.UpdatedAt,
			&row.ItemID,
			&row.ItemName,
			&row.CategoryID,
			&row.CategoryName,
			&row.BasePrice,
			&row.IsVeg,
			&row.SpiceLevel,
			&row.IsAvailable,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		roster, exists := rostersMap[row.ID]
		if !exists {
			roster = &domain.DailyRoster{
				ID:        row.ID,
				Date:      row.Date,
				Notes:     row.Notes,
				Items:     make([]domain.RosterItem, 0),
				CreatedAt: row.CreatedAt,
				UpdatedAt: row.UpdatedAt,
			}
			rostersMap[row.ID] = roster
			rosters = append(rosters, roster)
		}

		// 没有菜品的排餐表（被清空过）只会有一行且菜品列为空
		if !row.ItemID.Valid {
			continue
		}

		roster.Items = append(roster.Items, domain.RosterItem{
			ID:   row.ItemID.String,
			Name: row.ItemName.String,
			Category: domain.CategoryRef{
				ID:   row.CategoryID.String,
				Name: row.CategoryName.String,
			},
			BasePrice:   row.BasePrice.Float64,
			IsVeg:       row.IsVeg.Bool,
			SpiceLevel:  domain.SpiceLevel(row.SpiceLevel.String),
			IsAvailable: row.IsAvailable.Bool,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rosters, nil
}

// GetDailyRosterByDate 在该日期没有排餐表时返回 sql.ErrNoRows
func (r *Repository) GetDailyRosterByDate(date domain.Date) (*domain.DailyRoster, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := rosterQuery + `
		WHERE dr.roster_date = $1
		ORDER BY dri.position
	`

	rows, err := r.dbpool.QueryContext(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rosters, err := scanRosters(rows)
	if err != nil {
		return nil, err
	}
	if len(rosters) == 0 {
		return nil, sql.ErrNoRows
	}

	return rosters[0], nil
}

// GetDailyRostersInRange 返回 [start, end] 闭区间内存在的排餐表，按日期升序
func (r *Repository) GetDailyRostersInRange(start, end domain.Date) ([]*domain.DailyRoster, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := rosterQuery + `
		WHERE dr.roster_date BETWEEN $1 AND $2
		ORDER BY dr.roster_date, dri.position
	`

	rows, err := r.dbpool.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRosters(rows)
}

// UpsertDailyRosters 在同一个事务中把相同的菜品和备注写到每一个日期上，
// 任意一个日期失败则全部回滚
func (r *Repository) UpsertDailyRosters(dates []domain.Date, itemIDs []string, notes string) ([]*domain.DailyRoster, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, date := range dates {
		query := `
			INSERT INTO daily_rosters (id, roster_date, notes)
			VALUES ($1, $2, $3)
			ON CONFLICT (roster_date) DO UPDATE
			SET notes = EXCLUDED.notes, updated_at = NOW()
			RETURNING id
		`

		var rosterID string
		if err := tx.QueryRowContext(ctx, query, uuid.NewString(), date, notes).Scan(&rosterID); err != nil {
			return nil, err
		}

		// 整体替换，而不是合并
		if _, err := tx.ExecContext(ctx, `DELETE FROM daily_roster_items WHERE roster_id = $1`, rosterID); err != nil {
			return nil, err
		}

		for i, itemID := range itemIDs {
			query := `
				INSERT INTO daily_roster_items (roster_id, menu_item_id, position)
				VALUES ($1, $2, $3)
			`
			if _, err := tx.ExecContext(ctx, query, rosterID, itemID, i); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	rosters := make([]*domain.DailyRoster, 0, len(dates))
	for _, date := range dates {
		roster, err := r.GetDailyRosterByDate(date)
		if err != nil {
			return nil, err
		}
		rosters = append(rosters, roster)
	}

	return rosters, nil
}
