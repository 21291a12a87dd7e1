package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/palmcourt/hotel-admin/internal/domain"
	"github.com/xuri/excelize/v2"
)

const SheetName = "Rosters"

var header = []any{"Date", "Item", "Category", "Base Price", "Veg", "Spice Level", "Available", "Notes"}

// WriteRosters 把 [start, end] 内每一天的排餐表写成一张 XLSX 表。
// 每个菜品一行，没有排餐表或排餐表为空的日期只占一行且菜品列留空
func WriteRosters(w io.Writer, start, end domain.Date, rosters []domain.DailyRoster) error {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return fmt.Errorf("invalid export range %s..%s", start, end)
	}

	byDate := make(map[domain.Date]domain.DailyRoster, len(rosters))
	for _, r := range rosters {
		byDate[r.Date] = r
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", "H1", bold); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "A", "A", 12); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "B", "C", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "H", "H", 40); err != nil {
		return err
	}

	row := 2
	for d := start; !d.After(end); d = d.AddDays(1) {
		r, ok := byDate[d]
		if !ok || len(r.Items) == 0 {
			if err := writeRow(f, row, []any{d.String(), "", "", "", "", "", "", r.Notes}); err != nil {
				return err
			}
			row++
			continue
		}
		for _, item := range r.Items {
			values := []any{
				d.String(),
				item.Name,
				item.Category.Name,
				item.BasePrice,
				yesNo(item.IsVeg),
				strings.ToUpper(string(item.SpiceLevel)),
				yesNo(item.IsAvailable),
				r.Notes,
			}
			if err := writeRow(f, row, values); err != nil {
				return err
			}
			row++
		}
	}

	return f.Write(w)
}

func writeRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(SheetName, cell, &values)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
