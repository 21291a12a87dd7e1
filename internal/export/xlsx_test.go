package export

import (
	"bytes"
	"testing"

	"github.com/palmcourt/hotel-admin/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func readRows(t *testing.T, data []byte) [][]string {
	t.Helper()

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	return rows
}

func TestWriteRosters(t *testing.T) {
	start := domain.MustParseDate("2030-01-10")
	end := domain.MustParseDate("2030-01-12")
	rosters := []domain.DailyRoster{
		{
			Date:  start,
			Notes: "chef special",
			Items: []domain.RosterItem{
				{ID: "1", Name: "Paneer Tikka", Category: domain.CategoryRef{Name: "Starters"}, BasePrice: 220, IsVeg: true, SpiceLevel: domain.SpiceHot, IsAvailable: true},
				{ID: "2", Name: "Chicken 65", Category: domain.CategoryRef{Name: "Starters"}, BasePrice: 260, SpiceLevel: domain.SpiceMedium},
			},
		},
		{
			Date:  end,
			Items: []domain.RosterItem{{ID: "3", Name: "Masala Chai", Category: domain.CategoryRef{Name: "Beverages"}, BasePrice: 40, IsVeg: true, SpiceLevel: domain.SpiceMild, IsAvailable: true}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRosters(&buf, start, end, rosters))

	rows := readRows(t, buf.Bytes())
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"Date", "Item", "Category", "Base Price", "Veg", "Spice Level", "Available", "Notes"}, rows[0])
	assert.Equal(t, []string{"2030-01-10", "Paneer Tikka", "Starters", "220", "yes", "HOT", "yes", "chef special"}, rows[1])
	assert.Equal(t, "Chicken 65", rows[2][1])
	assert.Equal(t, "no", rows[2][4])
	// 中间没有排餐表的日期只有日期列
	assert.Equal(t, "2030-01-11", rows[3][0])
	for _, v := range rows[3][1:] {
		assert.Empty(t, v)
	}
	assert.Equal(t, "Masala Chai", rows[4][1])
	assert.Equal(t, "MILD", rows[4][5])
}

func TestWriteRostersRejectsBadRange(t *testing.T) {
	var buf bytes.Buffer
	err := WriteRosters(&buf, domain.MustParseDate("2030-01-12"), domain.MustParseDate("2030-01-10"), nil)
	assert.Error(t, err)
	assert.Zero(t, buf.Len())

	assert.Error(t, WriteRosters(&buf, domain.Date{}, domain.MustParseDate("2030-01-10"), nil))
}
