package roster

import (
	"testing"

	"github.com/palmcourt/hotel-admin/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByCategoryPartitionsKnownItems(t *testing.T) {
	items := newFakeBackend(t).menu
	// 重复的菜品只出现一次
	items = append(items, items[0])

	groups := GroupByCategory(items, DefaultCategories, map[string]bool{"dal-makhani": true})
	require.Len(t, groups, len(DefaultCategories))

	seen := map[string]int{}
	for i, g := range groups {
		assert.Equal(t, DefaultCategories[i], g.Name)
		for _, it := range g.Items {
			seen[it.ID]++
			assert.Equal(t, normalizeCategory(g.Name), normalizeCategory(it.Category.Name))
			assert.Equal(t, it.ID == "dal-makhani", it.Selected)
		}
	}

	for _, it := range items {
		if it.ID == "soup" {
			assert.Zero(t, seen[it.ID], "item from an unknown category must be dropped")
			continue
		}
		assert.Equal(t, 1, seen[it.ID], it.ID)
	}
}

func TestGroupByCategoryIgnoresCase(t *testing.T) {
	items := []domain.MenuItem{
		menuItem("a", "A", "  main course "),
		menuItem("b", "B", "DESSERTS"),
	}

	groups := GroupByCategory(items, []string{"Main Course", "Desserts", "Beverages", "main course"}, nil)
	require.Len(t, groups, 3)
	assert.Equal(t, "a", groups[0].Items[0].ID)
	assert.Equal(t, "b", groups[1].Items[0].ID)
	assert.Empty(t, groups[2].Items)
	assert.NotNil(t, groups[2].Items)
}

func TestUpcomingCards(t *testing.T) {
	dates := testToday.NextDays(5)
	rosters := map[domain.Date]*domain.DailyRoster{
		dates[0]: {Date: dates[0]},
		dates[1]: {Date: dates[1], Items: []domain.RosterItem{{ID: "soup"}}},
		dates[3]: {Date: dates[3], Items: []domain.RosterItem{{ID: "greek-salad"}}},
	}

	cards := UpcomingCards(dates, rosters)
	require.Len(t, cards, 2)
	assert.Equal(t, dates[1], cards[0].Date)
	assert.Equal(t, dates[3], cards[1].Date)

	assert.Empty(t, UpcomingCards(dates, nil))
}
