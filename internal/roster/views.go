package roster

import (
	"strings"

	"github.com/palmcourt/hotel-admin/internal/domain"
)

// DefaultCategories 是菜品选择器中分类的固定顺序
var DefaultCategories = []string{"Starters", "Burgers", "Main Course", "Desserts", "Beverages", "Salads"}

type PickerItem struct {
	domain.MenuItem
	Selected bool
}

type CategoryGroup struct {
	Name  string
	Items []PickerItem
}

// GroupByCategory 按 buckets 的顺序对菜品分组，分类名不区分大小写。
// 不属于任何 bucket 的菜品直接忽略，空 bucket 也会保留
func GroupByCategory(items []domain.MenuItem, buckets []string, selected map[string]bool) []CategoryGroup {
	groups := make([]CategoryGroup, 0, len(buckets))
	index := make(map[string]int, len(buckets))
	for _, name := range buckets {
		key := normalizeCategory(name)
		if _, dup := index[key]; dup {
			continue
		}
		index[key] = len(groups)
		groups = append(groups, CategoryGroup{Name: name, Items: []PickerItem{}})
	}

	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if seen[item.ID] {
			continue
		}
		i, ok := index[normalizeCategory(item.Category.Name)]
		if !ok {
			continue
		}
		seen[item.ID] = true
		groups[i].Items = append(groups[i].Items, PickerItem{MenuItem: item, Selected: selected[item.ID]})
	}

	return groups
}

func normalizeCategory(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type UpcomingCard struct {
	Date   domain.Date
	Roster *domain.DailyRoster
}

// UpcomingCards 按 dates 的顺序生成卡片，没有菜品的日期不显示
func UpcomingCards(dates []domain.Date, rosters map[domain.Date]*domain.DailyRoster) []UpcomingCard {
	cards := make([]UpcomingCard, 0, len(dates))
	for _, d := range dates {
		r := rosters[d]
		if r.IsEmpty() {
			continue
		}
		cards = append(cards, UpcomingCard{Date: d, Roster: r})
	}
	return cards
}
