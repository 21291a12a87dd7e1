package domain

import "time"

// RosterItem 是排餐表中内嵌的菜品摘要，由服务端根据菜品 ID 解析
type RosterItem struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Category    CategoryRef `json:"category"`
	BasePrice   float64     `json:"basePrice"`
	IsVeg       bool        `json:"isVeg"`
	SpiceLevel  SpiceLevel  `json:"spiceLevel"`
	IsAvailable bool        `json:"isAvailable"`
}

// DailyRoster 每个日历日期最多一条
type DailyRoster struct {
	ID        string       `json:"id"`
	Date      Date         `json:"date"`
	Items     []RosterItem `json:"items"`
	Notes     string       `json:"notes"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func (r *DailyRoster) ItemIDs() []string {
	if r == nil {
		return []string{}
	}

	ids := make([]string, 0, len(r.Items))
	for _, item := range r.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

func (r *DailyRoster) IsEmpty() bool {
	return r == nil || len(r.Items) == 0
}
