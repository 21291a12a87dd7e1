package utils

import (
	"errors"
	"fmt"

	"github.com/palmcourt/hotel-admin/internal/domain"
)

const MaxRosterRangeDays = 62

// ParseDate 与 domain.ParseDate 相同，错误信息可以直接返回给前端
func ParseDate(s string) (domain.Date, error) {
	d, err := domain.ParseDate(s)
	if err != nil {
		return domain.Date{}, fmt.Errorf("日期格式错误 %q，应为 YYYY-MM-DD", s)
	}
	return d, nil
}

// ParseRosterDates 解析并校验日期列表：不能为空、不能重复、不能早于 today
func ParseRosterDates(raw []string, today domain.Date) ([]domain.Date, error) {
	if len(raw) == 0 {
		return nil, errors.New("至少需要一个日期")
	}

	dates := make([]domain.Date, 0, len(raw))
	seen := make(map[string]bool)
	for _, s := range raw {
		d, err := ParseDate(s)
		if err != nil {
			return nil, err
		}
		if d.Before(today) {
			return nil, fmt.Errorf("不能修改过去的日期 %s", d)
		}
		if seen[d.String()] {
			continue
		}
		seen[d.String()] = true
		dates = append(dates, d)
	}

	return dates, nil
}

// DedupeIDs 去重并保持首次出现的顺序
func DedupeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func ValidateRosterRange(start, end domain.Date) error {
	if end.Before(start) {
		return errors.New("结束日期不能早于开始日期")
	}
	if end.After(start.AddDays(MaxRosterRangeDays)) {
		return fmt.Errorf("日期范围不能超过 %d 天", MaxRosterRangeDays)
	}
	return nil
}

func ValidateMenuItem(item *domain.MenuItem) error {
	if item.BasePrice < 0 {
		return errors.New("价格不能为负数")
	}
	if item.PreparationTime <= 0 {
		return errors.New("制作时间必须是正整数分钟")
	}
	if !item.SpiceLevel.Valid() {
		return fmt.Errorf("未知的辣度 %q", item.SpiceLevel)
	}
	return nil
}
