package seed

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/palmcourt/hotel-admin/internal/domain"
	"github.com/palmcourt/hotel-admin/internal/utils"
)

// Store 是 repository.Repository 中种子数据用到的部分
type Store interface {
	GetAllCategories() ([]*domain.Category, error)
	CreateCategory(c *domain.Category) error
	GetAllMenuItems() ([]*domain.MenuItem, error)
	CreateMenuItem(item *domain.MenuItem) error
	UpsertDailyRosters(dates []domain.Date, itemIDs []string, notes string) ([]*domain.DailyRoster, error)
}

// SeedCategories 确保固定的几个分类存在，已存在的分类（名字不区分大小写）不会重复插入
func SeedCategories(s Store) (map[string]*domain.Category, error) {
	existing, err := s.GetAllCategories()
	if err != nil {
		return nil, fmt.Errorf("get categories: %w", err)
	}

	byName := make(map[string]*domain.Category, len(utils.SeedCategoryOrder))
	for _, c := range existing {
		byName[strings.ToLower(c.Name)] = c
	}

	result := make(map[string]*domain.Category, len(utils.SeedCategoryOrder))
	for i, name := range utils.SeedCategoryOrder {
		if c, ok := byName[strings.ToLower(name)]; ok {
			result[name] = c
			continue
		}

		sortOrder := int32(i + 1)
		active := true
		c := &domain.Category{Name: name, SortOrder: &sortOrder, IsActive: &active}
		if err := s.CreateCategory(c); err != nil {
			return nil, fmt.Errorf("create category %s: %w", name, err)
		}
		slog.Info("插入分类", "name", name, "id", c.ID)
		result[name] = c
	}

	return result, nil
}

// SeedMenuItems 为每个分类插入最多 perCategory 个菜品，已有同名菜品时跳过。返回插入的数量
func SeedMenuItems(s Store, categories map[string]*domain.Category, perCategory int) (int, error) {
	existing, err := s.GetAllMenuItems()
	if err != nil {
		return 0, fmt.Errorf("get menu items: %w", err)
	}

	names := make(map[string]bool, len(existing))
	for _, item := range existing {
		names[strings.ToLower(item.Name)] = true
	}

	cnt := 0
	for _, categoryName := range utils.SeedCategoryOrder {
		category, ok := categories[categoryName]
		if !ok {
			continue
		}

		dishes := utils.SeedCategoryDishes[categoryName]
		if perCategory > 0 && perCategory < len(dishes) {
			dishes = dishes[:perCategory]
		}

		for _, dish := range dishes {
			if names[strings.ToLower(dish)] {
				continue
			}
			item := utils.GenerateRandomMenuItem(category, dish)
			if err := s.CreateMenuItem(item); err != nil {
				slog.Error("无法插入菜品", "name", dish, "error", err)
				continue
			}
			names[strings.ToLower(dish)] = true
			cnt++
		}
	}

	return cnt, nil
}

// SeedRosters 为 today 以及之后的 days 天各生成一份随机排餐表，已有的排餐表会被覆盖
func SeedRosters(s Store, today domain.Date, days int) (int, error) {
	items, err := s.GetAllMenuItems()
	if err != nil {
		return 0, fmt.Errorf("get menu items: %w", err)
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.IsAvailable {
			ids = append(ids, item.ID)
		}
	}
	if len(ids) == 0 {
		return 0, fmt.Errorf("no available menu items to seed rosters with")
	}

	dates := append([]domain.Date{today}, today.NextDays(days)...)

	cnt := 0
	for _, d := range dates {
		subset := utils.GenerateRandomSubset(ids)
		if _, err := s.UpsertDailyRosters([]domain.Date{d}, subset, utils.GenerateRandomNotes()); err != nil {
			slog.Error("无法插入排餐表", "date", d, "error", err)
			continue
		}
		cnt++
	}

	return cnt, nil
}
