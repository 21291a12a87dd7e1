package dining

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/palmcourt/hotel-admin/internal/domain"
	"github.com/palmcourt/hotel-admin/internal/gateway"
)

const (
	categoriesPath = "/dining/categories"
	menuPath       = "/dining/menu"
)

// Service 对菜单和分类接口做一对一的请求映射，不做缓存
type Service struct {
	client *gateway.Client
}

func NewService(client *gateway.Client) *Service {
	return &Service{client: client}
}

type Image struct {
	Filename string
	Content  []byte
}

// CategoryInput 中为 nil 的字段不会提交
type CategoryInput struct {
	Name      *string
	SortOrder *int
	IsActive  *bool
	Image     *Image
}

func (in CategoryInput) form() *gateway.Form {
	form := &gateway.Form{}
	if in.Name != nil {
		form.Set("name", *in.Name)
	}
	if in.SortOrder != nil {
		form.Set("sortOrder", strconv.Itoa(*in.SortOrder))
	}
	if in.IsActive != nil {
		form.Set("isActive", strconv.FormatBool(*in.IsActive))
	}
	if in.Image != nil {
		form.Files = append(form.Files, imageFile("image", *in.Image))
	}
	return form
}

type MenuItemInput struct {
	Name            *string
	Description     *string
	CategoryID      *string
	BasePrice       *float64
	IsVeg           *bool
	PreparationTime *int
	SpiceLevel      *domain.SpiceLevel
	IsAvailable     *bool
	Images          []Image
}

func (in MenuItemInput) form() *gateway.Form {
	form := &gateway.Form{}
	if in.Name != nil {
		form.Set("name", *in.Name)
	}
	if in.Description != nil {
		form.Set("description", *in.Description)
	}
	if in.CategoryID != nil {
		form.Set("category", *in.CategoryID)
	}
	if in.BasePrice != nil {
		form.Set("basePrice", strconv.FormatFloat(*in.BasePrice, 'f', -1, 64))
	}
	if in.IsVeg != nil {
		form.Set("isVeg", strconv.FormatBool(*in.IsVeg))
	}
	if in.PreparationTime != nil {
		form.Set("preparationTime", strconv.Itoa(*in.PreparationTime))
	}
	if in.SpiceLevel != nil {
		form.Set("spiceLevel", string(*in.SpiceLevel))
	}
	if in.IsAvailable != nil {
		form.Set("isAvailable", strconv.FormatBool(*in.IsAvailable))
	}
	for _, img := range in.Images {
		form.Files = append(form.Files, imageFile("images", img))
	}
	return form
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories := []domain.Category{}
	if err := s.client.Get(ctx, categoriesPath, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *Service) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	var c *domain.Category
	if err := s.client.Get(ctx, categoryPath(id), nil, &c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	if in.Name == nil || *in.Name == "" {
		return nil, fmt.Errorf("category name is required")
	}

	var c *domain.Category
	if err := s.client.PostMultipart(ctx, categoriesPath, in.form(), &c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*domain.Category, error) {
	var c *domain.Category
	if err := s.client.PatchMultipart(ctx, categoryPath(id), in.form(), &c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.client.Delete(ctx, categoryPath(id), nil)
}

func (s *Service) ListMenuItems(ctx context.Context) ([]domain.MenuItem, error) {
	items := []domain.MenuItem{}
	if err := s.client.Get(ctx, menuPath, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Service) GetMenuItem(ctx context.Context, id string) (*domain.MenuItem, error) {
	var item *domain.MenuItem
	if err := s.client.Get(ctx, menuItemPath(id), nil, &item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) CreateMenuItem(ctx context.Context, in MenuItemInput) (*domain.MenuItem, error) {
	var item *domain.MenuItem
	if err := s.client.PostMultipart(ctx, menuPath, in.form(), &item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) UpdateMenuItem(ctx context.Context, id string, in MenuItemInput) (*domain.MenuItem, error) {
	var item *domain.MenuItem
	if err := s.client.PatchMultipart(ctx, menuItemPath(id), in.form(), &item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) DeleteMenuItem(ctx context.Context, id string) error {
	return s.client.Delete(ctx, menuItemPath(id), nil)
}

// ToggleAvailability 翻转上架状态，返回翻转后的菜品
func (s *Service) ToggleAvailability(ctx context.Context, id string) (*domain.MenuItem, error) {
	var item *domain.MenuItem
	if err := s.client.PatchJSON(ctx, menuItemPath(id)+"/availability", nil, &item); err != nil {
		return nil, err
	}
	return item, nil
}

func categoryPath(id string) string {
	return categoriesPath + "/" + url.PathEscape(id)
}

func menuItemPath(id string) string {
	return menuPath + "/" + url.PathEscape(id)
}
