package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/palmcourt/hotel-admin/internal/domain"
	"github.com/palmcourt/hotel-admin/internal/utils"
)

type menuItemForm struct {
	Name            *string `validate:"omitempty,min=1,max=100"`
	Description     *string `validate:"omitempty,max=1000"`
	Category        *string `validate:"omitempty,uuid"`
	BasePrice       *float64
	IsVeg           *bool
	PreparationTime *int
	SpiceLevel      *domain.SpiceLevel
	IsAvailable     *bool
	Images          []string
}

func (h *Handler) readMenuItemForm(w http.ResponseWriter, r *http.Request, fallbackName string) (*menuItemForm, error) {
	form, err := h.readForm(w, r)
	if err != nil {
		return nil, err
	}

	req := &menuItemForm{
		Name:        formString(form, "name"),
		Description: formString(form, "description"),
		Category:    formString(form, "category"),
	}
	if req.BasePrice, err = formFloat(form, "basePrice"); err != nil {
		return nil, err
	}
	if req.IsVeg, err = formBool(form, "isVeg"); err != nil {
		return nil, err
	}
	if req.PreparationTime, err = formInt(form, "preparationTime"); err != nil {
		return nil, err
	}
	if req.IsAvailable, err = formBool(form, "isAvailable"); err != nil {
		return nil, err
	}
	if s := formString(form, "spiceLevel"); s != nil && *s != "" {
		level, err := domain.ParseSpiceLevel(*s)
		if err != nil {
			return nil, invalidForm("未知的辣度 %q", *s)
		}
		req.SpiceLevel = &level
	}
	if err := h.validate.Struct(req); err != nil {
		return nil, err
	}

	if files := form.File["images"]; len(files) > 0 {
		name := fallbackName
		if req.Name != nil && *req.Name != "" {
			name = *req.Name
		}
		if req.Images, err = h.saveImages(files, name); err != nil {
			return nil, err
		}
	}

	return req, nil
}

// apply 只覆盖表单中出现的字段
func (f *menuItemForm) apply(item *domain.MenuItem) {
	if f.Name != nil {
		item.Name = *f.Name
	}
	if f.Description != nil {
		item.Description = *f.Description
	}
	if f.Category != nil {
		item.Category = domain.CategoryRef{ID: *f.Category}
	}
	if f.BasePrice != nil {
		item.BasePrice = *f.BasePrice
	}
	if f.IsVeg != nil {
		item.IsVeg = *f.IsVeg
	}
	if f.PreparationTime != nil {
		item.PreparationTime = *f.PreparationTime
	}
	if f.SpiceLevel != nil {
		item.SpiceLevel = *f.SpiceLevel
	}
	if f.IsAvailable != nil {
		item.IsAvailable = *f.IsAvailable
	}
	if len(f.Images) > 0 {
		item.Images = f.Images
	}
}

func (h *Handler) menuItemWriteError(w http.ResponseWriter, r *http.Request, err error) {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		switch pgErr.ConstraintName {
		case "menu_items_category_id_fkey":
			h.errorResponse(w, r, http.StatusBadRequest, "分类不存在")
		default:
			h.internalServerError(w, r, err)
		}
	case errors.Is(err, sql.ErrNoRows):
		h.conflict(w, r, "菜品已被修改，请重试")
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) GetAllMenuItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.repository.GetAllMenuItems()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有菜品成功", items)
}

func (h *Handler) GetMenuItem(w http.ResponseWriter, r *http.Request) {
	item := r.Context().Value(MenuItemCtx).(*domain.MenuItem)
	h.successResponse(w, r, "获取菜品成功", item)
}

func (h *Handler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	req, err := h.readMenuItemForm(w, r, "dish")
	if err != nil {
		h.formError(w, r, err)
		return
	}

	switch {
	case req.Name == nil || *req.Name == "":
		h.removeImages(req.Images)
		h.errorResponse(w, r, http.StatusBadRequest, "名称为必填字段")
		return
	case req.Category == nil:
		h.removeImages(req.Images)
		h.errorResponse(w, r, http.StatusBadRequest, "分类为必填字段")
		return
	case req.BasePrice == nil:
		h.removeImages(req.Images)
		h.errorResponse(w, r, http.StatusBadRequest, "价格为必填字段")
		return
	}

	// 没有填写的字段取页面上的默认值
	item := &domain.MenuItem{
		IsVeg:           true,
		PreparationTime: 15,
		SpiceLevel:      domain.SpiceMedium,
		IsAvailable:     true,
		Images:          []string{},
	}
	req.apply(item)

	if err := utils.ValidateMenuItem(item); err != nil {
		h.removeImages(req.Images)
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateMenuItem(item); err != nil {
		h.removeImages(req.Images)
		h.menuItemWriteError(w, r, err)
		return
	}

	h.createdResponse(w, r, "创建菜品成功", item)
}

func (h *Handler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	item := r.Context().Value(MenuItemCtx).(*domain.MenuItem)

	req, err := h.readMenuItemForm(w, r, item.Name)
	if err != nil {
		h.formError(w, r, err)
		return
	}

	if req.Name != nil && *req.Name == "" {
		h.removeImages(req.Images)
		h.errorResponse(w, r, http.StatusBadRequest, "名称不能为空")
		return
	}

	oldImages := item.Images
	req.apply(item)

	if err := utils.ValidateMenuItem(item); err != nil {
		h.removeImages(req.Images)
		h.badRequest(w, r, err)
		return
	}

	replaceImages := len(req.Images) > 0
	if err := h.repository.UpdateMenuItem(item, replaceImages); err != nil {
		h.removeImages(req.Images)
		h.menuItemWriteError(w, r, err)
		return
	}

	if replaceImages {
		h.removeImages(oldImages)
	}
	h.invalidateAllRosterCache(r.Context())

	h.successResponse(w, r, "更新菜品成功", item)
}

func (h *Handler) ToggleMenuItemAvailability(w http.ResponseWriter, r *http.Request) {
	item := r.Context().Value(MenuItemCtx).(*domain.MenuItem)

	updated, err := h.repository.ToggleMenuItemAvailability(item.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.notFound(w, r, "菜品不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.invalidateAllRosterCache(r.Context())

	h.successResponse(w, r, "更新供应状态成功", updated)
}

func (h *Handler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	item := r.Context().Value(MenuItemCtx).(*domain.MenuItem)

	if err := h.repository.DeleteMenuItem(item.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.removeImages(item.Images)
	// 删除菜品会级联删除排餐表中的引用
	h.invalidateAllRosterCache(r.Context())

	h.successResponse(w, r, "删除菜品成功", nil)
}
