package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/palmcourt/hotel-admin/internal/domain"
)

type categoryForm struct {
	Name      *string `validate:"omitempty,min=1,max=50"`
	SortOrder *int    `validate:"omitempty,gte=0"`
	IsActive  *bool
}

func (h *Handler) readCategoryForm(w http.ResponseWriter, r *http.Request) (*categoryForm, []string, error) {
	form, err := h.readForm(w, r)
	if err != nil {
		return nil, nil, err
	}

	req := &categoryForm{Name: formString(form, "name")}
	if req.SortOrder, err = formInt(form, "sortOrder"); err != nil {
		return nil, nil, err
	}
	if req.IsActive, err = formBool(form, "isActive"); err != nil {
		return nil, nil, err
	}
	if err := h.validate.Struct(req); err != nil {
		return nil, nil, err
	}

	var images []string
	if files := form.File["image"]; len(files) > 0 {
		name := "category"
		if req.Name != nil {
			name = *req.Name
		}
		if images, err = h.saveImages(files[:1], name); err != nil {
			return nil, nil, err
		}
	}

	return req, images, nil
}

func (h *Handler) categoryWriteError(w http.ResponseWriter, r *http.Request, err error) {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		switch pgErr.ConstraintName {
		case "dining_categories_name_key":
			h.conflict(w, r, "分类名称已存在")
		case "menu_items_category_id_fkey":
			h.conflict(w, r, "该分类下还有菜品，无法删除")
		default:
			h.internalServerError(w, r, err)
		}
	case errors.Is(err, sql.ErrNoRows):
		h.conflict(w, r, "分类已被修改，请重试")
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) GetAllCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repository.GetAllCategories()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有分类成功", categories)
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	c := r.Context().Value(CategoryCtx).(*domain.Category)
	h.successResponse(w, r, "获取分类成功", c)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	req, images, err := h.readCategoryForm(w, r)
	if err != nil {
		h.formError(w, r, err)
		return
	}
	if req.Name == nil || *req.Name == "" {
		h.removeImages(images)
		h.errorResponse(w, r, http.StatusBadRequest, "名称为必填字段")
		return
	}

	c := &domain.Category{
		Name:     *req.Name,
		IsActive: req.IsActive,
	}
	if req.SortOrder != nil {
		v := int32(*req.SortOrder)
		c.SortOrder = &v
	}
	if len(images) > 0 {
		c.Image = &images[0]
	}

	if err := h.repository.CreateCategory(c); err != nil {
		h.removeImages(images)
		h.categoryWriteError(w, r, err)
		return
	}

	h.createdResponse(w, r, "创建分类成功", c)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	c := r.Context().Value(CategoryCtx).(*domain.Category)

	req, images, err := h.readCategoryForm(w, r)
	if err != nil {
		h.formError(w, r, err)
		return
	}

	oldImage := c.Image
	if req.Name != nil {
		if *req.Name == "" {
			h.removeImages(images)
			h.errorResponse(w, r, http.StatusBadRequest, "名称不能为空")
			return
		}
		c.Name = *req.Name
	}
	if req.SortOrder != nil {
		v := int32(*req.SortOrder)
		c.SortOrder = &v
	}
	if req.IsActive != nil {
		c.IsActive = req.IsActive
	}
	if len(images) > 0 {
		c.Image = &images[0]
	}

	if err := h.repository.UpdateCategory(c); err != nil {
		h.removeImages(images)
		h.categoryWriteError(w, r, err)
		return
	}

	if len(images) > 0 && oldImage != nil {
		h.removeImages([]string{*oldImage})
	}
	// 排餐表里内嵌了分类名
	if req.Name != nil {
		h.invalidateAllRosterCache(r.Context())
	}

	h.successResponse(w, r, "更新分类成功", c)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	c := r.Context().Value(CategoryCtx).(*domain.Category)

	if err := h.repository.DeleteCategory(c.ID); err != nil {
		h.categoryWriteError(w, r, err)
		return
	}

	if c.Image != nil {
		h.removeImages([]string{*c.Image})
	}

	h.successResponse(w, r, "删除分类成功", nil)
}

// formError 区分客户端输入错误和服务端错误
func (h *Handler) formError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case isUploadClientError(err):
		h.badRequest(w, r, err)
	case isFormClientError(err):
		h.badRequest(w, r, err)
	default:
		h.internalServerError(w, r, err)
	}
}
