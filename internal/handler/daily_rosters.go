package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/palmcourt/hotel-admin/internal/domain"
	"github.com/palmcourt/hotel-admin/internal/utils"
)

// GetRosterByDate 该日期没有排餐表时 data 为 null，而不是 404
func (h *Handler) GetRosterByDate(w http.ResponseWriter, r *http.Request) {
	date, err := utils.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	if roster, ok := h.cachedRoster(r.Context(), date); ok {
		h.successResponse(w, r, "获取排餐表成功", roster)
		return
	}

	version, cacheable := h.rosterCacheVersion(r.Context(), date)

	roster, err := h.repository.GetDailyRosterByDate(date)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			roster = nil
		default:
			h.internalServerError(w, r, err)
			return
		}
	}

	if cacheable {
		h.cacheRoster(r.Context(), date, version, roster)
	}

	h.successResponse(w, r, "获取排餐表成功", roster)
}

func (h *Handler) GetRosterRange(w http.ResponseWriter, r *http.Request) {
	start, err := utils.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	end, err := utils.ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidateRosterRange(start, end); err != nil {
		h.badRequest(w, r, err)
		return
	}

	rosters, err := h.repository.GetDailyRostersInRange(start, end)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取日期范围内的排餐表成功", rosters)
}

// UpsertDailyRoster 把同一组菜品和备注整体写入每一个日期，同一日期后写覆盖先写
func (h *Handler) UpsertDailyRoster(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Admin)

	var req struct {
		Dates []string `json:"dates" validate:"required,min=1,dive,required"`
		Items []string `json:"items" validate:"dive,uuid"`
		Notes string   `json:"notes" validate:"max=500"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	dates, err := utils.ParseRosterDates(req.Dates, domain.DateOf(h.now()))
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	itemIDs := utils.DedupeIDs(req.Items)

	rosters, err := h.repository.UpsertDailyRosters(dates, itemIDs, req.Notes)
	if err != nil {
		rosterUpsertsTotal.WithLabelValues("error").Add(float64(len(dates)))

		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "daily_roster_items_menu_item_id_fkey":
				h.errorResponse(w, r, http.StatusBadRequest, "部分菜品不存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}
	rosterUpsertsTotal.WithLabelValues("ok").Add(float64(len(dates)))

	h.invalidateRosterCache(r.Context(), dates)
	h.notifyRosterUpdated(rosters, req.Notes, myInfo.FullName)

	h.successResponse(w, r, "保存排餐表成功", rosters)
}
