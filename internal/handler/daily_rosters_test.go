package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/palmcourt/hotel-admin/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestUpsertDailyRosterRejectsInvalidInput(t *testing.T) {
	h := newTestHandler(t)
	admin := &domain.Admin{ID: 1, Username: "admin", FullName: "Administrator", Role: domain.RoleManager, IsActive: true}

	validItem := "0b6f3f3c-2d0a-4b8e-9b55-6d1c8f6a9e21"

	tests := []struct {
		name     string
		body     string
		contains string
	}{
		{"invalid json", `{"dates":`, "请求体不是有效的 JSON"},
		{"missing dates", `{"items":["` + validItem + `"]}`, "Dates为必填字段"},
		{"empty dates", `{"dates":[],"items":["` + validItem + `"]}`, "Dates必须至少包含1"},
		{"malformed date", `{"dates":["10/03/2025"],"items":["` + validItem + `"]}`, `日期格式错误 "10/03/2025"`},
		{"past date", `{"dates":["2025-03-09"],"items":["` + validItem + `"]}`, "不能修改过去的日期 2025-03-09"},
		{"past date among future", `{"dates":["2025-03-11","2025-03-01"],"items":["` + validItem + `"]}`, "不能修改过去的日期 2025-03-01"},
		{"item is not an id", `{"dates":["2025-03-10"],"items":["paneer"]}`, "UUID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/dining/dailyroster", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.UpsertDailyRoster(rec, withValue(req, MyInfoCtx, admin))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
			assert.Contains(t, resp.Message, tt.contains)
		})
	}
}

func TestGetRosterByDateRejectsBadDate(t *testing.T) {
	h := newTestHandler(t)

	for _, q := range []string{"", "?date=", "?date=2025-13-01", "?date=tomorrow"} {
		req := httptest.NewRequest(http.MethodGet, "/admin/dining/getrosterbydate"+q, nil)
		rec := httptest.NewRecorder()
		h.GetRosterByDate(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestGetRosterRangeValidatesBounds(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		query   string
		message string
	}{
		{"?start=2025-03-10", `日期格式错误 ""，应为 YYYY-MM-DD`},
		{"?start=2025-03-10&end=2025-03-01", "结束日期不能早于开始日期"},
		{"?start=2025-01-01&end=2025-06-01", "日期范围不能超过 62 天"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/admin/dining/range"+tt.query, nil)
		rec := httptest.NewRecorder()
		h.GetRosterRange(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, tt.query)
		assert.Equal(t, tt.message, decodeResponse(t, rec).Message, tt.query)
	}
}

func TestRosterCacheKey(t *testing.T) {
	assert.Equal(t, "roster_2025-03-10", rosterCacheKey(domain.MustParseDate("2025-03-10")))
}

func TestCacheHelpersWithoutRedis(t *testing.T) {
	h := newTestHandler(t)
	date := domain.MustParseDate("2025-03-10")

	roster, ok := h.cachedRoster(context.Background(), date)
	assert.False(t, ok)
	assert.Nil(t, roster)

	assert.NotPanics(t, func() {
		h.cacheRoster(context.Background(), date, "", nil)
		h.invalidateRosterCache(context.Background(), []domain.Date{date})
		h.invalidateAllRosterCache(context.Background())
	})
}
