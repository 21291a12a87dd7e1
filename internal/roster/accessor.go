package roster

import (
	"context"
	"net/url"

	"github.com/palmcourt/hotel-admin/internal/domain"
	"github.com/palmcourt/hotel-admin/internal/gateway"
)

// UpsertInput 中的菜品和备注会整体覆盖每一个日期
type UpsertInput struct {
	Dates []domain.Date
	Items []string
	Notes string
}

type upsertBody struct {
	Dates []string `json:"dates"`
	Items []string `json:"items"`
	Notes string   `json:"notes"`
}

type Accessor struct {
	client *gateway.Client
}

func NewAccessor(client *gateway.Client) *Accessor {
	return &Accessor{client: client}
}

// GetRosterByDate 该日期没有排餐表时返回 nil, nil
func (a *Accessor) GetRosterByDate(ctx context.Context, date domain.Date) (*domain.DailyRoster, error) {
	if date.IsZero() {
		return nil, ErrInvalidDate
	}

	var roster *domain.DailyRoster
	query := url.Values{"date": {date.String()}}
	if err := a.client.Get(ctx, "/dining/getrosterbydate", query, &roster); err != nil {
		return nil, err
	}
	return roster, nil
}

func (a *Accessor) UpsertDailyRoster(ctx context.Context, in UpsertInput) ([]domain.DailyRoster, error) {
	if len(in.Dates) == 0 {
		return nil, ErrNoDates
	}

	body := upsertBody{
		Dates: make([]string, 0, len(in.Dates)),
		Items: make([]string, 0, len(in.Items)),
		Notes: in.Notes,
	}
	for _, d := range in.Dates {
		if d.IsZero() {
			return nil, ErrInvalidDate
		}
		body.Dates = append(body.Dates, d.String())
	}
	body.Items = append(body.Items, in.Items...)

	rosters := []domain.DailyRoster{}
	if err := a.client.PostJSON(ctx, "/dining/dailyroster", body, &rosters); err != nil {
		return nil, err
	}
	return rosters, nil
}

// GetRosterRange 返回 [start, end] 内已有的排餐表，按日期升序
func (a *Accessor) GetRosterRange(ctx context.Context, start, end domain.Date) ([]domain.DailyRoster, error) {
	if start.IsZero() || end.IsZero() {
		return nil, ErrInvalidDate
	}

	rosters := []domain.DailyRoster{}
	query := url.Values{"start": {start.String()}, "end": {end.String()}}
	if err := a.client.Get(ctx, "/dining/range", query, &rosters); err != nil {
		return nil, err
	}
	return rosters, nil
}
