package roster

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/palmcourt/hotel-admin/internal/dining"
	"github.com/palmcourt/hotel-admin/internal/domain"
	"github.com/palmcourt/hotel-admin/internal/gateway"
	"github.com/palmcourt/hotel-admin/internal/querycache"
	"github.com/stretchr/testify/require"
)

// fakeBackend 在内存中实现排餐表和菜单接口
type fakeBackend struct {
	t *testing.T

	mu          sync.Mutex
	menu        []domain.MenuItem
	rosters     map[string]domain.DailyRoster
	rosterGets  map[string]int
	upserts     int
	menuGets    int
	failMenu    bool
	failDates   map[string]bool
	gates       map[string]chan struct{}
	arrived     chan string
	upsertGate  chan struct{}
	upsertSeen  chan struct{}
	failUpserts bool
}

func newFakeBackend(t *testing.T) *fakeBackend {
	return &fakeBackend{
		t: t,
		menu: []domain.MenuItem{
			menuItem("paneer-tikka", "Paneer Tikka", "Starters"),
			menuItem("chicken-65", "Chicken 65", "Starters"),
			menuItem("veg-burger", "Classic Veg Burger", "Burgers"),
			menuItem("dal-makhani", "Dal Makhani", "Main Course"),
			menuItem("gulab-jamun", "Gulab Jamun", "Desserts"),
			menuItem("masala-chai", "Masala Chai", "Beverages"),
			menuItem("greek-salad", "Greek Salad", "Salads"),
			menuItem("soup", "Tomato Soup", "Soups"),
		},
		rosters:    make(map[string]domain.DailyRoster),
		rosterGets: make(map[string]int),
		failDates:  make(map[string]bool),
		gates:      make(map[string]chan struct{}),
		arrived:    make(chan string, 16),
	}
}

func menuItem(id, name, category string) domain.MenuItem {
	return domain.MenuItem{
		ID:              id,
		Name:            name,
		Category:        domain.CategoryRef{ID: "cat-" + category, Name: category},
		BasePrice:       100,
		IsVeg:           true,
		PreparationTime: 10,
		SpiceLevel:      domain.SpiceMedium,
		IsAvailable:     true,
		Images:          []string{},
	}
}

func (b *fakeBackend) writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": status < 400, "message": "ok", "data": data})
}

func (b *fakeBackend) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": msg, "data": nil})
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /admin/dining/menu", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.menuGets++
		fail := b.failMenu
		menu := append([]domain.MenuItem{}, b.menu...)
		b.mu.Unlock()

		if fail {
			b.writeError(w, http.StatusInternalServerError, "menu unavailable")
			return
		}
		b.writeData(w, http.StatusOK, menu)
	})

	mux.HandleFunc("GET /admin/dining/getrosterbydate", func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")

		// 先读出数据再等待，模拟读库之后才慢慢返回的请求
		b.mu.Lock()
		b.rosterGets[date]++
		gate := b.gates[date]
		fail := b.failDates[date]
		roster, ok := b.rosters[date]
		b.mu.Unlock()

		if gate != nil {
			b.arrived <- date
			<-gate
		}
		if fail {
			b.writeError(w, http.StatusInternalServerError, "roster unavailable")
			return
		}
		if !ok {
			b.writeData(w, http.StatusOK, nil)
			return
		}
		b.writeData(w, http.StatusOK, roster)
	})

	mux.HandleFunc("POST /admin/dining/dailyroster", func(w http.ResponseWriter, r *http.Request) {
		var body upsertBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			b.writeError(w, http.StatusBadRequest, "request body must be valid JSON")
			return
		}

		b.mu.Lock()
		b.upserts++
		gate, seen := b.upsertGate, b.upsertSeen
		fail := b.failUpserts
		b.mu.Unlock()

		if seen != nil {
			seen <- struct{}{}
		}
		if gate != nil {
			<-gate
		}
		if fail {
			b.writeError(w, http.StatusInternalServerError, "database unavailable")
			return
		}

		b.mu.Lock()
		defer b.mu.Unlock()

		saved := make([]domain.DailyRoster, 0, len(body.Dates))
		for _, ds := range body.Dates {
			roster := domain.DailyRoster{
				ID:        "roster-" + ds,
				Date:      domain.MustParseDate(ds),
				Items:     []domain.RosterItem{},
				Notes:     body.Notes,
				UpdatedAt: time.Now(),
			}
			for _, id := range body.Items {
				for _, m := range b.menu {
					if m.ID == id {
						roster.Items = append(roster.Items, domain.RosterItem{ID: m.ID, Name: m.Name, Category: m.Category, BasePrice: m.BasePrice, IsVeg: m.IsVeg, SpiceLevel: m.SpiceLevel, IsAvailable: m.IsAvailable})
					}
				}
			}
			b.rosters[ds] = roster
			saved = append(saved, roster)
		}
		b.writeData(w, http.StatusOK, saved)
	})

	mux.HandleFunc("GET /admin/dining/range", func(w http.ResponseWriter, r *http.Request) {
		start := domain.MustParseDate(r.URL.Query().Get("start"))
		end := domain.MustParseDate(r.URL.Query().Get("end"))

		b.mu.Lock()
		defer b.mu.Unlock()

		out := []domain.DailyRoster{}
		for d := start; !d.After(end); d = d.AddDays(1) {
			if roster, ok := b.rosters[d.String()]; ok {
				out = append(out, roster)
			}
		}
		b.writeData(w, http.StatusOK, out)
	})

	return mux
}

// seed 直接写入一条排餐表
func (b *fakeBackend) seed(date domain.Date, notes string, ids ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	roster := domain.DailyRoster{ID: "roster-" + date.String(), Date: date, Notes: notes, Items: []domain.RosterItem{}}
	for _, id := range ids {
		roster.Items = append(roster.Items, domain.RosterItem{ID: id, Name: id})
	}
	b.rosters[date.String()] = roster
}

func (b *fakeBackend) gate(date domain.Date) chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan struct{})
	b.gates[date.String()] = ch
	return ch
}

// ungate 让之后的请求不再等待，已经在等待的请求不受影响
func (b *fakeBackend) ungate(date domain.Date) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.gates, date.String())
}

func (b *fakeBackend) upsertCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.upserts
}

func (b *fakeBackend) rosterGetCount(date domain.Date) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rosterGets[date.String()]
}

type testEnv struct {
	backend *fakeBackend
	session *gateway.MemorySession
	client  *gateway.Client
	access  *Accessor
	catalog *dining.Service
	cache   *querycache.Cache
	today   domain.Date
}

var testToday = domain.NewDate(2030, time.January, 10)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	backend := newFakeBackend(t)
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	session := gateway.NewMemorySession("tok")
	client, err := gateway.New(gateway.Options{BaseURL: srv.URL + "/admin", Session: session, Timeout: 5 * time.Second})
	require.NoError(t, err)

	return &testEnv{
		backend: backend,
		session: session,
		client:  client,
		access:  NewAccessor(client),
		catalog: dining.NewService(client),
		cache:   querycache.New(0),
		today:   testToday,
	}
}

func (e *testEnv) coordinator() *Coordinator {
	return NewCoordinator(Options{
		Rosters:      e.access,
		Catalog:      e.catalog,
		Cache:        e.cache,
		UpcomingDays: 5,
		Now: func() time.Time {
			return time.Date(2030, time.January, 10, 9, 30, 0, 0, time.Local)
		},
	})
}
