package roster

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/palmcourt/hotel-admin/internal/domain"
	"github.com/palmcourt/hotel-admin/internal/querycache"
	"golang.org/x/sync/errgroup"
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateEditing
	StateSaving
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateEditing:
		return "editing"
	case StateSaving:
		return "saving"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

const DefaultUpcomingDays = 5

type RosterSource interface {
	GetRosterByDate(ctx context.Context, date domain.Date) (*domain.DailyRoster, error)
	UpsertDailyRoster(ctx context.Context, in UpsertInput) ([]domain.DailyRoster, error)
}

type CatalogSource interface {
	ListMenuItems(ctx context.Context) ([]domain.MenuItem, error)
}

type Options struct {
	Rosters RosterSource
	Catalog CatalogSource
	// Cache 为 nil 时使用一个不过期的新缓存
	Cache        *querycache.Cache
	UpcomingDays int
	Categories   []string
	Now          func() time.Time
	Logger       *slog.Logger
}

// Coordinator 管理排餐页面的状态：菜单、今天、未来几天以及当前选中日期的排餐表，
// 还有选中日期尚未保存的编辑副本。可以并发使用
type Coordinator struct {
	rosters      RosterSource
	catalog      CatalogSource
	cache        *querycache.Cache
	upcomingDays int
	categories   []string
	now          func() time.Time
	logger       *slog.Logger

	mu      sync.Mutex
	loaded  bool
	pending int
	saving  bool
	lastErr error

	today         domain.Date
	upcomingDates []domain.Date

	catalogItems  []domain.MenuItem
	catalogLoaded bool
	catalogErr    error

	todayRoster *domain.DailyRoster
	todayErr    error

	upcoming     map[domain.Date]*domain.DailyRoster
	upcomingErrs map[domain.Date]error
	// panelGen 每次重新加载今天和未来几天时递增，旧一轮的响应直接丢弃
	panelGen uint64

	// 选中日期和编辑副本。selectionGen 每次切换日期都会递增，
	// 只有与之匹配的响应才会被应用
	selected       domain.Date
	selectionGen   uint64
	seeded         bool
	selectedRoster *domain.DailyRoster
	selectedErr    error
	itemIDs        []string
	notes          string
	dirty          bool
}

func NewCoordinator(opts Options) *Coordinator {
	c := &Coordinator{
		rosters:      opts.Rosters,
		catalog:      opts.Catalog,
		cache:        opts.Cache,
		upcomingDays: opts.UpcomingDays,
		categories:   opts.Categories,
		now:          opts.Now,
		logger:       opts.Logger,
		upcoming:     make(map[domain.Date]*domain.DailyRoster),
		upcomingErrs: make(map[domain.Date]error),
	}
	if c.cache == nil {
		c.cache = querycache.New(0)
	}
	if c.upcomingDays <= 0 {
		c.upcomingDays = DefaultUpcomingDays
	}
	if len(c.categories) == 0 {
		c.categories = DefaultCategories
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

func (c *Coordinator) fetchRoster(ctx context.Context, date domain.Date) (*domain.DailyRoster, error) {
	return querycache.Fetch(ctx, c.cache, querycache.RosterKey(date), func(ctx context.Context) (*domain.DailyRoster, error) {
		return c.rosters.GetRosterByDate(ctx, date)
	})
}

func (c *Coordinator) fetchCatalog(ctx context.Context) ([]domain.MenuItem, error) {
	return querycache.Fetch(ctx, c.cache, querycache.MenuCatalogKey(), c.catalog.ListMenuItems)
}

// Load 并发加载菜单、今天、未来几天和选中日期的排餐表。
// 各部分互不影响，返回第一个失败的错误，每部分的错误可以从 View 中读取
func (c *Coordinator) Load(ctx context.Context) error {
	c.mu.Lock()
	c.loaded = true
	c.today = domain.DateOf(c.now())
	if c.selected.IsZero() {
		c.selected = c.today
	}
	c.upcomingDates = c.today.NextDays(c.upcomingDays)
	c.pending++

	gen := c.beginSelectionLocked(c.selected)
	selected := c.selected
	c.mu.Unlock()

	defer c.done()

	var g errgroup.Group

	g.Go(func() error {
		return c.loadCatalog(ctx)
	})
	g.Go(func() error {
		roster, err := c.fetchRoster(ctx, selected)
		c.applySelection(gen, selected, roster, err)
		if err != nil {
			return fmt.Errorf("roster for %s: %w", selected, err)
		}
		return nil
	})
	c.goPanels(ctx, &g)

	return g.Wait()
}

func (c *Coordinator) goPanels(ctx context.Context, g *errgroup.Group) {
	c.mu.Lock()
	c.panelGen++
	gen := c.panelGen
	today := c.today
	dates := slices.Clone(c.upcomingDates)
	c.mu.Unlock()

	g.Go(func() error {
		return c.loadToday(ctx, gen, today)
	})
	for _, d := range dates {
		g.Go(func() error {
			return c.loadUpcoming(ctx, gen, d)
		})
	}
}

func (c *Coordinator) loadCatalog(ctx context.Context) error {
	items, err := c.fetchCatalog(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.catalogErr = err
		c.logger.Warn("加载菜单失败", "error", err)
		return fmt.Errorf("menu catalog: %w", err)
	}
	c.catalogItems, c.catalogErr, c.catalogLoaded = items, nil, true
	return nil
}

func (c *Coordinator) loadToday(ctx context.Context, gen uint64, today domain.Date) error {
	roster, err := c.fetchRoster(ctx, today)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.panelGen || !today.Equal(c.today) {
		c.logger.Debug("丢弃过期的今日排餐表响应", "date", today)
		return nil
	}
	if err != nil {
		c.todayErr = err
		c.logger.Warn("加载今天的排餐表失败", "date", today, "error", err)
		return fmt.Errorf("roster for today: %w", err)
	}
	c.todayRoster, c.todayErr = roster, nil
	return nil
}

func (c *Coordinator) loadUpcoming(ctx context.Context, gen uint64, date domain.Date) error {
	roster, err := c.fetchRoster(ctx, date)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.panelGen {
		c.logger.Debug("丢弃过期的排餐表响应", "date", date)
		return nil
	}
	if err != nil {
		c.upcomingErrs[date] = err
		delete(c.upcoming, date)
		c.logger.Warn("加载排餐表失败", "date", date, "error", err)
		return fmt.Errorf("roster for %s: %w", date, err)
	}
	delete(c.upcomingErrs, date)
	c.upcoming[date] = roster
	return nil
}

func (c *Coordinator) done() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending--
}

// beginSelectionLocked 切换选中日期并丢弃未保存的编辑，返回新的代数
func (c *Coordinator) beginSelectionLocked(date domain.Date) uint64 {
	c.selectionGen++
	c.selected = date
	c.seeded = false
	c.selectedRoster = nil
	c.selectedErr = nil
	c.itemIDs = nil
	c.notes = ""
	c.dirty = false
	c.lastErr = nil
	return c.selectionGen
}

// applySelection 只在响应对应的仍是当前选中日期时才重新填充编辑副本
func (c *Coordinator) applySelection(gen uint64, date domain.Date, roster *domain.DailyRoster, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.selectionGen || !date.Equal(c.selected) {
		c.logger.Debug("丢弃过期的排餐表响应", "date", date, "selected", c.selected)
		return false
	}

	if err != nil {
		c.selectedErr = err
		c.logger.Warn("加载选中日期的排餐表失败", "date", date, "error", err)
		return true
	}

	c.selectedRoster = roster
	c.itemIDs = roster.ItemIDs()
	c.notes = ""
	if roster != nil {
		c.notes = roster.Notes
	}
	c.seeded = true
	c.dirty = false
	return true
}

// SelectDate 切换选中日期，等到该日期的排餐表返回后重新填充编辑副本。
// 如果在返回之前又切换到了其他日期，这次的结果会被丢弃
func (c *Coordinator) SelectDate(ctx context.Context, date domain.Date) error {
	if date.IsZero() {
		return ErrInvalidDate
	}

	c.mu.Lock()
	if c.today.IsZero() {
		c.today = domain.DateOf(c.now())
	}
	c.pending++
	gen := c.beginSelectionLocked(date)
	c.mu.Unlock()

	defer c.done()

	roster, err := c.fetchRoster(ctx, date)
	if !c.applySelection(gen, date, roster, err) {
		return nil
	}
	return err
}

func (c *Coordinator) ToggleItem(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.seeded {
		return ErrSelectionLoading
	}

	if i := slices.Index(c.itemIDs, id); i >= 0 {
		c.itemIDs = slices.Delete(c.itemIDs, i, i+1)
	} else {
		c.itemIDs = append(c.itemIDs, id)
	}
	c.dirty = true
	c.lastErr = nil
	return nil
}

func (c *Coordinator) SetNotes(notes string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.seeded {
		return ErrSelectionLoading
	}

	c.notes = notes
	c.dirty = true
	c.lastErr = nil
	return nil
}

// Save 把编辑副本保存到选中日期
func (c *Coordinator) Save(ctx context.Context) error {
	return c.save(ctx, nil)
}

// Assign 把编辑副本同时保存到选中日期和 extra 中的每一个日期
func (c *Coordinator) Assign(ctx context.Context, extra ...domain.Date) error {
	return c.save(ctx, extra)
}

func (c *Coordinator) save(ctx context.Context, extra []domain.Date) error {
	c.mu.Lock()

	if c.saving {
		c.mu.Unlock()
		return ErrSaveInProgress
	}

	c.today = domain.DateOf(c.now())
	today := c.today

	dates := []domain.Date{c.selected}
	for _, d := range extra {
		if d.IsZero() {
			c.mu.Unlock()
			return ErrInvalidDate
		}
		if !slices.ContainsFunc(dates, d.Equal) {
			dates = append(dates, d)
		}
	}
	if c.selected.IsZero() {
		c.mu.Unlock()
		return ErrNotLoaded
	}

	for _, d := range dates {
		if d.Before(today) {
			c.mu.Unlock()
			return ErrPastDate
		}
	}
	if len(c.itemIDs) == 0 {
		c.mu.Unlock()
		return ErrEmptySelection
	}
	if !c.catalogLoaded {
		c.mu.Unlock()
		return ErrCatalogUnavailable
	}

	in := UpsertInput{
		Dates: dates,
		Items: slices.Clone(c.itemIDs),
		Notes: c.notes,
	}
	gen := c.selectionGen
	c.saving = true
	c.lastErr = nil
	c.mu.Unlock()

	saved, err := c.rosters.UpsertDailyRoster(ctx, in)

	c.mu.Lock()
	c.saving = false
	if err != nil {
		c.lastErr = err
		c.mu.Unlock()
		c.logger.Warn("保存排餐表失败", "dates", in.Dates, "error", err)
		return err
	}
	if gen == c.selectionGen {
		for i := range saved {
			if saved[i].Date.Equal(c.selected) {
				c.selectedRoster = &saved[i]
				break
			}
		}
		c.dirty = false
	}

	keys := make([]querycache.Key, 0, len(dates)+len(c.upcomingDates)+1)
	for _, d := range dates {
		keys = append(keys, querycache.RosterKey(d))
	}
	keys = append(keys, querycache.RosterKey(today))
	for _, d := range c.upcomingDates {
		keys = append(keys, querycache.RosterKey(d))
	}
	c.mu.Unlock()

	c.cache.Invalidate(keys...)
	c.logger.Info("已保存排餐表", "dates", in.Dates, "items", len(in.Items))

	// 保存已经成功，刷新失败只体现在各面板的错误上
	var g errgroup.Group
	c.goPanels(ctx, &g)
	_ = g.Wait()

	return nil
}

// Refresh 丢弃所有缓存并重新加载，未保存的编辑会被丢弃
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.cache.Invalidate(querycache.MenuCatalogKey())
	c.cache.InvalidateKind(querycache.KindRoster)
	return c.Load(ctx)
}

func (c *Coordinator) stateLocked() State {
	switch {
	case c.saving:
		return StateSaving
	case c.lastErr != nil:
		return StateError
	case !c.loaded && c.pending == 0 && !c.seeded:
		return StateIdle
	case c.pending > 0:
		return StateLoading
	case c.dirty:
		return StateEditing
	default:
		return StateReady
	}
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

type View struct {
	State        State
	Today        domain.Date
	SelectedDate domain.Date
	// SelectionReady 为 false 表示选中日期的排餐表还没有返回
	SelectionReady  bool
	SelectedItemIDs []string
	Notes           string
	Dirty           bool
	CanSave         bool

	Groups      []CategoryGroup
	TodayRoster *domain.DailyRoster
	Saved       *domain.DailyRoster
	// UpcomingDates 是未来几天的完整日期列表，Upcoming 只包含其中有菜品的日期
	UpcomingDates []domain.Date
	Upcoming      []UpcomingCard

	CatalogErr   error
	TodayErr     error
	SelectedErr  error
	UpcomingErrs map[domain.Date]error
	LastErr      error
}

// View 返回当前状态的快照
func (c *Coordinator) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	selectedSet := make(map[string]bool, len(c.itemIDs))
	for _, id := range c.itemIDs {
		selectedSet[id] = true
	}

	upcomingErrs := make(map[domain.Date]error, len(c.upcomingErrs))
	for d, err := range c.upcomingErrs {
		upcomingErrs[d] = err
	}

	canSave := !c.saving &&
		c.seeded &&
		c.catalogLoaded &&
		!c.selected.IsZero() &&
		!c.selected.Before(domain.DateOf(c.now())) &&
		len(c.itemIDs) > 0

	return View{
		State:           c.stateLocked(),
		Today:           c.today,
		SelectedDate:    c.selected,
		SelectionReady:  c.seeded,
		SelectedItemIDs: slices.Clone(c.itemIDs),
		Notes:           c.notes,
		Dirty:           c.dirty,
		CanSave:         canSave,

		Groups:      GroupByCategory(c.catalogItems, c.categories, selectedSet),
		TodayRoster:   c.todayRoster,
		Saved:         c.selectedRoster,
		UpcomingDates: slices.Clone(c.upcomingDates),
		Upcoming:      UpcomingCards(c.upcomingDates, c.upcoming),

		CatalogErr:   c.catalogErr,
		TodayErr:     c.todayErr,
		SelectedErr:  c.selectedErr,
		UpcomingErrs: upcomingErrs,
		LastErr:      c.lastErr,
	}
}
