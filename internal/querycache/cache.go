package querycache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/palmcourt/hotel-admin/internal/domain"
	"golang.org/x/sync/singleflight"
)

type Kind string

const (
	KindMenuCatalog Kind = "menuCatalog"
	KindRoster      Kind = "roster"
)

// Key 可以直接作为 map 的键
type Key struct {
	kind Kind
	date domain.Date
}

func MenuCatalogKey() Key {
	return Key{kind: KindMenuCatalog}
}

func RosterKey(date domain.Date) Key {
	return Key{kind: KindRoster, date: date}
}

func (k Key) Kind() Kind {
	return k.kind
}

func (k Key) String() string {
	if k.date.IsZero() {
		return string(k.kind)
	}
	return fmt.Sprintf("%s:%s", k.kind, k.date)
}

type entry struct {
	value     any
	fetchedAt time.Time
}

// Cache 按键缓存查询结果。同一个键的并发请求只会发出一次，
// 失败的结果不会被缓存，也不会影响其他键
type Cache struct {
	mu          sync.Mutex
	ttl         time.Duration
	entries     map[Key]*entry
	generations map[Key]uint64
	kindGens    map[Kind]uint64
	group       singleflight.Group
	now         func() time.Time
}

// New 创建缓存，ttl <= 0 表示结果一直有效直到被 Invalidate
func New(ttl time.Duration) *Cache {
	return &Cache{
		ttl:         ttl,
		entries:     make(map[Key]*entry),
		generations: make(map[Key]uint64),
		kindGens:    make(map[Kind]uint64),
		now:         time.Now,
	}
}

func (c *Cache) lookup(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(e.fetchedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// 两个计数都只增不减，所以和相等就说明期间没有发生过失效
func (c *Cache) generationLocked(key Key) uint64 {
	return c.generations[key] + c.kindGens[key.kind]
}

func (c *Cache) generation(key Key) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generationLocked(key)
}

// store 只在没有发生过 Invalidate 的情况下写入，避免失效前发出的请求把旧数据写回缓存
func (c *Cache) store(key Key, value any, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generationLocked(key) != gen {
		return
	}
	c.entries[key] = &entry{value: value, fetchedAt: c.now()}
}

// groupKey 带上代数，失效之后的请求不会合并到失效之前的请求上
func groupKey(key Key, gen uint64) string {
	return fmt.Sprintf("%s#%d", key, gen)
}

// Fetch 返回 key 的缓存值；没有缓存或已过期时调用 fetch
func Fetch[T any](ctx context.Context, c *Cache, key Key, fetch func(ctx context.Context) (T, error)) (T, error) {
	if v, ok := c.lookup(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}

	gen := c.generation(key)
	v, err, _ := c.group.Do(groupKey(key, gen), func() (any, error) {
		// 上一次合并的请求可能刚刚写入
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.store(key, value, gen)
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("querycache: unexpected value type %T for key %s", v, key)
	}
	return t, nil
}

func (c *Cache) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		delete(c.entries, key)
		c.generations[key]++
	}
}

// InvalidateKind 使某一类的所有键失效
func (c *Cache) InvalidateKind(kind Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if key.kind == kind {
			delete(c.entries, key)
		}
	}
	c.kindGens[kind]++
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
