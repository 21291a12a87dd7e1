package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/palmcourt/hotel-admin/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	rosterCachePrefix = "roster_"
	// 版本号的前缀不能匹配 roster_*，否则会被 invalidateAllRosterCache 一起删掉
	rosterVersionPrefix = "rosterver_"
	rosterAllVersionKey = "rosterver_all"
	rosterVersionTTL    = 24 * time.Hour
)

var errRosterCacheStale = errors.New("roster changed while it was being read")

func rosterCacheKey(date domain.Date) string {
	return fmt.Sprintf("%s%s", rosterCachePrefix, date)
}

func rosterVersionKey(date domain.Date) string {
	return fmt.Sprintf("%s%s", rosterVersionPrefix, date)
}

func rosterVersionKeys(date domain.Date) []string {
	return []string{rosterVersionKey(date), rosterAllVersionKey}
}

func formatRosterVersion(vals []any) string {
	return fmt.Sprintf("%v/%v", vals[0], vals[1])
}

func (h *Handler) redisContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(h.config.Redis.OperationExpiration)*time.Second)
}

// cachedRoster 的第二个返回值表示是否命中；命中时 roster 可能为 nil，表示该日期没有排餐表
func (h *Handler) cachedRoster(ctx context.Context, date domain.Date) (*domain.DailyRoster, bool) {
	if h.redisClient == nil {
		return nil, false
	}

	ctx, cancel := h.redisContext(ctx)
	defer cancel()

	data, err := h.redisClient.Get(ctx, rosterCacheKey(date)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			rosterCacheLookups.WithLabelValues("miss").Inc()
		} else {
			rosterCacheLookups.WithLabelValues("error").Inc()
			slog.Warn("读取排餐表缓存失败", "date", date, "error", err)
		}
		return nil, false
	}

	var roster *domain.DailyRoster
	if err := json.Unmarshal(data, &roster); err != nil {
		rosterCacheLookups.WithLabelValues("error").Inc()
		slog.Warn("排餐表缓存内容无效", "date", date, "error", err)
		return nil, false
	}

	rosterCacheLookups.WithLabelValues("hit").Inc()
	return roster, true
}

// rosterCacheVersion 必须在读库之前调用，返回的版本号交给 cacheRoster。
// 第二个返回值为 false 时不应写入缓存
func (h *Handler) rosterCacheVersion(ctx context.Context, date domain.Date) (string, bool) {
	if h.redisClient == nil {
		return "", false
	}

	ctx, cancel := h.redisContext(ctx)
	defer cancel()

	vals, err := h.redisClient.MGet(ctx, rosterVersionKeys(date)...).Result()
	if err != nil {
		slog.Warn("读取排餐表缓存版本失败", "date", date, "error", err)
		return "", false
	}
	return formatRosterVersion(vals), true
}

// cacheRoster 只在读库期间版本号没有变化时写入，避免把保存之前读到的数据写回缓存。
// 缓存失败不影响请求
func (h *Handler) cacheRoster(ctx context.Context, date domain.Date, version string, roster *domain.DailyRoster) {
	if h.redisClient == nil {
		return
	}

	data, err := json.Marshal(roster)
	if err != nil {
		slog.Warn("序列化排餐表失败", "date", date, "error", err)
		return
	}

	ctx, cancel := h.redisContext(ctx)
	defer cancel()

	ttl := time.Duration(h.config.Roster.CacheTTL) * time.Second
	keys := rosterVersionKeys(date)
	err = h.redisClient.Watch(ctx, func(tx *redis.Tx) error {
		vals, err := tx.MGet(ctx, keys...).Result()
		if err != nil {
			return err
		}
		if formatRosterVersion(vals) != version {
			return errRosterCacheStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, rosterCacheKey(date), data, ttl)
			return nil
		})
		return err
	}, keys...)

	switch {
	case err == nil:
	case errors.Is(err, errRosterCacheStale), errors.Is(err, redis.TxFailedErr):
		rosterCacheLookups.WithLabelValues("stale").Inc()
		slog.Debug("排餐表在读取期间被修改，跳过缓存", "date", date)
	default:
		slog.Warn("写入排餐表缓存失败", "date", date, "error", err)
	}
}

func (h *Handler) invalidateRosterCache(ctx context.Context, dates []domain.Date) {
	if h.redisClient == nil || len(dates) == 0 {
		return
	}

	keys := make([]string, 0, len(dates))
	for _, d := range dates {
		keys = append(keys, rosterCacheKey(d))
	}

	ctx, cancel := h.redisContext(ctx)
	defer cancel()

	_, err := h.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, d := range dates {
			pipe.Incr(ctx, rosterVersionKey(d))
			pipe.Expire(ctx, rosterVersionKey(d), rosterVersionTTL)
		}
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		slog.Warn("清除排餐表缓存失败", "keys", keys, "error", err)
	}
}

// invalidateAllRosterCache 菜品或分类变化后，所有内嵌了菜品摘要的缓存都可能过期
func (h *Handler) invalidateAllRosterCache(ctx context.Context) {
	if h.redisClient == nil {
		return
	}

	ctx, cancel := h.redisContext(ctx)
	defer cancel()

	if err := h.redisClient.Incr(ctx, rosterAllVersionKey).Err(); err != nil {
		slog.Warn("更新排餐表缓存版本失败", "error", err)
	}

	var keys []string
	iter := h.redisClient.Scan(ctx, 0, rosterCachePrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.Warn("扫描排餐表缓存失败", "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}

	if err := h.redisClient.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("清除排餐表缓存失败", "count", len(keys), "error", err)
	}
}
