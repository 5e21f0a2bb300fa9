package infra

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"meal-order-service/internal/domain"
	"meal-order-service/internal/logging"

	"golang.org/x/sync/singleflight"
)

// CachedMenuCatalog keeps published menus in redis for a short TTL and
// collapses concurrent misses for the same date into one upstream call.
// Food lookups always go upstream because order snapshots need the current
// price.
type CachedMenuCatalog struct {
	next  MenuCatalog
	cache MenuCache
	ttl   time.Duration
	group singleflight.Group
	log   *slog.Logger
}

// NewCachedMenuCatalog wraps next. A nil cache or a non-positive ttl disables
// caching. The sold-out flags served to callers lag the catalog by at most ttl.
func NewCachedMenuCatalog(next MenuCatalog, cache MenuCache, ttl time.Duration) *CachedMenuCatalog {
	if ttl <= 0 {
		cache = nil
	}
	return &CachedMenuCatalog{next: next, cache: cache, ttl: ttl, log: logging.New("menu-cache")}
}

func (c *CachedMenuCatalog) GetFoodByID(ctx context.Context, id uint64) (*domain.FoodItem, error) {
	return c.next.GetFoodByID(ctx, id)
}

func (c *CachedMenuCatalog) GetPublishedMenu(ctx context.Context, date time.Time) (*domain.DailyMenu, error) {
	key := "menu:" + date.Format(domain.DateLayout)

	if c.cache != nil {
		if b, err := c.cache.Get(ctx, key).Bytes(); err == nil {
			var m domain.DailyMenu
			if err := json.Unmarshal(b, &m); err == nil {
				return &m, nil
			}
		}
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Shared by every waiting caller, so one caller's cancellation must
		// not fail the others.
		ctx := context.WithoutCancel(ctx)
		m, err := c.next.GetPublishedMenu(ctx, date)
		if err != nil {
			return nil, err
		}
		if m != nil && c.cache != nil {
			if data, err := json.Marshal(m); err == nil {
				if err := c.cache.Set(ctx, key, data, c.ttl).Err(); err != nil {
					c.log.Warn("menu cache write failed", "key", key, "error", err)
				}
			}
		}
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	m, _ := v.(*domain.DailyMenu)
	return m, nil
}
