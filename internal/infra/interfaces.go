package infra

import (
	"context"
	"time"

	"meal-order-service/internal/domain"

	"github.com/go-redis/redis/v8"
)

// MenuCatalog is the read contract of the external menu service. Both
// lookups return nil, nil when the food or menu does not exist.
type MenuCatalog interface {
	GetFoodByID(ctx context.Context, id uint64) (*domain.FoodItem, error)
	GetPublishedMenu(ctx context.Context, date time.Time) (*domain.DailyMenu, error)
}

// MenuCache is the subset of the redis client used for menu caching.
type MenuCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

var (
	_ MenuCatalog = (*MenuClient)(nil)
	_ MenuCatalog = (*CachedMenuCatalog)(nil)
	_ MenuCache   = (*redis.Client)(nil)
)
