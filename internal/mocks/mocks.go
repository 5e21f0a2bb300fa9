package mocks

import (
	"context"
	"time"

	"meal-order-service/internal/domain"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

type MockMenuCatalog struct {
	mock.Mock
}

type MockPublisher struct {
	mock.Mock
}

type MockSettingsProvider struct {
	mock.Mock
}

type MockSettingsRepository struct {
	mock.Mock
}

type MockMenuCache struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, message any) error {
	args := m.Called(ctx, topic, message)
	return args.Error(0)
}

func (m *MockMenuCatalog) GetFoodByID(ctx context.Context, id uint64) (*domain.FoodItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FoodItem), args.Error(1)
}

func (m *MockMenuCatalog) GetPublishedMenu(ctx context.Context, date time.Time) (*domain.DailyMenu, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyMenu), args.Error(1)
}

func (m *MockSettingsProvider) Current(ctx context.Context) (domain.SubsidyPolicy, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.SubsidyPolicy), args.Error(1)
}

func (m *MockSettingsRepository) Get(ctx context.Context) (domain.SubsidyPolicy, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.SubsidyPolicy), args.Error(1)
}

func (m *MockSettingsRepository) Update(ctx context.Context, policy domain.SubsidyPolicy) error {
	args := m.Called(ctx, policy)
	return args.Error(0)
}

func (m *MockSettingsRepository) EnsureDefaults(ctx context.Context, policy domain.SubsidyPolicy) error {
	args := m.Called(ctx, policy)
	return args.Error(0)
}

func (m *MockMenuCache) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	return args.Get(0).(*redis.StringCmd)
}

func (m *MockMenuCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	return args.Get(0).(*redis.StatusCmd)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindActiveByUserAndDate(ctx context.Context, userID string, serviceDate time.Time) (*domain.Order, error) {
	args := m.Called(ctx, userID, serviceDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByPickupCode(ctx context.Context, code string) (*domain.Order, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByUser(ctx context.Context, userID string, from, to time.Time) ([]domain.Order, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByServiceDate(ctx context.Context, serviceDate time.Time, status domain.OrderStatus) ([]domain.Order, error) {
	args := m.Called(ctx, serviceDate, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatusIf(ctx context.Context, order *domain.Order, to domain.OrderStatus) (bool, error) {
	args := m.Called(ctx, order, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) CountQualifyingByUser(ctx context.Context, from, to time.Time, statuses []domain.OrderStatus) ([]domain.UserOrderCount, error) {
	args := m.Called(ctx, from, to, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UserOrderCount), args.Error(1)
}
