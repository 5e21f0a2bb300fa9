package repository

import (
	"context"
	"errors"
	"time"

	"meal-order-service/internal/domain"
)

// ErrPickupCodeTaken is returned by Save when the generated pickup code
// collides with an existing order. Callers retry with a fresh code.
var ErrPickupCodeTaken = errors.New("pickup code already in use")

type OrderRepository interface {
	// Save inserts a new order. It returns domain.ErrDuplicateOrder when the
	// user already holds an active order for the service date.
	Save(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	FindActiveByUserAndDate(ctx context.Context, userID string, serviceDate time.Time) (*domain.Order, error)
	FindByPickupCode(ctx context.Context, code string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string, from, to time.Time) ([]domain.Order, error)
	ListByServiceDate(ctx context.Context, serviceDate time.Time, status domain.OrderStatus) ([]domain.Order, error)
	// UpdateStatusIf moves order to status `to` only if the stored status still
	// equals order.Status. It reports whether a row changed and, if so, updates
	// order in place.
	UpdateStatusIf(ctx context.Context, order *domain.Order, to domain.OrderStatus) (bool, error)
	CountQualifyingByUser(ctx context.Context, from, to time.Time, statuses []domain.OrderStatus) ([]domain.UserOrderCount, error)
}
