package gormrepo

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"meal-order-service/internal/domain"
	"meal-order-service/internal/logging"
	"meal-order-service/internal/repository"

	"gorm.io/gorm"
)

type orderRepo struct {
	db  *gorm.DB
	log *slog.Logger
}

// NewOrderRepository expects db to be opened with TranslateError enabled so
// that unique violations surface as gorm.ErrDuplicatedKey.
func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db, log: logging.New("order-repo")}
}

func (r *orderRepo) Save(ctx context.Context, order *domain.Order) error {
	order.ActiveKey = domain.ActiveKeyFor(order.UserID, order.ServiceDate, order.Status)

	err := r.db.WithContext(ctx).Create(order).Error
	if err == nil {
		if order.ID == 0 {
			return errors.New("failed to assign order ID")
		}
		return nil
	}
	order.ID = 0

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		taken, cerr := r.slotTaken(ctx, order.ActiveKey)
		if cerr != nil {
			return cerr
		}
		if taken {
			return domain.ErrDuplicateOrder
		}
		return repository.ErrPickupCodeTaken
	}

	r.log.Error("order save failed", "user_id", order.UserID, "error", err)
	return err
}

func (r *orderRepo) slotTaken(ctx context.Context, key *string) (bool, error) {
	if key == nil {
		return false, nil
	}
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Order{}).Where("active_key = ?", *key).Count(&n).Error; err != nil {
		r.log.Error("active slot lookup failed", "error", err)
		return false, err
	}
	return n > 0, nil
}

func (r *orderRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Error("FindByID failed", "order_id", id, "error", err)
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindActiveByUserAndDate(ctx context.Context, userID string, serviceDate time.Time) (*domain.Order, error) {
	key := domain.ActiveKeyFor(userID, serviceDate, domain.StatusPending)

	var o domain.Order
	if err := r.db.WithContext(ctx).Where("active_key = ?", *key).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Error("FindActiveByUserAndDate failed", "user_id", userID, "error", err)
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindByPickupCode(ctx context.Context, code string) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).Where("pickup_code = ?", code).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Error("FindByPickupCode failed", "error", err)
		return nil, err
	}
	return &o, nil
}

// ListByUser returns the user's orders, newest service date first. Zero
// bounds are open.
func (r *orderRepo) ListByUser(ctx context.Context, userID string, from, to time.Time) ([]domain.Order, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if !from.IsZero() {
		q = q.Where("service_date >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("service_date < ?", to)
	}

	var out []domain.Order
	if err := q.Order("service_date DESC").Order("id DESC").Find(&out).Error; err != nil {
		r.log.Error("ListByUser failed", "user_id", userID, "error", err)
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) ListByServiceDate(ctx context.Context, serviceDate time.Time, status domain.OrderStatus) ([]domain.Order, error) {
	q := r.db.WithContext(ctx).Where("service_date = ?", serviceDate)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var out []domain.Order
	if err := q.Order("created_at ASC").Order("id ASC").Find(&out).Error; err != nil {
		r.log.Error("ListByServiceDate failed", "error", err)
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) UpdateStatusIf(ctx context.Context, order *domain.Order, to domain.OrderStatus) (bool, error) {
	key := domain.ActiveKeyFor(order.UserID, order.ServiceDate, to)

	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND status = ?", order.ID, order.Status).
		Updates(map[string]any{"status": to, "active_key": key})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return false, domain.ErrDuplicateOrder
		}
		r.log.Error("UpdateStatusIf failed", "order_id", order.ID, "error", res.Error)
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	order.Status = to
	order.ActiveKey = key
	return true, nil
}

type userCountRow struct {
	UserID     string
	UserName   string
	OrderCount int
}

func (r *orderRepo) CountQualifyingByUser(ctx context.Context, from, to time.Time, statuses []domain.OrderStatus) ([]domain.UserOrderCount, error) {
	var rows []userCountRow
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Select("user_id, MAX(user_name) AS user_name, COUNT(*) AS order_count").
		Where("service_date >= ? AND service_date < ?", from, to).
		Where("status IN ?", statuses).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		r.log.Error("CountQualifyingByUser failed", "error", err)
		return nil, err
	}

	out := make([]domain.UserOrderCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.UserOrderCount{UserID: row.UserID, UserName: row.UserName, Count: row.OrderCount})
	}
	return out, nil
}
