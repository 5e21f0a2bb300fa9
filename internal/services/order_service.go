package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"meal-order-service/internal/domain"
	"meal-order-service/internal/infra"
	rabbit "meal-order-service/internal/infra/rabbitmq"
	"meal-order-service/internal/logging"
	"meal-order-service/internal/metrics"
	"meal-order-service/internal/repository"
)

const maxPickupCodeAttempts = 5

// OrderService is the gatekeeper for every state change on an order: the
// ordering window, the one-order-per-day rule, the item snapshot and the
// kitchen status workflow.
type OrderService struct {
	repo      repository.OrderRepository
	catalog   infra.MenuCatalog
	settings  SettingsProvider
	publisher rabbit.PublisherInterface

	initial domain.InitialStatusPolicy
	loc     *time.Location
	now     func() time.Time
	newCode func() (string, error)
	log     *slog.Logger
}

type Option func(*OrderService)

func WithClock(now func() time.Time) Option {
	return func(s *OrderService) { s.now = now }
}

// WithLocation sets the timezone in which service dates and cutoffs are read.
func WithLocation(loc *time.Location) Option {
	return func(s *OrderService) { s.loc = loc }
}

func WithInitialStatus(p domain.InitialStatusPolicy) Option {
	return func(s *OrderService) { s.initial = p }
}

func WithPickupCodes(gen func() (string, error)) Option {
	return func(s *OrderService) { s.newCode = gen }
}

func NewOrderService(r repository.OrderRepository, c infra.MenuCatalog, st SettingsProvider, pub rabbit.PublisherInterface, opts ...Option) *OrderService {
	s := &OrderService{
		repo:      r,
		catalog:   c,
		settings:  st,
		publisher: pub,
		initial:   domain.DefaultInitialStatusPolicy(),
		loc:       time.Local,
		now:       time.Now,
		newCode:   NewPickupCode,
		log:       logging.New("order-service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type ItemRequest struct {
	FoodID   uint64
	Quantity int
}

type PlaceOrderInput struct {
	ServiceDate time.Time
	Items       []ItemRequest
	Note        string
	// PreOrder marks the pre-approved (combo) submission path.
	PreOrder bool
}

func (u *OrderService) PlaceOrder(ctx context.Context, actor domain.Actor, in PlaceOrderInput) (*domain.Order, error) {
	if actor.UserID == "" {
		return nil, domain.ErrUnauthorized
	}

	policy, err := u.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	if !policy.AcceptingOrders() {
		return nil, u.reject("ordering_closed", domain.ErrOrderingClosed)
	}

	y, m, d := in.ServiceDate.Date()
	serviceDate := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if !domain.IsBeforeCutoff(serviceDate, u.now(), policy.OrderCutoffTime, u.loc) {
		return nil, u.reject("cutoff_passed", domain.ErrCutoffPassed)
	}
	// Pre-orders start out confirmed, so they are only taken for later days.
	if in.PreOrder && !domain.ServiceDay(u.now(), u.loc).Before(serviceDate) {
		return nil, u.reject("invalid_preorder", fmt.Errorf("%w: pre-orders must be for a future service date", domain.ErrInvalidInput))
	}

	items, err := u.snapshotItems(ctx, serviceDate, in.Items)
	if err != nil {
		return nil, err
	}

	existing, err := u.repo.FindActiveByUserAndDate(ctx, actor.UserID, serviceDate)
	if err != nil {
		return nil, u.storeErr("find active order", err)
	}
	if existing != nil {
		return nil, u.reject("duplicate_order", domain.ErrDuplicateOrder)
	}

	order := &domain.Order{
		UserID:      actor.UserID,
		UserName:    actor.Name,
		ServiceDate: serviceDate,
		Items:       items,
		TotalAmount: domain.TotalOf(items),
		Status:      u.initial.For(in.PreOrder),
		Note:        in.Note,
		CreatedAt:   u.now(),
	}

	if err := u.save(ctx, order); err != nil {
		return nil, err
	}

	metrics.OrdersPlaced.WithLabelValues(string(order.Status)).Inc()
	u.log.Info("order placed",
		"order_id", order.ID,
		"user_id", order.UserID,
		"service_date", serviceDate.Format(domain.DateLayout),
		"status", order.Status,
		"total", order.TotalAmount.String(),
	)

	go u.publish(domain.EventOrderPlaced, domain.OrderPlacedEvent{
		OrderID:     order.ID,
		UserID:      order.UserID,
		ServiceDate: serviceDate.Format(domain.DateLayout),
		TotalAmount: order.TotalAmount,
		Status:      order.Status,
		PickupCode:  order.PickupCode,
		CreatedAt:   order.CreatedAt,
	})

	return order, nil
}

// save inserts the order, drawing a new pickup code whenever the previous one
// was already taken.
func (u *OrderService) save(ctx context.Context, order *domain.Order) error {
	for attempt := 0; attempt < maxPickupCodeAttempts; attempt++ {
		code, err := u.newCode()
		if err != nil {
			return fmt.Errorf("generate pickup code: %w", err)
		}
		order.PickupCode = code

		err = u.repo.Save(ctx, order)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, repository.ErrPickupCodeTaken):
			continue
		case errors.Is(err, domain.ErrDuplicateOrder):
			return u.reject("duplicate_order", domain.ErrDuplicateOrder)
		default:
			return u.storeErr("save order", err)
		}
	}
	return u.storeErr("save order", errors.New("no free pickup code"))
}

func (u *OrderService) snapshotItems(ctx context.Context, serviceDate time.Time, reqs []ItemRequest) ([]domain.OrderItem, error) {
	if len(reqs) == 0 {
		return nil, u.reject("invalid_item", fmt.Errorf("%w: order has no items", domain.ErrInvalidItem))
	}

	menu, err := u.catalog.GetPublishedMenu(ctx, serviceDate)
	if err != nil {
		return nil, u.storeErr("load menu", err)
	}
	if menu == nil {
		return nil, u.reject("menu_not_found", fmt.Errorf("%w: no menu published for %s", domain.ErrNotFound, serviceDate.Format(domain.DateLayout)))
	}

	items := make([]domain.OrderItem, 0, len(reqs))
	for _, req := range reqs {
		if req.Quantity < 1 {
			return nil, u.reject("invalid_item", fmt.Errorf("%w: quantity for food %d must be positive", domain.ErrInvalidItem, req.FoodID))
		}
		entry := menu.Offers(req.FoodID)
		if entry == nil {
			return nil, u.reject("invalid_item", fmt.Errorf("%w: food %d is not on the menu", domain.ErrInvalidItem, req.FoodID))
		}
		if entry.SoldOut {
			return nil, u.reject("invalid_item", fmt.Errorf("%w: food %d is sold out", domain.ErrInvalidItem, req.FoodID))
		}

		food, err := u.catalog.GetFoodByID(ctx, req.FoodID)
		if err != nil {
			return nil, u.storeErr("load food", err)
		}
		if food == nil {
			return nil, u.reject("invalid_item", fmt.Errorf("%w: food %d does not exist", domain.ErrInvalidItem, req.FoodID))
		}
		if !food.Orderable() {
			return nil, u.reject("invalid_item", fmt.Errorf("%w: food %d is unavailable", domain.ErrInvalidItem, req.FoodID))
		}

		items = append(items, domain.OrderItem{
			FoodID:    food.ID,
			Name:      food.Name,
			UnitPrice: food.Price,
			Quantity:  req.Quantity,
		})
	}
	return items, nil
}

// CancelOrder lets the owner (or an admin) withdraw a pending order before
// the day's cutoff, or a confirmed pre-order before its service date's
// cutoff. The row is kept for reporting.
func (u *OrderService) CancelOrder(ctx context.Context, actor domain.Actor, orderID uint64) (*domain.Order, error) {
	order, err := u.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.BelongsTo(actor.UserID) && !actor.IsAdmin() {
		return nil, domain.ErrUnauthorized
	}
	if order.Status != domain.StatusPending && order.Status != domain.StatusConfirmed {
		return nil, u.reject("not_cancellable", domain.ErrNotCancellable)
	}

	policy, err := u.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	now := u.now()
	if !domain.IsBeforeCutoff(order.ServiceDate, now, policy.OrderCutoffTime, u.loc) {
		return nil, u.reject("cutoff_passed", domain.ErrCutoffPassed)
	}
	if order.Status == domain.StatusConfirmed && !domain.ServiceDay(now, u.loc).Before(order.ServiceDate) {
		return nil, u.reject("not_cancellable", domain.ErrNotCancellable)
	}

	if err := u.apply(ctx, actor, order, domain.StatusCancelled); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			return nil, u.reject("not_cancellable", domain.ErrNotCancellable)
		}
		return nil, err
	}
	return order, nil
}

// TransitionStatus moves an order one step along the kitchen workflow.
func (u *OrderService) TransitionStatus(ctx context.Context, actor domain.Actor, orderID uint64, target domain.OrderStatus) (*domain.Order, error) {
	if !actor.CanRunKitchen() {
		return nil, domain.ErrUnauthorized
	}
	order, err := u.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(order.Status, target) {
		return nil, u.reject("invalid_transition", fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, order.Status, target))
	}
	if err := u.apply(ctx, actor, order, target); err != nil {
		return nil, err
	}
	return order, nil
}

// ReopenOrder is the administrative override that brings a picked up or
// cancelled order back to pending or ready.
func (u *OrderService) ReopenOrder(ctx context.Context, actor domain.Actor, orderID uint64, target domain.OrderStatus) (*domain.Order, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrUnauthorized
	}
	order, err := u.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !domain.CanReopen(order.Status, target) {
		return nil, u.reject("invalid_transition", fmt.Errorf("%w: cannot reopen %s to %s", domain.ErrInvalidTransition, order.Status, target))
	}
	if err := u.apply(ctx, actor, order, target); err != nil {
		return nil, err
	}
	return order, nil
}

// apply writes the status change as a conditional update so that an actor
// working from a stale read loses instead of overwriting.
func (u *OrderService) apply(ctx context.Context, actor domain.Actor, order *domain.Order, to domain.OrderStatus) error {
	from := order.Status
	ok, err := u.repo.UpdateStatusIf(ctx, order, to)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateOrder) {
			return u.reject("duplicate_order", domain.ErrDuplicateOrder)
		}
		return u.storeErr("update status", err)
	}
	if !ok {
		return u.reject("stale_status", fmt.Errorf("%w: order %d is no longer %s", domain.ErrInvalidTransition, order.ID, from))
	}

	metrics.OrderTransitions.WithLabelValues(string(from), string(to)).Inc()
	u.log.Info("order status changed", "order_id", order.ID, "from", from, "to", to, "by", actor.UserID)

	evt := domain.EventOrderStatusChanged
	if to == domain.StatusCancelled {
		evt = domain.EventOrderCancelled
	}
	go u.publish(evt, domain.OrderStatusChangedEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		From:       from,
		To:         to,
		ChangedBy:  actor.UserID,
		ChangedAt:  u.now(),
		PickupCode: order.PickupCode,
	})
	return nil
}

// GetActiveOrder returns the order occupying the user's slot for the date,
// or nil.
func (u *OrderService) GetActiveOrder(ctx context.Context, userID string, date time.Time) (*domain.Order, error) {
	o, err := u.repo.FindActiveByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, u.storeErr("find active order", err)
	}
	return o, nil
}

func (u *OrderService) GetOrder(ctx context.Context, actor domain.Actor, orderID uint64) (*domain.Order, error) {
	order, err := u.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.BelongsTo(actor.UserID) && !actor.CanRunKitchen() {
		return nil, domain.ErrUnauthorized
	}
	return order, nil
}

func (u *OrderService) GetOrderByPickupCode(ctx context.Context, actor domain.Actor, code string) (*domain.Order, error) {
	if !actor.CanRunKitchen() {
		return nil, domain.ErrUnauthorized
	}
	o, err := u.repo.FindByPickupCode(ctx, code)
	if err != nil {
		return nil, u.storeErr("find by pickup code", err)
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (u *OrderService) ListMyOrders(ctx context.Context, actor domain.Actor, from, to time.Time) ([]domain.Order, error) {
	if actor.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	out, err := u.repo.ListByUser(ctx, actor.UserID, from, to)
	if err != nil {
		return nil, u.storeErr("list orders", err)
	}
	return out, nil
}

// KitchenBoard lists the orders for a service date, optionally filtered by
// status.
func (u *OrderService) KitchenBoard(ctx context.Context, actor domain.Actor, date time.Time, status domain.OrderStatus) ([]domain.Order, error) {
	if !actor.CanRunKitchen() {
		return nil, domain.ErrUnauthorized
	}
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: status %q", domain.ErrInvalidInput, status)
	}
	out, err := u.repo.ListByServiceDate(ctx, date, status)
	if err != nil {
		return nil, u.storeErr("list kitchen orders", err)
	}
	return out, nil
}

// Today is the current service date in the configured timezone.
func (u *OrderService) Today() time.Time {
	return domain.ServiceDay(u.now(), u.loc)
}

func (u *OrderService) loadOrder(ctx context.Context, id uint64) (*domain.Order, error) {
	o, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, u.storeErr("find order", err)
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (u *OrderService) reject(reason string, err error) error {
	metrics.OrderRejections.WithLabelValues(reason).Inc()
	return err
}

func (u *OrderService) storeErr(op string, err error) error {
	u.log.Error(op+" failed", "error", err)
	return fmt.Errorf("%s: %w", op, domain.ErrStore)
}

func (u *OrderService) publish(pattern string, evt any) {
	if err := u.publisher.Publish(context.Background(), pattern, evt); err != nil {
		u.log.Warn("event publish failed", "pattern", pattern, "error", err)
	}
}
