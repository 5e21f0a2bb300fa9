package services

import (
	"testing"
	"time"

	"meal-order-service/internal/domain"
	"meal-order-service/internal/mocks"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"gorm.io/datatypes"
)

var (
	testLoc   = time.FixedZone("WIB", 7*3600)
	testToday = time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
)

const (
	FoodNasiGoreng = uint64(1)
	FoodAyamBakar  = uint64(2)
	FoodEsTeh      = uint64(3)
	FoodArchived   = uint64(4)
)

// clockAt returns a clock fixed at hh:mm on the test day in the test zone.
func clockAt(hh, mm int) func() time.Time {
	return func() time.Time { return time.Date(2026, 10, 16, hh, mm, 0, 0, testLoc) }
}

func testPolicy() domain.SubsidyPolicy {
	return domain.SubsidyPolicy{
		MealBasePrice:       decimal.NewFromInt(40),
		BankSubsidyPercent:  60,
		StaffSubsidyPercent: 40,
		OrderCutoffTime:     datatypes.NewTime(8, 30, 0, 0),
		IsOrderingOpen:      true,
	}
}

func testMenu(date time.Time) *domain.DailyMenu {
	return &domain.DailyMenu{
		Date: date,
		Items: []domain.DailyMenuItem{
			{FoodID: FoodNasiGoreng, Price: decimal.NewFromInt(15)},
			{FoodID: FoodAyamBakar, Price: decimal.NewFromInt(25)},
			{FoodID: FoodEsTeh, Price: decimal.NewFromInt(5), SoldOut: true},
			{FoodID: FoodArchived, Price: decimal.NewFromInt(10)},
		},
	}
}

func CreateMockFood(id uint64, name string, price int64) *domain.FoodItem {
	return &domain.FoodItem{
		ID:        id,
		Name:      name,
		Category:  domain.CategoryMain,
		Price:     decimal.NewFromInt(price),
		Available: true,
	}
}

func CreateMockOrder(id uint64, userID string, date time.Time, status domain.OrderStatus) *domain.Order {
	items := []domain.OrderItem{
		{FoodID: FoodNasiGoreng, Name: "Nasi Goreng", UnitPrice: decimal.NewFromInt(15), Quantity: 1},
		{FoodID: FoodAyamBakar, Name: "Ayam Bakar", UnitPrice: decimal.NewFromInt(25), Quantity: 1},
	}
	return &domain.Order{
		ID:          id,
		UserID:      userID,
		UserName:    "Agus",
		ServiceDate: date,
		Items:       items,
		TotalAmount: domain.TotalOf(items),
		Status:      status,
		PickupCode:  "ABC234",
		ActiveKey:   domain.ActiveKeyFor(userID, date, status),
		CreatedAt:   time.Now(),
	}
}

func staff() domain.Actor   { return domain.Actor{UserID: "u-1", Name: "Agus", Role: domain.RoleStaff} }
func kitchen() domain.Actor { return domain.Actor{UserID: "k-1", Name: "Kitchen", Role: domain.RoleKitchen} }
func admin() domain.Actor   { return domain.Actor{UserID: "a-1", Name: "Admin", Role: domain.RoleAdmin} }
func finance() domain.Actor { return domain.Actor{UserID: "f-1", Name: "Finance", Role: domain.RoleFinance} }

type fixture struct {
	repo     *mocks.MockOrderRepository
	catalog  *mocks.MockMenuCatalog
	settings *mocks.MockSettingsProvider
	pub      *mocks.MockPublisher
	svc      *OrderService
}

func newFixture(t *testing.T, now func() time.Time, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		repo:     new(mocks.MockOrderRepository),
		catalog:  new(mocks.MockMenuCatalog),
		settings: new(mocks.MockSettingsProvider),
		pub:      new(mocks.MockPublisher),
	}
	f.pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	opts = append([]Option{
		WithClock(now),
		WithLocation(testLoc),
		WithPickupCodes(func() (string, error) { return "ABC234", nil }),
	}, opts...)
	f.svc = NewOrderService(f.repo, f.catalog, f.settings, f.pub, opts...)
	return f
}

// stubCatalog publishes testMenu for date and answers the standard foods.
func (f *fixture) stubCatalog(date time.Time) {
	f.catalog.On("GetPublishedMenu", mock.Anything, date).Return(testMenu(date), nil).Maybe()
	f.catalog.On("GetFoodByID", mock.Anything, FoodNasiGoreng).Return(CreateMockFood(FoodNasiGoreng, "Nasi Goreng", 15), nil).Maybe()
	f.catalog.On("GetFoodByID", mock.Anything, FoodAyamBakar).Return(CreateMockFood(FoodAyamBakar, "Ayam Bakar", 25), nil).Maybe()
	archived := CreateMockFood(FoodArchived, "Old Special", 10)
	archived.Archived = true
	f.catalog.On("GetFoodByID", mock.Anything, FoodArchived).Return(archived, nil).Maybe()
}

// applyStatus makes UpdateStatusIf behave like the store on success.
func applyStatus(args mock.Arguments) {
	order := args.Get(1).(*domain.Order)
	order.Status = args.Get(2).(domain.OrderStatus)
	order.ActiveKey = domain.ActiveKeyFor(order.UserID, order.ServiceDate, order.Status)
}
