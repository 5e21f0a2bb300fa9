package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"meal-order-service/internal/domain"
	"meal-order-service/internal/logging"
	"meal-order-service/internal/mocks"
	"meal-order-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

var (
	wib   = time.FixedZone("WIB", 7*3600)
	today = time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
)

type testServer struct {
	router   *gin.Engine
	repo     *mocks.MockOrderRepository
	catalog  *mocks.MockMenuCatalog
	settings *mocks.MockSettingsRepository
}

func policy() domain.SubsidyPolicy {
	return domain.SubsidyPolicy{
		MealBasePrice:       decimal.NewFromInt(40),
		BankSubsidyPercent:  60,
		StaffSubsidyPercent: 40,
		OrderCutoffTime:     datatypes.NewTime(8, 30, 0, 0),
		IsOrderingOpen:      true,
	}
}

func newTestServer(t *testing.T, hh, mm int) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &testServer{
		repo:     new(mocks.MockOrderRepository),
		catalog:  new(mocks.MockMenuCatalog),
		settings: new(mocks.MockSettingsRepository),
	}
	pub := new(mocks.MockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	s.settings.On("Get", mock.Anything).Return(policy(), nil).Maybe()

	settings := services.NewSettingsService(s.settings)
	orders := services.NewOrderService(s.repo, s.catalog, settings, pub,
		services.WithClock(func() time.Time { return time.Date(2026, 10, 16, hh, mm, 0, 0, wib) }),
		services.WithLocation(wib),
		services.WithPickupCodes(func() (string, error) { return "PICK42", nil }),
	)
	subsidy := services.NewSubsidyService(s.repo, settings)

	s.router = NewRouter(NewHandler(orders, subsidy, settings), logging.New("http-test"))
	return s
}

func (s *testServer) do(method, path, userID, role string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
		req.Header.Set("X-User-Name", "Agus")
	}
	if role != "" {
		req.Header.Set("X-User-Role", role)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) stubMenu() {
	s.catalog.On("GetPublishedMenu", mock.Anything, today).Return(&domain.DailyMenu{
		Date:  today,
		Items: []domain.DailyMenuItem{{FoodID: 1, Price: decimal.NewFromInt(15)}, {FoodID: 2, Price: decimal.NewFromInt(25)}},
	}, nil)
	s.catalog.On("GetFoodByID", mock.Anything, uint64(1)).Return(&domain.FoodItem{ID: 1, Name: "Nasi Goreng", Price: decimal.NewFromInt(15), Available: true}, nil)
	s.catalog.On("GetFoodByID", mock.Anything, uint64(2)).Return(&domain.FoodItem{ID: 2, Name: "Ayam Bakar", Price: decimal.NewFromInt(25), Available: true}, nil)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

var orderBody = PlaceOrderRequest{
	Items: []OrderItemRequest{{FoodID: 1, Quantity: 1}, {FoodID: 2, Quantity: 1}},
}

func TestPlaceOrder(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		s := newTestServer(t, 8, 0)
		s.stubMenu()
		s.repo.On("FindActiveByUserAndDate", mock.Anything, "u-1", today).Return(nil, nil)
		s.repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Order).ID = 10
		})

		w := s.do(http.MethodPost, "/v1/orders", "u-1", "", orderBody)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var got domain.Order
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, uint64(10), got.ID)
		assert.Equal(t, domain.StatusPending, got.Status)
		assert.Equal(t, "PICK42", got.PickupCode)
		assert.True(t, decimal.NewFromInt(40).Equal(got.TotalAmount))
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("cutoff passed", func(t *testing.T) {
		s := newTestServer(t, 8, 45)
		w := s.do(http.MethodPost, "/v1/orders", "u-1", "", orderBody)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "CUTOFF_PASSED", decodeError(t, w).Error)
	})

	t.Run("already ordered", func(t *testing.T) {
		s := newTestServer(t, 8, 0)
		s.stubMenu()
		s.repo.On("FindActiveByUserAndDate", mock.Anything, "u-1", today).Return(&domain.Order{ID: 3, UserID: "u-1", Status: domain.StatusPending}, nil)
		w := s.do(http.MethodPost, "/v1/orders", "u-1", "", orderBody)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "DUPLICATE_ORDER", decodeError(t, w).Error)
	})

	t.Run("item not on menu", func(t *testing.T) {
		s := newTestServer(t, 8, 0)
		s.stubMenu()
		body := PlaceOrderRequest{Items: []OrderItemRequest{{FoodID: 77, Quantity: 1}}}
		w := s.do(http.MethodPost, "/v1/orders", "u-1", "", body)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "INVALID_ITEM", decodeError(t, w).Error)
	})

	t.Run("malformed date", func(t *testing.T) {
		s := newTestServer(t, 8, 0)
		body := orderBody
		body.ServiceDate = "16/10/2026"
		w := s.do(http.MethodPost, "/v1/orders", "u-1", "", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("store failure hides detail", func(t *testing.T) {
		s := newTestServer(t, 8, 0)
		s.stubMenu()
		s.repo.On("FindActiveByUserAndDate", mock.Anything, "u-1", today).Return(nil, errors.New("dial tcp 10.0.0.5:3306: refused"))
		w := s.do(http.MethodPost, "/v1/orders", "u-1", "", orderBody)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal error", decodeError(t, w).Message)
		assert.NotContains(t, w.Body.String(), "10.0.0.5")
	})
}

func TestIdentity(t *testing.T) {
	s := newTestServer(t, 8, 0)

	w := s.do(http.MethodGet, "/v1/me/orders", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/v1/me/orders", "u-1", "chef", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/healthz", "", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetActiveOrder_None(t *testing.T) {
	s := newTestServer(t, 8, 0)
	s.repo.On("FindActiveByUserAndDate", mock.Anything, "u-1", today).Return(nil, nil)

	w := s.do(http.MethodGet, "/v1/me/orders/active", "u-1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"order":null}`, w.Body.String())
}

func TestCancelOrder(t *testing.T) {
	s := newTestServer(t, 8, 0)
	order := &domain.Order{ID: 5, UserID: "u-1", ServiceDate: today, Status: domain.StatusPending, PickupCode: "PICK42"}
	s.repo.On("FindByID", mock.Anything, uint64(5)).Return(order, nil)
	s.repo.On("UpdateStatusIf", mock.Anything, order, domain.StatusCancelled).Return(true, nil).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Order).Status = domain.StatusCancelled
	})

	w := s.do(http.MethodDelete, "/v1/orders/5", "u-2", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodDelete, "/v1/orders/abc", "u-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, "/v1/orders/5", "u-1", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"cancelled"`)
}

func TestTransitionStatus(t *testing.T) {
	s := newTestServer(t, 10, 0)
	order := &domain.Order{ID: 5, UserID: "u-1", ServiceDate: today, Status: domain.StatusConfirmed}
	s.repo.On("FindByID", mock.Anything, uint64(5)).Return(order, nil)
	s.repo.On("UpdateStatusIf", mock.Anything, order, domain.StatusReady).Return(true, nil).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Order).Status = domain.StatusReady
	})

	w := s.do(http.MethodPost, "/v1/kitchen/orders/5/status", "u-1", "staff", StatusRequest{Status: "ready"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/v1/kitchen/orders/5/status", "k-1", "kitchen", StatusRequest{Status: "picked_up"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", decodeError(t, w).Error)

	w = s.do(http.MethodPost, "/v1/kitchen/orders/5/status", "k-1", "kitchen", StatusRequest{Status: "ready"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"ready"`)

	w = s.do(http.MethodPost, "/v1/kitchen/orders/5/status", "k-1", "kitchen", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubsidyReport(t *testing.T) {
	s := newTestServer(t, 10, 0)
	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	s.repo.On("CountQualifyingByUser", mock.Anything, from, from.AddDate(0, 1, 0), domain.QualifyingStatuses).
		Return([]domain.UserOrderCount{{UserID: "u-1", UserName: "Agus", Count: 22}}, nil)

	w := s.do(http.MethodGet, "/v1/reports/subsidy?month=2026-10", "u-1", "staff", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/v1/reports/subsidy?month=October", "f-1", "finance", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/v1/reports/subsidy?month=2026-10&workingDays=x", "f-1", "finance", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/v1/reports/subsidy?month=2026-10&workingDays=20", "f-1", "finance", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report domain.SubsidyReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 20, report.WorkingDays)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, 22, report.Rows[0].OrderCount)
	assert.True(t, decimal.NewFromInt(480).Equal(report.Rows[0].BankCost))
	assert.True(t, decimal.NewFromInt(400).Equal(report.Rows[0].StaffCost))
}

func TestUpdateSettings(t *testing.T) {
	s := newTestServer(t, 10, 0)
	req := SettingsRequest{
		MealBasePrice:       decimal.NewFromInt(45),
		BankSubsidyPercent:  50,
		StaffSubsidyPercent: 50,
		OrderCutoffTime:     "09:00",
		IsOrderingOpen:      true,
	}
	s.settings.On("Update", mock.Anything, mock.MatchedBy(func(p domain.SubsidyPolicy) bool {
		return p.OrderCutoffTime == datatypes.NewTime(9, 0, 0, 0) && p.BankSubsidyPercent == 50
	})).Return(nil)

	w := s.do(http.MethodPut, "/v1/admin/settings", "f-1", "finance", req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	bad := req
	bad.StaffSubsidyPercent = 10
	w = s.do(http.MethodPut, "/v1/admin/settings", "a-1", "admin", bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	bad = req
	bad.OrderCutoffTime = "nine"
	w = s.do(http.MethodPut, "/v1/admin/settings", "a-1", "admin", bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/v1/admin/settings", "a-1", "admin", req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	s.settings.AssertCalled(t, "Update", mock.Anything, mock.Anything)
}
