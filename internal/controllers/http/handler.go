package http

import (
	"net/http"
	"strconv"
	"time"

	"meal-order-service/internal/controllers/http/middleware"
	"meal-order-service/internal/domain"
	"meal-order-service/internal/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	orders   *services.OrderService
	subsidy  *services.SubsidyService
	settings *services.SettingsService
}

func NewHandler(o *services.OrderService, s *services.SubsidyService, st *services.SettingsService) *Handler {
	return &Handler{orders: o, subsidy: s, settings: st}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	v1 := r.Group("/v1", middleware.Identity())

	v1.POST("/orders", h.PlaceOrder)
	v1.GET("/orders/:id", h.GetOrder)
	v1.DELETE("/orders/:id", h.CancelOrder)

	v1.GET("/me/orders", h.ListMyOrders)
	v1.GET("/me/orders/active", h.GetActiveOrder)

	v1.GET("/kitchen/orders", h.KitchenBoard)
	v1.GET("/kitchen/pickup/:code", h.GetByPickupCode)
	v1.POST("/kitchen/orders/:id/status", h.TransitionStatus)

	v1.POST("/admin/orders/:id/reopen", h.ReopenOrder)
	v1.PUT("/admin/settings", h.UpdateSettings)

	v1.GET("/reports/subsidy", h.SubsidyReport)
	v1.GET("/settings", h.GetSettings)
}

func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	date, ok := h.dateOrToday(c, req.ServiceDate)
	if !ok {
		return
	}

	in := services.PlaceOrderInput{
		ServiceDate: date,
		Note:        req.Note,
		PreOrder:    req.PreOrder,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, services.ItemRequest{FoodID: it.FoodID, Quantity: it.Quantity})
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), middleware.ActorFrom(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) CancelOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	order, err := h.orders.CancelOrder(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) GetActiveOrder(c *gin.Context) {
	date, ok := h.dateOrToday(c, c.Query("date"))
	if !ok {
		return
	}
	order, err := h.orders.GetActiveOrder(c.Request.Context(), middleware.ActorFrom(c).UserID, date)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *Handler) ListMyOrders(c *gin.Context) {
	var from, to time.Time
	for _, p := range []struct {
		key string
		dst *time.Time
	}{{"from", &from}, {"to", &to}} {
		if v := c.Query(p.key); v != "" {
			d, err := domain.ParseServiceDate(v)
			if err != nil {
				badRequest(c, err.Error())
				return
			}
			*p.dst = d
		}
	}

	orders, err := h.orders.ListMyOrders(c.Request.Context(), middleware.ActorFrom(c), from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handler) KitchenBoard(c *gin.Context) {
	date, ok := h.dateOrToday(c, c.Query("date"))
	if !ok {
		return
	}
	orders, err := h.orders.KitchenBoard(c.Request.Context(), middleware.ActorFrom(c), date, domain.OrderStatus(c.Query("status")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date.Format(domain.DateLayout), "orders": orders})
}

func (h *Handler) GetByPickupCode(c *gin.Context) {
	order, err := h.orders.GetOrderByPickupCode(c.Request.Context(), middleware.ActorFrom(c), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) TransitionStatus(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	order, err := h.orders.TransitionStatus(c.Request.Context(), middleware.ActorFrom(c), id, domain.OrderStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) ReopenOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	order, err := h.orders.ReopenOrder(c.Request.Context(), middleware.ActorFrom(c), id, domain.OrderStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) SubsidyReport(c *gin.Context) {
	month, err := domain.ParseMonth(c.Query("month"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	var override *int
	if v := c.Query("workingDays"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			badRequest(c, "workingDays must be an integer")
			return
		}
		override = &n
	}

	report, err := h.subsidy.MonthlyReport(c.Request.Context(), middleware.ActorFrom(c), month, override)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) GetSettings(c *gin.Context) {
	p, err := h.settings.Current(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	cutoff, err := domain.ParseClock(req.OrderCutoffTime)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	p, err := h.settings.Update(c.Request.Context(), middleware.ActorFrom(c), domain.SubsidyPolicy{
		MealBasePrice:       req.MealBasePrice,
		BankSubsidyPercent:  req.BankSubsidyPercent,
		StaffSubsidyPercent: req.StaffSubsidyPercent,
		OrderCutoffTime:     cutoff,
		IsOrderingOpen:      req.IsOrderingOpen,
		MaintenanceMode:     req.MaintenanceMode,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) dateOrToday(c *gin.Context, s string) (time.Time, bool) {
	if s == "" {
		return h.orders.Today(), true
	}
	d, err := domain.ParseServiceDate(s)
	if err != nil {
		badRequest(c, err.Error())
		return time.Time{}, false
	}
	return d, true
}

func orderID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid order id")
		return 0, false
	}
	return id, true
}
