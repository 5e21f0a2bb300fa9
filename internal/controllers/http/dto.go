package http

import (
	"github.com/shopspring/decimal"
)

type OrderItemRequest struct {
	FoodID   uint64 `json:"foodId" binding:"required"`
	Quantity int    `json:"quantity"`
}

type PlaceOrderRequest struct {
	// ServiceDate is "YYYY-MM-DD"; empty means today.
	ServiceDate string             `json:"serviceDate"`
	Items       []OrderItemRequest `json:"items" binding:"dive"`
	Note        string             `json:"note" binding:"max=500"`
	PreOrder    bool               `json:"preOrder"`
}

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type SettingsRequest struct {
	MealBasePrice       decimal.Decimal `json:"mealBasePrice"`
	BankSubsidyPercent  int             `json:"bankSubsidyPercent"`
	StaffSubsidyPercent int             `json:"staffSubsidyPercent"`
	OrderCutoffTime     string          `json:"orderCutoffTime" binding:"required"`
	IsOrderingOpen      bool            `json:"isOrderingOpen"`
	MaintenanceMode     bool            `json:"maintenanceMode"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
