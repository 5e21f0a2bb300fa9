package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type FoodCategory string

const (
	CategoryMain  FoodCategory = "main"
	CategorySide  FoodCategory = "side"
	CategoryDrink FoodCategory = "drink"
	CategorySnack FoodCategory = "snack"
)

// FoodItem is owned by the menu catalog and read-only here.
type FoodItem struct {
	ID        uint64          `json:"id"`
	Name      string          `json:"name"`
	Category  FoodCategory    `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Available bool            `json:"available"`
	Archived  bool            `json:"archived"`
}

func (f *FoodItem) Orderable() bool {
	return f.Available && !f.Archived
}

type DailyMenuItem struct {
	FoodID  uint64          `json:"foodId"`
	Price   decimal.Decimal `json:"price"`
	SoldOut bool            `json:"soldOut"`
}

// DailyMenu is the menu published for one calendar date.
type DailyMenu struct {
	Date  time.Time       `json:"date"`
	Items []DailyMenuItem `json:"items"`
}

// Offers returns the menu entry for foodID, or nil when it was not published.
func (m *DailyMenu) Offers(foodID uint64) *DailyMenuItem {
	if m == nil {
		return nil
	}
	for i := range m.Items {
		if m.Items[i].FoodID == foodID {
			return &m.Items[i]
		}
	}
	return nil
}
