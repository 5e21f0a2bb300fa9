package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// SubsidyPolicy is the administrator-controlled configuration shared by the
// order lifecycle and the subsidy report. It is stored as a single row and
// read fresh for every evaluation.
type SubsidyPolicy struct {
	ID                  uint            `json:"-" gorm:"primaryKey"`
	MealBasePrice       decimal.Decimal `json:"mealBasePrice" gorm:"type:decimal(12,2);not null"`
	BankSubsidyPercent  int             `json:"bankSubsidyPercent" gorm:"not null"`
	StaffSubsidyPercent int             `json:"staffSubsidyPercent" gorm:"not null"`
	OrderCutoffTime     datatypes.Time  `json:"orderCutoffTime" gorm:"not null"`
	IsOrderingOpen      bool            `json:"isOrderingOpen" gorm:"not null"`
	MaintenanceMode     bool            `json:"maintenanceMode" gorm:"not null"`
	UpdatedAt           time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (SubsidyPolicy) TableName() string {
	return "settings"
}

// AcceptingOrders is false while ordering is switched off or the system is
// under maintenance.
func (p SubsidyPolicy) AcceptingOrders() bool {
	return p.IsOrderingOpen && !p.MaintenanceMode
}

func (p SubsidyPolicy) Validate() error {
	if p.MealBasePrice.IsNegative() {
		return fmt.Errorf("%w: meal base price must not be negative", ErrInvalidInput)
	}
	if p.BankSubsidyPercent < 0 || p.StaffSubsidyPercent < 0 {
		return fmt.Errorf("%w: subsidy percents must not be negative", ErrInvalidInput)
	}
	if p.BankSubsidyPercent+p.StaffSubsidyPercent != 100 {
		return fmt.Errorf("%w: bank and staff subsidy percents must sum to 100", ErrInvalidInput)
	}
	if d := time.Duration(p.OrderCutoffTime); d < 0 || d >= 24*time.Hour {
		return fmt.Errorf("%w: cutoff time must be within the day", ErrInvalidInput)
	}
	return nil
}
