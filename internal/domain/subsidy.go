package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// QualifyingStatuses are the statuses counted by the subsidy report: every
// order the kitchen has accepted.
var QualifyingStatuses = []OrderStatus{StatusConfirmed, StatusReady, StatusPickedUp}

// UserOrderCount is one user's qualifying order count for a month.
type UserOrderCount struct {
	UserID   string
	UserName string
	Count    int
}

type SubsidyReportRow struct {
	UserID        string          `json:"userId"`
	Name          string          `json:"name"`
	OrderCount    int             `json:"qty"`
	SubsidizedQty int             `json:"subsidizedQty"`
	ExcessQty     int             `json:"excessQty"`
	BankCost      decimal.Decimal `json:"bankCost"`
	StaffCost     decimal.Decimal `json:"staffCost"`
}

type SubsidyTotals struct {
	Qty       int             `json:"qty"`
	BankCost  decimal.Decimal `json:"bankCost"`
	StaffCost decimal.Decimal `json:"staffCost"`
}

type SubsidyReport struct {
	Month               string             `json:"month"`
	WorkingDays         int                `json:"workingDays"`
	MealBasePrice       decimal.Decimal    `json:"mealBasePrice"`
	BankSubsidyPercent  int                `json:"bankSubsidyPercent"`
	StaffSubsidyPercent int                `json:"staffSubsidyPercent"`
	Rows                []SubsidyReportRow `json:"rows"`
	Totals              SubsidyTotals      `json:"totals"`
}

var hundred = decimal.NewFromInt(100)

// SplitSubsidy allocates one user's monthly meals between the employer and the
// employee. Meals up to workingDays are shared by percentage; the rest are
// billed to the employee at the full base price.
func SplitSubsidy(totalQty, workingDays int, policy SubsidyPolicy) SubsidyReportRow {
	subsidized := min(totalQty, max(workingDays, 0))
	excess := max(0, totalQty-subsidized)

	base := policy.MealBasePrice
	sub := base.Mul(decimal.NewFromInt(int64(subsidized)))
	bankCost := sub.Mul(decimal.NewFromInt(int64(policy.BankSubsidyPercent))).Div(hundred)
	staffCost := sub.Mul(decimal.NewFromInt(int64(policy.StaffSubsidyPercent))).Div(hundred).
		Add(base.Mul(decimal.NewFromInt(int64(excess))))

	return SubsidyReportRow{
		OrderCount:    totalQty,
		SubsidizedQty: subsidized,
		ExcessQty:     excess,
		BankCost:      bankCost,
		StaffCost:     staffCost,
	}
}

// BuildSubsidyReport computes the rows and totals for a month. Users without
// qualifying orders are left out and rows are ordered by name.
func BuildSubsidyReport(month Month, workingDays int, policy SubsidyPolicy, counts []UserOrderCount) SubsidyReport {
	report := SubsidyReport{
		Month:               month.String(),
		WorkingDays:         workingDays,
		MealBasePrice:       policy.MealBasePrice,
		BankSubsidyPercent:  policy.BankSubsidyPercent,
		StaffSubsidyPercent: policy.StaffSubsidyPercent,
		Rows:                []SubsidyReportRow{},
		Totals:              SubsidyTotals{BankCost: decimal.Zero, StaffCost: decimal.Zero},
	}

	for _, c := range counts {
		if c.Count <= 0 {
			continue
		}
		row := SplitSubsidy(c.Count, workingDays, policy)
		row.UserID = c.UserID
		row.Name = c.UserName
		report.Rows = append(report.Rows, row)

		report.Totals.Qty += row.OrderCount
		report.Totals.BankCost = report.Totals.BankCost.Add(row.BankCost)
		report.Totals.StaffCost = report.Totals.StaffCost.Add(row.StaffCost)
	}

	sort.SliceStable(report.Rows, func(i, j int) bool {
		if report.Rows[i].Name != report.Rows[j].Name {
			return report.Rows[i].Name < report.Rows[j].Name
		}
		return report.Rows[i].UserID < report.Rows[j].UserID
	})
	return report
}
