package services

import (
	"context"
	"fmt"
	"log/slog"

	"meal-order-service/internal/domain"
	"meal-order-service/internal/logging"
	"meal-order-service/internal/repository"

	"golang.org/x/sync/errgroup"
)

// SubsidyService computes the monthly employer/employee cost split. Reports
// are derived on every request and never stored.
type SubsidyService struct {
	repo     repository.OrderRepository
	settings SettingsProvider
	log      *slog.Logger
}

func NewSubsidyService(r repository.OrderRepository, st SettingsProvider) *SubsidyService {
	return &SubsidyService{repo: r, settings: st, log: logging.New("subsidy-service")}
}

// MonthlyReport builds the report for month. workingDays overrides the
// Monday to Friday count when non-nil, e.g. to exclude public holidays.
func (s *SubsidyService) MonthlyReport(ctx context.Context, actor domain.Actor, month domain.Month, workingDays *int) (domain.SubsidyReport, error) {
	if !actor.CanReadReports() {
		return domain.SubsidyReport{}, domain.ErrUnauthorized
	}

	days := month.WorkingDays()
	if workingDays != nil {
		if *workingDays < 0 {
			return domain.SubsidyReport{}, fmt.Errorf("%w: working days must not be negative", domain.ErrInvalidInput)
		}
		days = *workingDays
	}

	from, to := month.Range()

	var (
		policy domain.SubsidyPolicy
		counts []domain.UserOrderCount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.settings.Current(gctx)
		policy = p
		return err
	})
	g.Go(func() error {
		c, err := s.repo.CountQualifyingByUser(gctx, from, to, domain.QualifyingStatuses)
		if err != nil {
			s.log.Error("count qualifying orders failed", "month", month.String(), "error", err)
			return fmt.Errorf("count orders: %w", domain.ErrStore)
		}
		counts = c
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.SubsidyReport{}, err
	}

	report := domain.BuildSubsidyReport(month, days, policy, counts)
	s.log.Info("subsidy report built",
		"month", report.Month,
		"working_days", days,
		"rows", len(report.Rows),
		"bank_total", report.Totals.BankCost.String(),
		"staff_total", report.Totals.StaffCost.String(),
	)
	return report, nil
}
