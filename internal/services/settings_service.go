package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"meal-order-service/internal/domain"
	"meal-order-service/internal/logging"
	"meal-order-service/internal/repository"
)

type SettingsService struct {
	repo repository.SettingsRepository
	log  *slog.Logger
}

func NewSettingsService(r repository.SettingsRepository) *SettingsService {
	return &SettingsService{repo: r, log: logging.New("settings-service")}
}

// Current reads the settings row on every call.
func (s *SettingsService) Current(ctx context.Context) (domain.SubsidyPolicy, error) {
	p, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.Error("settings row missing")
		}
		return domain.SubsidyPolicy{}, fmt.Errorf("read settings: %w", domain.ErrStore)
	}
	return p, nil
}

func (s *SettingsService) Update(ctx context.Context, actor domain.Actor, policy domain.SubsidyPolicy) (domain.SubsidyPolicy, error) {
	if !actor.IsAdmin() {
		return domain.SubsidyPolicy{}, domain.ErrUnauthorized
	}
	if err := policy.Validate(); err != nil {
		return domain.SubsidyPolicy{}, err
	}
	if err := s.repo.Update(ctx, policy); err != nil {
		return domain.SubsidyPolicy{}, fmt.Errorf("update settings: %w", domain.ErrStore)
	}

	s.log.Info("settings updated",
		"by", actor.UserID,
		"meal_base_price", policy.MealBasePrice.String(),
		"bank_percent", policy.BankSubsidyPercent,
		"staff_percent", policy.StaffSubsidyPercent,
		"ordering_open", policy.IsOrderingOpen,
		"maintenance", policy.MaintenanceMode,
	)
	return s.Current(ctx)
}
