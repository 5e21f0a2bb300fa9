package repository

import (
	"context"

	"meal-order-service/internal/domain"
)

type SettingsRepository interface {
	Get(ctx context.Context) (domain.SubsidyPolicy, error)
	Update(ctx context.Context, policy domain.SubsidyPolicy) error
	// EnsureDefaults seeds the settings row if it does not exist yet.
	EnsureDefaults(ctx context.Context, policy domain.SubsidyPolicy) error
}
