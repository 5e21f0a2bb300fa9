package services

import (
	"context"

	"meal-order-service/internal/domain"
)

// SettingsProvider returns the current policy. Implementations must not
// cache across calls: an administrator's change applies to the next request.
type SettingsProvider interface {
	Current(ctx context.Context) (domain.SubsidyPolicy, error)
}

var _ SettingsProvider = (*SettingsService)(nil)
