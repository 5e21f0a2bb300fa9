package gormrepo

import (
	"context"
	"errors"
	"log/slog"

	"meal-order-service/internal/domain"
	"meal-order-service/internal/logging"
	"meal-order-service/internal/repository"

	"gorm.io/gorm"
)

const settingsRowID = 1

type settingsRepo struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewSettingsRepository(db *gorm.DB) repository.SettingsRepository {
	return &settingsRepo{db: db, log: logging.New("settings-repo")}
}

func (r *settingsRepo) Get(ctx context.Context) (domain.SubsidyPolicy, error) {
	var p domain.SubsidyPolicy
	if err := r.db.WithContext(ctx).First(&p, settingsRowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.SubsidyPolicy{}, domain.ErrNotFound
		}
		r.log.Error("settings read failed", "error", err)
		return domain.SubsidyPolicy{}, err
	}
	return p, nil
}

func (r *settingsRepo) Update(ctx context.Context, policy domain.SubsidyPolicy) error {
	policy.ID = settingsRowID
	if err := r.db.WithContext(ctx).Save(&policy).Error; err != nil {
		r.log.Error("settings update failed", "error", err)
		return err
	}
	return nil
}

func (r *settingsRepo) EnsureDefaults(ctx context.Context, policy domain.SubsidyPolicy) error {
	_, err := r.Get(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	policy.ID = settingsRowID
	if err := r.db.WithContext(ctx).Create(&policy).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		r.log.Error("settings seed failed", "error", err)
		return err
	}
	r.log.Info("settings seeded from defaults")
	return nil
}
