package repository

import (
	"context"
	"errors"

	"github.com/Dorcaemmanuel/PeerPayChat/internal/model"

	"gorm.io/gorm"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Create(ctx context.Context, tx *gorm.DB, settings *model.UserSettings) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(settings).Error
}

// Get 读取用户设置；没有记录时返回默认值（允许陌生人、不强制付费）
func (r *SettingsRepository) Get(ctx context.Context, address string) (*model.UserSettings, error) {
	var settings model.UserSettings
	err := r.db.WithContext(ctx).Where("address = ?", address).First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.UserSettings{
				Address:               address,
				AllowStrangerMessages: true,
				NotificationsEnabled:  true,
			}, nil
		}
		return nil, err
	}
	return &settings, nil
}

func (r *SettingsRepository) Save(ctx context.Context, settings *model.UserSettings) error {
	result := r.db.WithContext(ctx).Model(&model.UserSettings{}).
		Where("address = ?", settings.Address).
		Updates(map[string]interface{}{
			"allow_stranger_messages":        settings.AllowStrangerMessages,
			"require_payment_from_strangers": settings.RequirePaymentFromStrangers,
			"notifications_enabled":          settings.NotificationsEnabled,
			"auto_delete_messages":           settings.AutoDeleteMessages,
			"message_retention_days":         settings.MessageRetentionDays,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.db.WithContext(ctx).Create(settings).Error
	}
	return nil
}
