package repository

import (
	"context"
	"errors"

	"github.com/Dorcaemmanuel/PeerPayChat/internal/model"
	"github.com/Dorcaemmanuel/PeerPayChat/pkg/bizerr"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatsRepository 平台全局计数器（单行表）
type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Get 读取全局计数器，首次访问时初始化单行记录
func (r *StatsRepository) Get(ctx context.Context) (*model.PlatformStats, error) {
	var stats model.PlatformStats
	err := r.db.WithContext(ctx).Where("id = ?", model.PlatformStatsID).First(&stats).Error
	if err == nil {
		return &stats, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	stats = model.PlatformStats{ID: model.PlatformStatsID}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// ensure 保证单行记录存在（事务内自增前调用）
func (r *StatsRepository) ensure(ctx context.Context, tx *gorm.DB) error {
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.PlatformStats{ID: model.PlatformStatsID}).Error
}

func (r *StatsRepository) incr(ctx context.Context, tx *gorm.DB, column string, delta int64) error {
	if tx == nil {
		tx = r.db
	}
	if err := r.ensure(ctx, tx); err != nil {
		return err
	}
	return tx.WithContext(ctx).Model(&model.PlatformStats{}).
		Where("id = ?", model.PlatformStatsID).
		Update(column, gorm.Expr(column+" + ?", delta)).Error
}

func (r *StatsRepository) AddUsers(ctx context.Context, tx *gorm.DB, delta int64) error {
	return r.incr(ctx, tx, "total_users", delta)
}

func (r *StatsRepository) AddMessages(ctx context.Context, tx *gorm.DB, delta int64) error {
	return r.incr(ctx, tx, "total_messages", delta)
}

func (r *StatsRepository) AddEarnings(ctx context.Context, tx *gorm.DB, delta int64) error {
	return r.incr(ctx, tx, "platform_earnings", delta)
}

func (r *StatsRepository) AddSpamPool(ctx context.Context, tx *gorm.DB, delta int64) error {
	return r.incr(ctx, tx, "spam_prevention_pool", delta)
}

// DeductEarnings 提取平台费时扣减累计收益，带守卫防止透支
func (r *StatsRepository) DeductEarnings(ctx context.Context, tx *gorm.DB, amount int64) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).Model(&model.PlatformStats{}).
		Where("id = ? AND platform_earnings >= ?", model.PlatformStatsID, amount).
		Update("platform_earnings", gorm.Expr("platform_earnings - ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return bizerr.ErrInsufficientFunds
	}
	return nil
}
