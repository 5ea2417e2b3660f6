package repository

import (
	"context"
	"errors"

	"github.com/Dorcaemmanuel/PeerPayChat/internal/model"
	"github.com/Dorcaemmanuel/PeerPayChat/pkg/bizerr"

	"gorm.io/gorm"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, tx *gorm.DB, account *model.Account) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(account).Error
}

func (r *AccountRepository) GetByAddress(ctx context.Context, address string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).Where("address = ?", address).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerr.ErrUserNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerr.ErrUserNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) Exists(ctx context.Context, address string) (bool, error) {
	return r.exists(ctx, r.db, address)
}

// exists 在指定连接上做存在性检查
// 事务内调用必须传 tx：用基础连接池会读到事务外的状态，
// 单连接的数据库上还会和未提交的事务互相等死
func (r *AccountRepository) exists(ctx context.Context, tx *gorm.DB, address string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&model.Account{}).
		Where("address = ?", address).Count(&count).Error
	return count > 0, err
}

func (r *AccountRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// CreditReceived 入账：累计收款增加（同时抬高可提现余额）
func (r *AccountRepository) CreditReceived(ctx context.Context, tx *gorm.DB, address string, amount int64) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).Model(&model.Account{}).
		Where("address = ?", address).
		Update("total_received", gorm.Expr("total_received + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return bizerr.ErrUserNotFound
	}
	return nil
}

// DebitReceived 提现扣减可提现余额
//
// 【关键点】条件更新带余额守卫，余额不足时一行都不会改，
// 靠 RowsAffected 区分"账户不存在"和"余额不足"
func (r *AccountRepository) DebitReceived(ctx context.Context, tx *gorm.DB, address string, amount int64) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).Model(&model.Account{}).
		Where("address = ? AND total_received >= ?", address, amount).
		Update("total_received", gorm.Expr("total_received - ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		exists, err := r.exists(ctx, tx, address)
		if err != nil {
			return err
		}
		if !exists {
			return bizerr.ErrUserNotFound
		}
		return bizerr.ErrInsufficientFunds
	}
	return nil
}

// RecordSent 记录一次发送：累计付款和消息条数同步增加
func (r *AccountRepository) RecordSent(ctx context.Context, tx *gorm.DB, address string, amount int64) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).Model(&model.Account{}).
		Where("address = ?", address).
		Updates(map[string]interface{}{
			"total_sent":    gorm.Expr("total_sent + ?", amount),
			"message_count": gorm.Expr("message_count + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return bizerr.ErrUserNotFound
	}
	return nil
}

// BumpActivity 更新最近活跃时刻
func (r *AccountRepository) BumpActivity(ctx context.Context, tx *gorm.DB, address string, tick int64) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Model(&model.Account{}).
		Where("address = ?", address).
		Update("last_active", tick).Error
}

// UpdateProfile 更新展示资料（简单字段读写，无业务校验）
func (r *AccountRepository) UpdateProfile(ctx context.Context, address, displayName, bio, avatarURL string) error {
	result := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("address = ?", address).
		Updates(map[string]interface{}{
			"display_name": displayName,
			"bio":          bio,
			"avatar_url":   avatarURL,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return bizerr.ErrUserNotFound
	}
	return nil
}

func (r *AccountRepository) SetPremium(ctx context.Context, address string, premium bool) error {
	result := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("address = ?", address).
		Update("is_premium", premium)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return bizerr.ErrUserNotFound
	}
	return nil
}
