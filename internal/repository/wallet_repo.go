package repository

import (
	"context"
	"errors"

	"github.com/Dorcaemmanuel/PeerPayChat/internal/model"
	"github.com/Dorcaemmanuel/PeerPayChat/pkg/bizerr"
	"github.com/Dorcaemmanuel/PeerPayChat/pkg/idgen"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletRepository 资金划转协作方
// 系统里所有真正"会花掉"的钱都走钱包表；平台托管池也是一个普通钱包行。
// 划转全部在调用方的事务里执行，事务回滚时资金变动一并消失。
type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) GetByAddress(ctx context.Context, address string) (*model.Wallet, error) {
	var wallet model.Wallet
	err := r.db.WithContext(ctx).Where("address = ?", address).First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerr.ErrUserNotFound
		}
		return nil, err
	}
	return &wallet, nil
}

func (r *WalletRepository) GetOrCreate(ctx context.Context, address string) (*model.Wallet, error) {
	wallet, err := r.GetByAddress(ctx, address)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, bizerr.ErrUserNotFound) {
		return nil, err
	}

	newWallet := &model.Wallet{Address: address, Balance: 0}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "address"}},
			DoNothing: true,
		}).
		Create(newWallet).Error
	if err != nil {
		return nil, err
	}

	return r.GetByAddress(ctx, address)
}

// Deduct 扣款
//
// 【关键点】条件更新（balance >= amount）保证即使锁丢失也不会超扣，
// RowsAffected == 0 即余额不足
func (r *WalletRepository) Deduct(ctx context.Context, tx *gorm.DB, address string, amount int64) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).Model(&model.Wallet{}).
		Where("address = ? AND balance >= ?", address, amount).
		Updates(map[string]interface{}{
			"balance": gorm.Expr("balance - ?", amount),
			"version": gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return bizerr.ErrInsufficientFunds
	}
	return nil
}

// Increase 入账，目标钱包不存在时自动建行
func (r *WalletRepository) Increase(ctx context.Context, tx *gorm.DB, address string, amount int64) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).Model(&model.Wallet{}).
		Where("address = ?", address).
		Updates(map[string]interface{}{
			"balance": gorm.Expr("balance + ?", amount),
			"version": gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return tx.WithContext(ctx).Create(&model.Wallet{Address: address, Balance: amount}).Error
	}
	return nil
}

// Transfer 原子划转：扣 from、加 to、记流水，三步同事务
// 余额不足原样返回 ErrInsufficientFunds，调用方整个事务回滚
func (r *WalletRepository) Transfer(ctx context.Context, tx *gorm.DB, from, to string, amount int64, kind, remark string) error {
	if tx == nil {
		tx = r.db
	}

	if err := r.Deduct(ctx, tx, from, amount); err != nil {
		return err
	}
	if err := r.Increase(ctx, tx, to, amount); err != nil {
		return err
	}

	flow := &model.WalletFlow{
		FlowNo:      idgen.GenerateFlowNo(),
		FromAddress: from,
		ToAddress:   to,
		Amount:      amount,
		Kind:        kind,
		Remark:      remark,
	}
	return tx.WithContext(ctx).Create(flow).Error
}

func (r *WalletRepository) ListFlows(ctx context.Context, address string, limit int) ([]*model.WalletFlow, error) {
	var flows []*model.WalletFlow
	err := r.db.WithContext(ctx).
		Where("from_address = ? OR to_address = ?", address, address).
		Order("id DESC").
		Limit(limit).
		Find(&flows).Error
	return flows, err
}
