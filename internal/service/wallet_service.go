package service

import (
	"context"

	"github.com/Dorcaemmanuel/PeerPayChat/internal/model"
	"github.com/Dorcaemmanuel/PeerPayChat/internal/repository"
	"github.com/Dorcaemmanuel/PeerPayChat/pkg/bizerr"
	"github.com/Dorcaemmanuel/PeerPayChat/pkg/idgen"

	"gorm.io/gorm"
)

// 外部充值来源的记账地址
const depositSource = "external"

// WalletService 钱包余额查询与充值入口
// （充值是简化版，实际应该走支付渠道回调）
type WalletService struct {
	db         *gorm.DB
	walletRepo *repository.WalletRepository
}

func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{
		db:         db,
		walletRepo: repository.NewWalletRepository(db),
	}
}

func (s *WalletService) GetBalance(ctx context.Context, address string) (int64, error) {
	wallet, err := s.walletRepo.GetOrCreate(ctx, address)
	if err != nil {
		return 0, err
	}
	return wallet.Balance, nil
}

func (s *WalletService) Deposit(ctx context.Context, address string, amount int64) error {
	if amount <= 0 {
		return bizerr.ErrInvalidPayment
	}

	if _, err := s.walletRepo.GetOrCreate(ctx, address); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.walletRepo.Increase(ctx, tx, address, amount); err != nil {
			return err
		}
		flow := &model.WalletFlow{
			FlowNo:      idgen.GenerateFlowNo(),
			FromAddress: depositSource,
			ToAddress:   address,
			Amount:      amount,
			Kind:        model.FlowKindDeposit,
			Remark:      "充值入账",
		}
		return tx.WithContext(ctx).Create(flow).Error
	})
}

func (s *WalletService) ListFlows(ctx context.Context, address string, limit int) ([]*model.WalletFlow, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.walletRepo.ListFlows(ctx, address, limit)
}
