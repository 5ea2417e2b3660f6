package service

import (
	"context"
	"fmt"

	"github.com/Dorcaemmanuel/PeerPayChat/internal/config"
	"github.com/Dorcaemmanuel/PeerPayChat/internal/infrastructure/lock"
	"github.com/Dorcaemmanuel/PeerPayChat/internal/model"
	"github.com/Dorcaemmanuel/PeerPayChat/internal/repository"
	"github.com/Dorcaemmanuel/PeerPayChat/pkg/bizerr"
	"github.com/Dorcaemmanuel/PeerPayChat/pkg/idgen"

	"gorm.io/gorm"
)

// ============================================================================
// 支付核算
// ============================================================================

const (
	// MinPayment 单笔支付下限（最小货币单位）
	MinPayment = int64(10_000)
	// MaxPayment 单笔支付上限
	MaxPayment = int64(100_000_000)
	// PlatformFeePercent 平台抽成百分比
	PlatformFeePercent = int64(2)
)

// ComputePayment 计算一条消息的应付总额、平台费和净到账
//
// 规则：
//   - 发送方不是收件人的联系人、且收件人开启了陌生人付费时，
//     必须按收件人定价补足 required
//   - total = 用户主动支付 + required
//   - 平台费 = total * 2 / 100，整数向下取整，total 为 0 时不收费
func ComputePayment(paymentAmount, recipientPrice int64, senderIsContact, requirePaymentFromStrangers bool) (total, fee, net int64) {
	var required int64
	if !senderIsContact && requirePaymentFromStrangers {
		required = recipientPrice
	}

	total = paymentAmount + required
	if total > 0 {
		fee = total * PlatformFeePercent / 100
	}
	net = total - fee
	return total, fee, net
}

// ClassifyPayment 支付类型：发送方主动附带支付即为打赏，
// 否则（哪怕 total 全部由策略要求产生）记为消息费
func ClassifyPayment(paymentAmount int64) string {
	if paymentAmount > 0 {
		return model.PaymentTypeTip
	}
	return model.PaymentTypeMessageFee
}

// validPaymentTotal 边界检查只作用在 total 上：0 或落在 [Min, Max] 区间。
// 不单独约束用户传入的原始金额。
func validPaymentTotal(total int64) bool {
	return total == 0 || (total >= MinPayment && total <= MaxPayment)
}

// ============================================================================
// 平台资金
// ============================================================================

// PaymentService 平台收益和全局计数器的归属方
type PaymentService struct {
	db         *gorm.DB
	locker     lock.Locker
	cfg        *config.Config
	statsRepo  *repository.StatsRepository
	walletRepo *repository.WalletRepository
}

func NewPaymentService(db *gorm.DB, locker lock.Locker, cfg *config.Config) *PaymentService {
	return &PaymentService{
		db:         db,
		locker:     locker,
		cfg:        cfg,
		statsRepo:  repository.NewStatsRepository(db),
		walletRepo: repository.NewWalletRepository(db),
	}
}

// GetPlatformStats 全局统计查询，只反映已提交状态
func (s *PaymentService) GetPlatformStats(ctx context.Context) (*model.PlatformStats, error) {
	return s.statsRepo.Get(ctx)
}

// WithdrawPlatformFees 提取平台累计收益到管理员钱包
// 仅限配置的管理员地址调用
func (s *PaymentService) WithdrawPlatformFees(ctx context.Context, caller string, amount int64) error {
	if caller != s.cfg.Business.OwnerAddress {
		return bizerr.ErrNotAuthorized
	}
	if amount <= 0 {
		return bizerr.ErrInvalidPayment
	}

	key := lock.AccountKey(caller)
	owner := fmt.Sprintf("platform-withdraw-%d", idgen.NextID())
	if err := s.locker.Lock(ctx, key, owner); err != nil {
		return fmt.Errorf("系统繁忙，请稍后重试: %w", err)
	}
	defer s.locker.Unlock(ctx, key, owner)

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.statsRepo.DeductEarnings(ctx, tx, amount); err != nil {
			return err
		}
		return s.walletRepo.Transfer(ctx, tx,
			s.cfg.Business.EscrowAddress, caller, amount,
			model.FlowKindPlatformFee, "平台费提取")
	})
}
