package service

import (
	"context"
	"testing"

	"github.com/Dorcaemmanuel/PeerPayChat/internal/model"
	"github.com/Dorcaemmanuel/PeerPayChat/internal/repository"
	"github.com/Dorcaemmanuel/PeerPayChat/pkg/bizerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePayment(t *testing.T) {
	tests := []struct {
		name           string
		payment        int64
		price          int64
		isContact      bool
		requirePayment bool
		wantTotal      int64
		wantFee        int64
		wantNet        int64
	}{
		{
			name:      "联系人免费消息",
			payment:   0, price: 50_000, isContact: true, requirePayment: true,
			wantTotal: 0, wantFee: 0, wantNet: 0,
		},
		{
			name:      "陌生人按定价补足",
			payment:   0, price: 50_000, isContact: false, requirePayment: true,
			wantTotal: 50_000, wantFee: 1_000, wantNet: 49_000,
		},
		{
			name:      "陌生人但收件人未开启付费",
			payment:   0, price: 50_000, isContact: false, requirePayment: false,
			wantTotal: 0, wantFee: 0, wantNet: 0,
		},
		{
			name:      "联系人打赏",
			payment:   20_000, price: 50_000, isContact: true, requirePayment: true,
			wantTotal: 20_000, wantFee: 400, wantNet: 19_600,
		},
		{
			name:      "打赏叠加定价",
			payment:   20_000, price: 50_000, isContact: false, requirePayment: true,
			wantTotal: 70_000, wantFee: 1_400, wantNet: 68_600,
		},
		{
			name:      "平台费向下取整",
			payment:   10_001, price: 0, isContact: true, requirePayment: false,
			wantTotal: 10_001, wantFee: 200, wantNet: 9_801,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, fee, net := ComputePayment(tt.payment, tt.price, tt.isContact, tt.requirePayment)
			assert.Equal(t, tt.wantTotal, total)
			assert.Equal(t, tt.wantFee, fee)
			assert.Equal(t, tt.wantNet, net)
			// 不变量：净到账 + 平台费 == 总额
			assert.Equal(t, total, fee+net)
		})
	}
}

func TestClassifyPayment(t *testing.T) {
	// 主动附带支付即为打赏，策略产生的支付记为消息费
	assert.Equal(t, model.PaymentTypeTip, ClassifyPayment(20_000))
	assert.Equal(t, model.PaymentTypeMessageFee, ClassifyPayment(0))
}

func TestValidPaymentTotal(t *testing.T) {
	assert.True(t, validPaymentTotal(0))
	assert.True(t, validPaymentTotal(MinPayment))
	assert.True(t, validPaymentTotal(MaxPayment))
	assert.False(t, validPaymentTotal(MinPayment-1))
	assert.False(t, validPaymentTotal(MaxPayment+1))
	assert.False(t, validPaymentTotal(1))
}

func TestWithdrawPlatformFeesAuthorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.payments.WithdrawPlatformFees(ctx, "addr_nobody", 1_000)
	assert.ErrorIs(t, err, bizerr.ErrNotAuthorized)

	err = env.payments.WithdrawPlatformFees(ctx, env.cfg.Business.OwnerAddress, 0)
	assert.ErrorIs(t, err, bizerr.ErrInvalidPayment)

	err = env.payments.WithdrawPlatformFees(ctx, env.cfg.Business.OwnerAddress, -100)
	assert.ErrorIs(t, err, bizerr.ErrInvalidPayment)
}

func TestWithdrawPlatformFees(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.cfg.Business.OwnerAddress
	escrow := env.cfg.Business.EscrowAddress

	// 模拟已有累计收益：计数器和托管池各记 5000
	statsRepo := repository.NewStatsRepository(env.db)
	require.NoError(t, statsRepo.AddEarnings(ctx, nil, 5_000))
	env.fund(t, escrow, 5_000)

	require.NoError(t, env.payments.WithdrawPlatformFees(ctx, owner, 3_000))

	assert.Equal(t, int64(3_000), env.balance(t, owner))
	assert.Equal(t, int64(2_000), env.balance(t, escrow))
	assert.Equal(t, int64(2_000), env.stats(t).PlatformEarnings)

	// 超出剩余收益，整体失败且余额不动
	err := env.payments.WithdrawPlatformFees(ctx, owner, 2_001)
	assert.ErrorIs(t, err, bizerr.ErrInsufficientFunds)
	assert.Equal(t, int64(3_000), env.balance(t, owner))
	assert.Equal(t, int64(2_000), env.stats(t).PlatformEarnings)
}
