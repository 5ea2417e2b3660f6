package repository

import (
	"context"
	"testing"

	"github.com/Dorcaemmanuel/PeerPayChat/internal/model"
	"github.com/Dorcaemmanuel/PeerPayChat/internal/testutil"
	"github.com/Dorcaemmanuel/PeerPayChat/pkg/bizerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletGetOrCreate(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewWalletRepository(db)
	ctx := context.Background()

	wallet, err := repo.GetOrCreate(ctx, "addr_a")
	require.NoError(t, err)
	assert.Equal(t, int64(0), wallet.Balance)

	// 重复调用命中同一行
	again, err := repo.GetOrCreate(ctx, "addr_a")
	require.NoError(t, err)
	assert.Equal(t, wallet.ID, again.ID)
}

func TestWalletTransfer(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewWalletRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Increase(ctx, nil, "addr_a", 10_000))

	err := repo.Transfer(ctx, nil, "addr_a", "addr_b", 3_000, model.FlowKindEscrow, "测试划转")
	require.NoError(t, err)

	a, err := repo.GetByAddress(ctx, "addr_a")
	require.NoError(t, err)
	assert.Equal(t, int64(7_000), a.Balance)

	// 目标钱包不存在时自动建行
	b, err := repo.GetByAddress(ctx, "addr_b")
	require.NoError(t, err)
	assert.Equal(t, int64(3_000), b.Balance)

	flows, err := repo.ListFlows(ctx, "addr_a", 10)
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, "addr_a", flows[0].FromAddress)
	assert.Equal(t, "addr_b", flows[0].ToAddress)
	assert.Equal(t, int64(3_000), flows[0].Amount)
	assert.Equal(t, model.FlowKindEscrow, flows[0].Kind)
	assert.NotEmpty(t, flows[0].FlowNo)
}

func TestWalletDeductGuard(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewWalletRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Increase(ctx, nil, "addr_a", 1_000))

	// 余额不足，条件更新不命中
	err := repo.Deduct(ctx, nil, "addr_a", 1_001)
	assert.ErrorIs(t, err, bizerr.ErrInsufficientFunds)

	// 钱包行不存在同样视为余额不足
	err = repo.Deduct(ctx, nil, "addr_missing", 1)
	assert.ErrorIs(t, err, bizerr.ErrInsufficientFunds)

	a, err := repo.GetByAddress(ctx, "addr_a")
	require.NoError(t, err)
	assert.Equal(t, int64(1_000), a.Balance)

	require.NoError(t, repo.Deduct(ctx, nil, "addr_a", 1_000))
	a, err = repo.GetByAddress(ctx, "addr_a")
	require.NoError(t, err)
	assert.Equal(t, int64(0), a.Balance)
}
