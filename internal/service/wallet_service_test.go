package service

import (
	"context"
	"testing"

	"github.com/Dorcaemmanuel/PeerPayChat/internal/model"
	"github.com/Dorcaemmanuel/PeerPayChat/pkg/bizerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeposit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.wallets.Deposit(ctx, "addr_a", 5_000))
	assert.Equal(t, int64(5_000), env.balance(t, "addr_a"))

	balance, err := env.wallets.GetBalance(ctx, "addr_a")
	require.NoError(t, err)
	assert.Equal(t, int64(5_000), balance)

	flows, err := env.wallets.ListFlows(ctx, "addr_a", 10)
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, model.FlowKindDeposit, flows[0].Kind)
}

func TestDepositValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// 非法金额同样落在封闭错误集合内
	err := env.wallets.Deposit(ctx, "addr_a", 0)
	assert.ErrorIs(t, err, bizerr.ErrInvalidPayment)

	err = env.wallets.Deposit(ctx, "addr_a", -100)
	assert.ErrorIs(t, err, bizerr.ErrInvalidPayment)
}
