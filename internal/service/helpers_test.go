package service

import (
	"context"
	"testing"

	"github.com/Dorcaemmanuel/PeerPayChat/internal/clock"
	"github.com/Dorcaemmanuel/PeerPayChat/internal/config"
	"github.com/Dorcaemmanuel/PeerPayChat/internal/infrastructure/lock"
	"github.com/Dorcaemmanuel/PeerPayChat/internal/model"
	"github.com/Dorcaemmanuel/PeerPayChat/internal/repository"
	"github.com/Dorcaemmanuel/PeerPayChat/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testEnv 一套完整的服务栈：内存 SQLite + 进程内锁 + 手动时钟
type testEnv struct {
	db        *gorm.DB
	cfg       *config.Config
	clk       *clock.ManualClock
	users     *UserService
	relations *RelationService
	chats     *ChatService
	messages  *MessageService
	payments  *PaymentService
	wallets   *WalletService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	cfg := testutil.NewConfig()
	locker := lock.NewLocalLocker()
	clk := clock.NewManualClock(0)

	return &testEnv{
		db:        db,
		cfg:       cfg,
		clk:       clk,
		users:     NewUserService(db, locker, clk, cfg),
		relations: NewRelationService(db),
		chats:     NewChatService(db, locker, clk),
		messages:  NewMessageService(db, locker, clk, cfg),
		payments:  NewPaymentService(db, locker, cfg),
		wallets:   NewWalletService(db),
	}
}

// register 注册账户，测试默认配置下注册费为 0
func (e *testEnv) register(t *testing.T, address, username string, price int64) *model.Account {
	t.Helper()
	account, err := e.users.Register(context.Background(), &RegisterRequest{
		Address:      address,
		Username:     username,
		MessagePrice: price,
	})
	require.NoError(t, err)
	return account
}

// fund 给钱包充值
func (e *testEnv) fund(t *testing.T, address string, amount int64) {
	t.Helper()
	require.NoError(t, e.wallets.Deposit(context.Background(), address, amount))
}

// balance 读钱包余额，没有钱包行时视为 0
func (e *testEnv) balance(t *testing.T, address string) int64 {
	t.Helper()
	var wallet model.Wallet
	err := e.db.Where("address = ?", address).First(&wallet).Error
	if err == gorm.ErrRecordNotFound {
		return 0
	}
	require.NoError(t, err)
	return wallet.Balance
}

// account 读账户行
func (e *testEnv) account(t *testing.T, address string) *model.Account {
	t.Helper()
	account, err := e.users.GetByAddress(context.Background(), address)
	require.NoError(t, err)
	return account
}

// stats 读全局计数器
func (e *testEnv) stats(t *testing.T) *model.PlatformStats {
	t.Helper()
	stats, err := repository.NewStatsRepository(e.db).Get(context.Background())
	require.NoError(t, err)
	return stats
}

// count 数某个模型的总行数
func (e *testEnv) count(t *testing.T, value interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(value).Count(&n).Error)
	return n
}
