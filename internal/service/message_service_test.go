package service

import (
	"context"
	"strings"
	"testing"

	"github.com/Dorcaemmanuel/PeerPayChat/internal/model"
	"github.com/Dorcaemmanuel/PeerPayChat/pkg/bizerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupPair 注册 alice 和 bob：bob 定价 50000 并开启陌生人付费
func setupPair(t *testing.T, env *testEnv) {
	t.Helper()
	ctx := context.Background()

	env.register(t, "addr_alice", "alice", 0)
	env.register(t, "addr_bob", "bob", 50_000)

	err := env.users.UpdateSettings(ctx, &model.UserSettings{
		Address:                     "addr_bob",
		AllowStrangerMessages:       true,
		RequirePaymentFromStrangers: true,
		NotificationsEnabled:        true,
	})
	require.NoError(t, err)
}

func TestSendFreeMessageBetweenContacts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	setupPair(t, env)

	// bob 把 alice 加为联系人，alice 发消息不再触发定价
	require.NoError(t, env.relations.AddContact(ctx, "addr_bob", "addr_alice"))

	messageID, err := env.messages.Send(ctx, &SendRequest{
		Sender:     "addr_alice",
		Recipient:  "addr_bob",
		ContentRef: "hash_001",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), messageID)

	msg, err := env.messages.GetMessage(ctx, messageID)
	require.NoError(t, err)
	assert.Equal(t, model.MsgTypeText, msg.MsgType)
	assert.Equal(t, int64(0), msg.Payment)
	assert.False(t, msg.IsRead)

	// 零支付消息没有支付记录
	record, err := env.messages.GetPaymentRecord(ctx, messageID)
	require.NoError(t, err)
	assert.Nil(t, record)

	chat, err := env.chats.GetChat(ctx, msg.ChatID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), chat.MessageCount)
	assert.Equal(t, int64(0), chat.TotalPayments)
	assert.Equal(t, msg.Timestamp, chat.LastMessageAt)

	assert.Equal(t, int64(1), env.stats(t).TotalMessages)
	assert.Equal(t, int64(0), env.stats(t).PlatformEarnings)
	assert.Equal(t, int64(1), env.account(t, "addr_alice").MessageCount)
}

func TestSendStrangerPaysPrice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	setupPair(t, env)

	env.fund(t, "addr_alice", 100_000)

	messageID, err := env.messages.Send(ctx, &SendRequest{
		Sender:     "addr_alice",
		Recipient:  "addr_bob",
		ContentRef: "hash_002",
	})
	require.NoError(t, err)

	// total=50000, fee=1000, net=49000
	assert.Equal(t, int64(50_000), env.balance(t, "addr_alice"))
	assert.Equal(t, int64(50_000), env.balance(t, env.cfg.Business.EscrowAddress))

	record, err := env.messages.GetPaymentRecord(ctx, messageID)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, int64(50_000), record.Amount)
	assert.Equal(t, int64(1_000), record.PlatformFee)
	assert.Equal(t, model.PaymentTypeMessageFee, record.PaymentType)

	assert.Equal(t, int64(49_000), env.account(t, "addr_bob").TotalReceived)
	assert.Equal(t, int64(50_000), env.account(t, "addr_alice").TotalSent)
	assert.Equal(t, int64(1_000), env.stats(t).PlatformEarnings)

	// 发送事件进入发件箱等待投递
	assert.Equal(t, int64(1), env.count(t, &model.OutboxMessage{}))
}

func TestSendTipFromContact(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	setupPair(t, env)

	require.NoError(t, env.relations.AddContact(ctx, "addr_bob", "addr_alice"))
	env.fund(t, "addr_alice", 30_000)

	messageID, err := env.messages.Send(ctx, &SendRequest{
		Sender:        "addr_alice",
		Recipient:     "addr_bob",
		ContentRef:    "hash_003",
		PaymentAmount: 20_000,
	})
	require.NoError(t, err)

	record, err := env.messages.GetPaymentRecord(ctx, messageID)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, model.PaymentTypeTip, record.PaymentType)
	assert.Equal(t, int64(20_000), record.Amount)
	assert.Equal(t, int64(400), record.PlatformFee)
	assert.Equal(t, int64(19_600), env.account(t, "addr_bob").TotalReceived)
}

func TestSendPaymentBounds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	setupPair(t, env)

	require.NoError(t, env.relations.AddContact(ctx, "addr_bob", "addr_alice"))
	env.fund(t, "addr_alice", 1_000_000)

	// total 低于下限
	_, err := env.messages.Send(ctx, &SendRequest{
		Sender: "addr_alice", Recipient: "addr_bob",
		ContentRef: "hash", PaymentAmount: 9_999,
	})
	assert.ErrorIs(t, err, bizerr.ErrInvalidPayment)

	// total 超过上限
	_, err = env.messages.Send(ctx, &SendRequest{
		Sender: "addr_alice", Recipient: "addr_bob",
		ContentRef: "hash", PaymentAmount: MaxPayment + 1,
	})
	assert.ErrorIs(t, err, bizerr.ErrInvalidPayment)

	// 边界值本身合法
	_, err = env.messages.Send(ctx, &SendRequest{
		Sender: "addr_alice", Recipient: "addr_bob",
		ContentRef: "hash", PaymentAmount: MinPayment,
	})
	assert.NoError(t, err)
}

func TestSendContentLimits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	setupPair(t, env)

	require.NoError(t, env.relations.AddContact(ctx, "addr_bob", "addr_alice"))

	_, err := env.messages.Send(ctx, &SendRequest{
		Sender: "addr_alice", Recipient: "addr_bob",
		ContentRef: strings.Repeat("x", model.MaxContentRefLen+1),
	})
	assert.ErrorIs(t, err, bizerr.ErrMessageTooLong)

	_, err = env.messages.Send(ctx, &SendRequest{
		Sender: "addr_alice", Recipient: "addr_bob",
		ContentRef: "hash",
		Metadata:   strings.Repeat("x", model.MaxMetadataLen+1),
	})
	assert.ErrorIs(t, err, bizerr.ErrMessageTooLong)
}

func TestSendIdentityChecks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	setupPair(t, env)

	_, err := env.messages.Send(ctx, &SendRequest{
		Sender: "addr_alice", Recipient: "addr_alice", ContentRef: "hash",
	})
	assert.ErrorIs(t, err, bizerr.ErrNotAuthorized)

	_, err = env.messages.Send(ctx, &SendRequest{
		Sender: "addr_alice", Recipient: "addr_nobody", ContentRef: "hash",
	})
	assert.ErrorIs(t, err, bizerr.ErrUserNotFound)

	_, err = env.messages.Send(ctx, &SendRequest{
		Sender: "addr_nobody", Recipient: "addr_bob", ContentRef: "hash",
	})
	assert.ErrorIs(t, err, bizerr.ErrUserNotFound)
}

func TestSendBlockedBeforePayment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	setupPair(t, env)

	env.fund(t, "addr_alice", 100_000)
	require.NoError(t, env.relations.BlockUser(ctx, "addr_bob", "addr_alice"))

	// 拉黑在任何支付之前生效：余额足够也不扣一分钱
	_, err := env.messages.Send(ctx, &SendRequest{
		Sender: "addr_alice", Recipient: "addr_bob",
		ContentRef: "hash", PaymentAmount: 20_000,
	})
	assert.ErrorIs(t, err, bizerr.ErrBlockedUser)
	assert.Equal(t, int64(100_000), env.balance(t, "addr_alice"))
	assert.Equal(t, int64(0), env.count(t, &model.Message{}))
}

func TestSendBlockedEitherDirection(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	setupPair(t, env)

	// 发送方拉黑了收件人同样拒绝
	require.NoError(t, env.relations.BlockUser(ctx, "addr_alice", "addr_bob"))

	_, err := env.messages.Send(ctx, &SendRequest{
		Sender: "addr_alice", Recipient: "addr_bob", ContentRef: "hash",
	})
	assert.ErrorIs(t, err, bizerr.ErrBlockedUser)
}

func TestSendStrangerRefused(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.register(t, "addr_alice", "alice", 0)
	env.register(t, "addr_bob", "bob", 0)

	// bob 拒收陌生人消息且不设定价：零支付的陌生人直接拒绝
	err := env.users.UpdateSettings(ctx, &model.UserSettings{
		Address:               "addr_bob",
		AllowStrangerMessages: false,
		NotificationsEnabled:  true,
	})
	require.NoError(t, err)

	_, err = env.messages.Send(ctx, &SendRequest{
		Sender: "addr_alice", Recipient: "addr_bob", ContentRef: "hash",
	})
	assert.ErrorIs(t, err, bizerr.ErrNotAuthorized)

	// 加为联系人后放行
	require.NoError(t, env.relations.AddContact(ctx, "addr_bob", "addr_alice"))
	_, err = env.messages.Send(ctx, &SendRequest{
		Sender: "addr_alice", Recipient: "addr_bob", ContentRef: "hash",
	})
	assert.NoError(t, err)
}

func TestSendAtomicity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	setupPair(t, env)

	// alice 没有余额，定价消息的托管划转失败
	_, err := env.messages.Send(ctx, &SendRequest{
		Sender: "addr_alice", Recipient: "addr_bob", ContentRef: "hash",
	})
	assert.ErrorIs(t, err, bizerr.ErrInsufficientFunds)

	// 失败后所有表保持原样：没有消息、没有会话、没有流水、计数不动
	assert.Equal(t, int64(0), env.count(t, &model.Message{}))
	assert.Equal(t, int64(0), env.count(t, &model.ChatThread{}))
	assert.Equal(t, int64(0), env.count(t, &model.PaymentRecord{}))
	assert.Equal(t, int64(0), env.count(t, &model.WalletFlow{}))
	assert.Equal(t, int64(0), env.count(t, &model.OutboxMessage{}))
	assert.Equal(t, int64(0), env.stats(t).TotalMessages)
	assert.Equal(t, int64(0), env.account(t, "addr_bob").TotalReceived)
	assert.Equal(t, int64(0), env.account(t, "addr_alice").TotalSent)
}

func TestSendReplyChain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	setupPair(t, env)

	require.NoError(t, env.relations.AddContact(ctx, "addr_bob", "addr_alice"))
	require.NoError(t, env.relations.AddContact(ctx, "addr_alice", "addr_bob"))

	first, err := env.messages.Send(ctx, &SendRequest{
		Sender: "addr_alice", Recipient: "addr_bob", ContentRef: "hash_a",
	})
	require.NoError(t, err)

	second, err := env.messages.Send(ctx, &SendRequest{
		Sender: "addr_bob", Recipient: "addr_alice",
		ContentRef: "hash_b", ReplyTo: &first,
	})
	require.NoError(t, err)

	msg, err := env.messages.GetMessage(ctx, second)
	require.NoError(t, err)
	require.NotNil(t, msg.ReplyTo)
	assert.Equal(t, first, *msg.ReplyTo)

	// 双向消息共用同一个会话
	firstMsg, err := env.messages.GetMessage(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, firstMsg.ChatID, msg.ChatID)
}

func TestMarkRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	setupPair(t, env)

	require.NoError(t, env.relations.AddContact(ctx, "addr_bob", "addr_alice"))

	messageID, err := env.messages.Send(ctx, &SendRequest{
		Sender: "addr_alice", Recipient: "addr_bob", ContentRef: "hash",
	})
	require.NoError(t, err)

	// 发送方不能标记已读
	err = env.messages.MarkRead(ctx, messageID, "addr_alice")
	assert.ErrorIs(t, err, bizerr.ErrNotAuthorized)

	require.NoError(t, env.messages.MarkRead(ctx, messageID, "addr_bob"))
	msg, err := env.messages.GetMessage(ctx, messageID)
	require.NoError(t, err)
	assert.True(t, msg.IsRead)

	err = env.messages.MarkRead(ctx, 999, "addr_bob")
	assert.ErrorIs(t, err, bizerr.ErrMessageNotFound)
}

func TestWithdraw(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	setupPair(t, env)

	env.fund(t, "addr_alice", 100_000)

	_, err := env.messages.Send(ctx, &SendRequest{
		Sender: "addr_alice", Recipient: "addr_bob", ContentRef: "hash",
	})
	require.NoError(t, err)

	// bob 净到账 49000，全部提现
	require.NoError(t, env.messages.Withdraw(ctx, "addr_bob", 49_000))
	assert.Equal(t, int64(49_000), env.balance(t, "addr_bob"))
	assert.Equal(t, int64(0), env.account(t, "addr_bob").TotalReceived)
	assert.Equal(t, int64(1_000), env.balance(t, env.cfg.Business.EscrowAddress))

	// 再提就超了
	err = env.messages.Withdraw(ctx, "addr_bob", 1)
	assert.ErrorIs(t, err, bizerr.ErrInsufficientFunds)

	err = env.messages.Withdraw(ctx, "addr_bob", 0)
	assert.ErrorIs(t, err, bizerr.ErrInvalidPayment)
	err = env.messages.Withdraw(ctx, "addr_bob", -100)
	assert.ErrorIs(t, err, bizerr.ErrInvalidPayment)
}

func TestWithdrawExceedsBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// 新注册账户可提现余额为 0，超额提现在事务内直接失败
	env.register(t, "addr_carol", "carol", 0)

	err := env.messages.Withdraw(ctx, "addr_carol", 123)
	assert.ErrorIs(t, err, bizerr.ErrInsufficientFunds)
	assert.Equal(t, int64(0), env.account(t, "addr_carol").TotalReceived)
	assert.Equal(t, int64(0), env.balance(t, "addr_carol"))
	assert.Equal(t, int64(0), env.count(t, &model.WalletFlow{}))

	// 未注册地址
	err = env.messages.Withdraw(ctx, "addr_nobody", 123)
	assert.ErrorIs(t, err, bizerr.ErrUserNotFound)
}

func TestListChatMessages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	setupPair(t, env)

	require.NoError(t, env.relations.AddContact(ctx, "addr_bob", "addr_alice"))

	for i := 0; i < 5; i++ {
		_, err := env.messages.Send(ctx, &SendRequest{
			Sender: "addr_alice", Recipient: "addr_bob", ContentRef: "hash",
		})
		require.NoError(t, err)
	}

	msg, err := env.messages.GetMessage(ctx, 1)
	require.NoError(t, err)

	messages, total, err := env.messages.ListChatMessages(ctx, msg.ChatID, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, messages, 3)

	messages, _, err = env.messages.ListChatMessages(ctx, msg.ChatID, 2, 3)
	require.NoError(t, err)
	assert.Len(t, messages, 2)

	// 非法分页参数钳制为默认值，而不是产生负偏移
	messages, total, err = env.messages.ListChatMessages(ctx, msg.ChatID, 0, -5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, messages, 5)

	_, _, err = env.messages.ListChatMessages(ctx, 999, 1, 10)
	assert.ErrorIs(t, err, bizerr.ErrInvalidChat)
}
