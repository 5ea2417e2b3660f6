package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/Dorcaemmanuel/PeerPayChat/internal/clock"
	"github.com/Dorcaemmanuel/PeerPayChat/internal/config"
	"github.com/Dorcaemmanuel/PeerPayChat/internal/infrastructure/lock"
	"github.com/Dorcaemmanuel/PeerPayChat/internal/model"
	"github.com/Dorcaemmanuel/PeerPayChat/internal/repository"
	"github.com/Dorcaemmanuel/PeerPayChat/pkg/bizerr"
	"github.com/Dorcaemmanuel/PeerPayChat/pkg/idgen"

	"gorm.io/gorm"
)

// MessageService 消息发送管线
// 把身份校验、拉黑检查、会话解析、支付核算、资金托管和多实体落库
// 组合成一次原子提交：任何一步失败，所有表保持原样。
type MessageService struct {
	db           *gorm.DB
	locker       lock.Locker
	clk          clock.Clock
	cfg          *config.Config
	chats        *ChatService
	accountRepo  *repository.AccountRepository
	settingsRepo *repository.SettingsRepository
	relationRepo *repository.RelationRepository
	chatRepo     *repository.ChatRepository
	messageRepo  *repository.MessageRepository
	paymentRepo  *repository.PaymentRepository
	walletRepo   *repository.WalletRepository
	statsRepo    *repository.StatsRepository
	outboxRepo   *repository.OutboxRepository
}

func NewMessageService(db *gorm.DB, locker lock.Locker, clk clock.Clock, cfg *config.Config) *MessageService {
	return &MessageService{
		db:           db,
		locker:       locker,
		clk:          clk,
		cfg:          cfg,
		chats:        NewChatService(db, locker, clk),
		accountRepo:  repository.NewAccountRepository(db),
		settingsRepo: repository.NewSettingsRepository(db),
		relationRepo: repository.NewRelationRepository(db),
		chatRepo:     repository.NewChatRepository(db),
		messageRepo:  repository.NewMessageRepository(db),
		paymentRepo:  repository.NewPaymentRepository(db),
		walletRepo:   repository.NewWalletRepository(db),
		statsRepo:    repository.NewStatsRepository(db),
		outboxRepo:   repository.NewOutboxRepository(db),
	}
}

type SendRequest struct {
	Sender        string
	Recipient     string
	ContentRef    string // 内容引用（哈希/指针），核心不解析
	MsgType       string
	PaymentAmount int64 // 发送方主动附带的支付
	Encrypted     bool
	ReplyTo       *uint64
	Metadata      string
}

// Send 发送消息
//
// 【关键点】整个调用是一个事务单元，校验自上而下逐项执行：
//  1. 身份：双方已注册且不是自己给自己发
//  2. 内容：引用 ≤64 字符、元数据 ≤200 字符
//  3. 拉黑：收件人拉黑了发送方则直接拒绝（发送只查这一个方向，
//     会话解析内部还会做双向检查）
//  4. 会话：解析或创建，失败原样上抛
//  5. 策略：按收件人设置和联系人关系核算 total/fee/net
//  6. 边界：total 必须为 0 或落在 [MinPayment, MaxPayment]；
//     total 为 0 且收件人拒收陌生人消息且发送方不是联系人时拒绝
//  7. 资金：total > 0 时把 total 划入托管池，写支付记录，累计平台费
//  8. 提交：消息、会话聚合、双方账户累计值、活跃时刻、全局计数一起落库
//
// 第一个失败的检查就是唯一返回的错误，它之后的步骤不执行，
// 它之前的步骤也不会留下任何持久化痕迹。
func (s *MessageService) Send(ctx context.Context, req *SendRequest) (uint64, error) {
	if req.Sender == req.Recipient {
		return 0, bizerr.ErrNotAuthorized
	}

	if _, err := s.accountRepo.GetByAddress(ctx, req.Sender); err != nil {
		return 0, err
	}
	recipient, err := s.accountRepo.GetByAddress(ctx, req.Recipient)
	if err != nil {
		return 0, err
	}

	if len(req.ContentRef) > model.MaxContentRefLen || len(req.Metadata) > model.MaxMetadataLen {
		return 0, bizerr.ErrMessageTooLong
	}

	blocked, err := s.relationRepo.IsBlocked(ctx, req.Recipient, req.Sender)
	if err != nil {
		return 0, err
	}
	if blocked {
		return 0, bizerr.ErrBlockedUser
	}

	// 会话解析的前置校验（含双向拉黑检查），失败原样上抛
	if err := s.chats.validatePair(ctx, req.Sender, req.Recipient); err != nil {
		return 0, err
	}

	settings, err := s.settingsRepo.Get(ctx, req.Recipient)
	if err != nil {
		return 0, err
	}
	isContact, err := s.relationRepo.IsContact(ctx, req.Recipient, req.Sender)
	if err != nil {
		return 0, err
	}

	total, fee, net := ComputePayment(
		req.PaymentAmount,
		recipient.MessagePrice,
		isContact,
		settings.RequirePaymentFromStrangers,
	)

	if !validPaymentTotal(total) {
		return 0, bizerr.ErrInvalidPayment
	}
	if total == 0 && !settings.AllowStrangerMessages && !isContact {
		return 0, bizerr.ErrNotAuthorized
	}

	msgType := req.MsgType
	if msgType == "" {
		msgType = model.MsgTypeText
	}

	// 按无序地址对加锁，同一对用户的发送严格串行
	key := lock.ChatPairKey(req.Sender, req.Recipient)
	owner := fmt.Sprintf("send-%d", idgen.NextID())
	if err := s.locker.Lock(ctx, key, owner); err != nil {
		return 0, fmt.Errorf("系统繁忙，请稍后重试: %w", err)
	}
	defer s.locker.Unlock(ctx, key, owner)

	tick := s.clk.Tick()
	var messageID uint64

	err = s.db.Transaction(func(tx *gorm.DB) error {
		chatID, err := s.chats.resolveOrCreateTx(ctx, tx, req.Sender, req.Recipient)
		if err != nil {
			return err
		}

		// 资金先行：托管划转失败则整个事务回滚，消息不会出现
		if total > 0 {
			err := s.walletRepo.Transfer(ctx, tx,
				req.Sender, s.cfg.Business.EscrowAddress, total,
				model.FlowKindEscrow, fmt.Sprintf("消息支付-会话%d", chatID))
			if err != nil {
				return err
			}
		}

		msg := &model.Message{
			ChatID:      chatID,
			Sender:      req.Sender,
			Recipient:   req.Recipient,
			ContentRef:  req.ContentRef,
			MsgType:     msgType,
			Payment:     total,
			Timestamp:   tick,
			IsEncrypted: req.Encrypted,
			ReplyTo:     req.ReplyTo,
			Metadata:    req.Metadata,
		}
		if err := s.messageRepo.Create(ctx, tx, msg); err != nil {
			return err
		}

		if total > 0 {
			record := &model.PaymentRecord{
				MessageID:   msg.ID,
				Amount:      total,
				Sender:      req.Sender,
				Recipient:   req.Recipient,
				PlatformFee: fee,
				PaymentType: ClassifyPayment(req.PaymentAmount),
				ProcessedAt: tick,
			}
			if err := s.paymentRepo.Create(ctx, tx, record); err != nil {
				return err
			}
			if err := s.statsRepo.AddEarnings(ctx, tx, fee); err != nil {
				return err
			}
		}

		if err := s.chatRepo.BumpAggregates(ctx, tx, chatID, tick, total); err != nil {
			return err
		}
		if err := s.accountRepo.CreditReceived(ctx, tx, req.Recipient, net); err != nil {
			return err
		}
		if err := s.accountRepo.RecordSent(ctx, tx, req.Sender, total); err != nil {
			return err
		}
		if err := s.accountRepo.BumpActivity(ctx, tx, req.Sender, tick); err != nil {
			return err
		}
		if err := s.accountRepo.BumpActivity(ctx, tx, req.Recipient, tick); err != nil {
			return err
		}
		if err := s.statsRepo.AddMessages(ctx, tx, 1); err != nil {
			return err
		}

		payload, _ := json.Marshal(map[string]interface{}{
			"message_id":   msg.ID,
			"chat_id":      chatID,
			"sender":       req.Sender,
			"recipient":    req.Recipient,
			"payment":      total,
			"platform_fee": fee,
			"tick":         tick,
		})
		outboxMsg := &model.OutboxMessage{
			MessageKey: idgen.GenerateEventKey(),
			Topic:      s.cfg.Kafka.Topic.MessageSent,
			Payload:    string(payload),
			Status:     model.OutboxStatusPending,
		}
		if err := s.outboxRepo.Create(ctx, tx, outboxMsg); err != nil {
			return err
		}

		messageID = msg.ID
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Printf("消息发送成功: messageID=%d, sender=%s, recipient=%s, payment=%d",
		messageID, req.Sender, req.Recipient, total)

	return messageID, nil
}

// MarkRead 标记已读——消息唯一允许的变更，只有收件人能执行
func (s *MessageService) MarkRead(ctx context.Context, messageID uint64, caller string) error {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.Recipient != caller {
		return bizerr.ErrNotAuthorized
	}
	return s.messageRepo.MarkRead(ctx, nil, messageID)
}

// Withdraw 提现：把累计收款从托管池划回钱包
func (s *MessageService) Withdraw(ctx context.Context, caller string, amount int64) error {
	if amount <= 0 {
		return bizerr.ErrInvalidPayment
	}

	key := lock.AccountKey(caller)
	owner := fmt.Sprintf("withdraw-%d", idgen.NextID())
	if err := s.locker.Lock(ctx, key, owner); err != nil {
		return fmt.Errorf("系统繁忙，请稍后重试: %w", err)
	}
	defer s.locker.Unlock(ctx, key, owner)

	tick := s.clk.Tick()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// 余额守卫在这里：amount 超过可提现余额直接失败，事务回滚
		if err := s.accountRepo.DebitReceived(ctx, tx, caller, amount); err != nil {
			return err
		}
		err := s.walletRepo.Transfer(ctx, tx,
			s.cfg.Business.EscrowAddress, caller, amount,
			model.FlowKindWithdraw, "用户提现")
		if err != nil {
			return err
		}
		if err := s.accountRepo.BumpActivity(ctx, tx, caller, tick); err != nil {
			return err
		}

		payload, _ := json.Marshal(map[string]interface{}{
			"address": caller,
			"amount":  amount,
			"tick":    tick,
		})
		outboxMsg := &model.OutboxMessage{
			MessageKey: idgen.GenerateEventKey(),
			Topic:      s.cfg.Kafka.Topic.PaymentSettled,
			Payload:    string(payload),
			Status:     model.OutboxStatusPending,
		}
		return s.outboxRepo.Create(ctx, tx, outboxMsg)
	})
	if err != nil {
		return err
	}

	log.Printf("提现成功: address=%s, amount=%d", caller, amount)
	return nil
}

func (s *MessageService) GetMessage(ctx context.Context, messageID uint64) (*model.Message, error) {
	return s.messageRepo.GetByID(ctx, messageID)
}

// GetPaymentRecord 查消息的支付记录，零支付消息返回 (nil, nil)
func (s *MessageService) GetPaymentRecord(ctx context.Context, messageID uint64) (*model.PaymentRecord, error) {
	return s.paymentRepo.GetByMessageID(ctx, messageID)
}

func (s *MessageService) ListChatMessages(ctx context.Context, chatID uint64, page, pageSize int) ([]*model.Message, int64, error) {
	if _, err := s.chatRepo.GetByID(ctx, chatID); err != nil {
		return nil, 0, err
	}
	return s.messageRepo.ListByChat(ctx, chatID, page, pageSize)
}
