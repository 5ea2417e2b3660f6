package service

import (
	"context"
	"fmt"

	"github.com/Dorcaemmanuel/PeerPayChat/internal/clock"
	"github.com/Dorcaemmanuel/PeerPayChat/internal/infrastructure/lock"
	"github.com/Dorcaemmanuel/PeerPayChat/internal/model"
	"github.com/Dorcaemmanuel/PeerPayChat/internal/repository"
	"github.com/Dorcaemmanuel/PeerPayChat/pkg/bizerr"
	"github.com/Dorcaemmanuel/PeerPayChat/pkg/idgen"

	"gorm.io/gorm"
)

// ChatService 会话目录
// 维护两方会话的唯一性：一对地址最多一个会话，按规范化地址对索引
type ChatService struct {
	db           *gorm.DB
	locker       lock.Locker
	clk          clock.Clock
	accountRepo  *repository.AccountRepository
	relationRepo *repository.RelationRepository
	chatRepo     *repository.ChatRepository
}

func NewChatService(db *gorm.DB, locker lock.Locker, clk clock.Clock) *ChatService {
	return &ChatService{
		db:           db,
		locker:       locker,
		clk:          clk,
		accountRepo:  repository.NewAccountRepository(db),
		relationRepo: repository.NewRelationRepository(db),
		chatRepo:     repository.NewChatRepository(db),
	}
}

// validatePair 会话前置校验：不能自聊、双方必须已注册、双向无拉黑
func (s *ChatService) validatePair(ctx context.Context, sender, recipient string) error {
	if sender == recipient {
		return bizerr.ErrNotAuthorized
	}

	for _, addr := range []string{sender, recipient} {
		exists, err := s.accountRepo.Exists(ctx, addr)
		if err != nil {
			return err
		}
		if !exists {
			return bizerr.ErrUserNotFound
		}
	}

	blocked, err := s.relationRepo.IsBlockedEither(ctx, sender, recipient)
	if err != nil {
		return err
	}
	if blocked {
		return bizerr.ErrBlockedUser
	}
	return nil
}

// resolveOrCreateTx 事务内解析或创建会话
// 幂等：已存在的会话直接返回，不做任何写入；消息管线复用同一实现
func (s *ChatService) resolveOrCreateTx(ctx context.Context, tx *gorm.DB, sender, recipient string) (uint64, error) {
	chat, err := s.chatRepo.GetByPair(ctx, tx, sender, recipient)
	if err != nil {
		return 0, err
	}
	if chat != nil {
		return chat.ID, nil
	}

	tick := s.clk.Tick()
	chat = &model.ChatThread{
		PairKey:       model.PairKey(sender, recipient),
		UserA:         sender,
		UserB:         recipient,
		CreatedTick:   tick,
		LastMessageAt: tick,
	}
	if err := s.chatRepo.Create(ctx, tx, chat); err != nil {
		return 0, err
	}
	return chat.ID, nil
}

// ResolveOrCreate 独立的会话解析入口（不发消息也可以先建会话）
func (s *ChatService) ResolveOrCreate(ctx context.Context, sender, recipient string) (uint64, error) {
	if err := s.validatePair(ctx, sender, recipient); err != nil {
		return 0, err
	}

	key := lock.ChatPairKey(sender, recipient)
	owner := fmt.Sprintf("chat-resolve-%d", idgen.NextID())
	if err := s.locker.Lock(ctx, key, owner); err != nil {
		return 0, fmt.Errorf("系统繁忙，请稍后重试: %w", err)
	}
	defer s.locker.Unlock(ctx, key, owner)

	var chatID uint64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		id, err := s.resolveOrCreateTx(ctx, tx, sender, recipient)
		chatID = id
		return err
	})
	return chatID, err
}

func (s *ChatService) GetChat(ctx context.Context, chatID uint64) (*model.ChatThread, error) {
	return s.chatRepo.GetByID(ctx, chatID)
}

func (s *ChatService) ListUserChats(ctx context.Context, address string) ([]*model.ChatThread, error) {
	exists, err := s.accountRepo.Exists(ctx, address)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, bizerr.ErrUserNotFound
	}
	return s.chatRepo.ListByUser(ctx, address)
}
