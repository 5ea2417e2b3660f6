package repository

import (
	"context"
	"errors"

	"github.com/Dorcaemmanuel/PeerPayChat/internal/model"
	"github.com/Dorcaemmanuel/PeerPayChat/pkg/bizerr"

	"gorm.io/gorm"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Create(ctx context.Context, tx *gorm.DB, chat *model.ChatThread) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(chat).Error
}

func (r *ChatRepository) GetByID(ctx context.Context, chatID uint64) (*model.ChatThread, error) {
	var chat model.ChatThread
	err := r.db.WithContext(ctx).Where("id = ?", chatID).First(&chat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerr.ErrInvalidChat
		}
		return nil, err
	}
	return &chat, nil
}

// GetByPair 按无序地址对查会话，不存在返回 (nil, nil)
func (r *ChatRepository) GetByPair(ctx context.Context, tx *gorm.DB, a, b string) (*model.ChatThread, error) {
	if tx == nil {
		tx = r.db
	}
	var chat model.ChatThread
	err := tx.WithContext(ctx).Where("pair_key = ?", model.PairKey(a, b)).First(&chat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &chat, nil
}

// BumpAggregates 消息提交时更新会话聚合：活跃时刻、消息数、累计支付
func (r *ChatRepository) BumpAggregates(ctx context.Context, tx *gorm.DB, chatID uint64, tick int64, payment int64) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).Model(&model.ChatThread{}).
		Where("id = ?", chatID).
		Updates(map[string]interface{}{
			"last_message_at": tick,
			"message_count":   gorm.Expr("message_count + 1"),
			"total_payments":  gorm.Expr("total_payments + ?", payment),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return bizerr.ErrInvalidChat
	}
	return nil
}

func (r *ChatRepository) ListByUser(ctx context.Context, address string) ([]*model.ChatThread, error) {
	var chats []*model.ChatThread
	err := r.db.WithContext(ctx).
		Where("user_a = ? OR user_b = ?", address, address).
		Order("last_message_at DESC").
		Find(&chats).Error
	return chats, err
}
