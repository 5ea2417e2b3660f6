package repository

import (
	"context"
	"errors"

	"github.com/Dorcaemmanuel/PeerPayChat/internal/model"
	"github.com/Dorcaemmanuel/PeerPayChat/pkg/bizerr"

	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, tx *gorm.DB, msg *model.Message) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(msg).Error
}

func (r *MessageRepository) GetByID(ctx context.Context, messageID uint64) (*model.Message, error) {
	var msg model.Message
	err := r.db.WithContext(ctx).Where("id = ?", messageID).First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerr.ErrMessageNotFound
		}
		return nil, err
	}
	return &msg, nil
}

// MarkRead 标记已读——消息唯一允许的变更
func (r *MessageRepository) MarkRead(ctx context.Context, tx *gorm.DB, messageID uint64) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).Model(&model.Message{}).
		Where("id = ?", messageID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return bizerr.ErrMessageNotFound
	}
	return nil
}

func (r *MessageRepository) ListByChat(ctx context.Context, chatID uint64, page, pageSize int) ([]*model.Message, int64, error) {
	// 分页参数钳制到合法范围，负偏移量在 MySQL 上是语法错误
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	var messages []*model.Message
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Message{}).Where("chat_id = ?", chatID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&messages).Error

	return messages, total, err
}
