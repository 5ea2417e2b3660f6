package repository

import (
	"context"

	"github.com/Dorcaemmanuel/PeerPayChat/internal/model"
	"github.com/Dorcaemmanuel/PeerPayChat/pkg/bizerr"

	"gorm.io/gorm"
)

type RelationRepository struct {
	db *gorm.DB
}

func NewRelationRepository(db *gorm.DB) *RelationRepository {
	return &RelationRepository{db: db}
}

// ============================================================
// 联系人（只影响定价策略）
// ============================================================

func (r *RelationRepository) AddContact(ctx context.Context, subject, target string) error {
	exists, err := r.IsContact(ctx, subject, target)
	if err != nil {
		return err
	}
	if exists {
		return bizerr.ErrAlreadyExists
	}
	return r.db.WithContext(ctx).Create(&model.ContactEntry{Subject: subject, Target: target}).Error
}

func (r *RelationRepository) RemoveContact(ctx context.Context, subject, target string) error {
	return r.db.WithContext(ctx).
		Where("subject = ? AND target = ?", subject, target).
		Delete(&model.ContactEntry{}).Error
}

func (r *RelationRepository) IsContact(ctx context.Context, subject, target string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ContactEntry{}).
		Where("subject = ? AND target = ?", subject, target).
		Count(&count).Error
	return count > 0, err
}

// ============================================================
// 拉黑（权限控制）
// ============================================================

func (r *RelationRepository) AddBlock(ctx context.Context, subject, target string) error {
	exists, err := r.IsBlocked(ctx, subject, target)
	if err != nil {
		return err
	}
	if exists {
		return bizerr.ErrAlreadyExists
	}
	return r.db.WithContext(ctx).Create(&model.BlockEntry{Subject: subject, Target: target}).Error
}

func (r *RelationRepository) RemoveBlock(ctx context.Context, subject, target string) error {
	return r.db.WithContext(ctx).
		Where("subject = ? AND target = ?", subject, target).
		Delete(&model.BlockEntry{}).Error
}

// IsBlocked 单向检查：subject 是否拉黑了 target
func (r *RelationRepository) IsBlocked(ctx context.Context, subject, target string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.BlockEntry{}).
		Where("subject = ? AND target = ?", subject, target).
		Count(&count).Error
	return count > 0, err
}

// IsBlockedEither 双向检查：任意一方拉黑另一方即为真
func (r *RelationRepository) IsBlockedEither(ctx context.Context, a, b string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.BlockEntry{}).
		Where("(subject = ? AND target = ?) OR (subject = ? AND target = ?)", a, b, b, a).
		Count(&count).Error
	return count > 0, err
}
