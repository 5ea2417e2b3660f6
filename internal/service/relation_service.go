package service

import (
	"context"

	"github.com/Dorcaemmanuel/PeerPayChat/internal/repository"
	"github.com/Dorcaemmanuel/PeerPayChat/pkg/bizerr"

	"gorm.io/gorm"
)

// RelationService 关系图谱
// 联系人只影响陌生人定价；拉黑才是权限控制，消息接收前双向生效
type RelationService struct {
	accountRepo  *repository.AccountRepository
	relationRepo *repository.RelationRepository
}

func NewRelationService(db *gorm.DB) *RelationService {
	return &RelationService{
		accountRepo:  repository.NewAccountRepository(db),
		relationRepo: repository.NewRelationRepository(db),
	}
}

func (s *RelationService) checkPair(ctx context.Context, subject, target string) error {
	if subject == target {
		return bizerr.ErrNotAuthorized
	}
	for _, addr := range []string{subject, target} {
		exists, err := s.accountRepo.Exists(ctx, addr)
		if err != nil {
			return err
		}
		if !exists {
			return bizerr.ErrUserNotFound
		}
	}
	return nil
}

func (s *RelationService) AddContact(ctx context.Context, subject, target string) error {
	if err := s.checkPair(ctx, subject, target); err != nil {
		return err
	}
	return s.relationRepo.AddContact(ctx, subject, target)
}

func (s *RelationService) RemoveContact(ctx context.Context, subject, target string) error {
	if err := s.checkPair(ctx, subject, target); err != nil {
		return err
	}
	return s.relationRepo.RemoveContact(ctx, subject, target)
}

func (s *RelationService) BlockUser(ctx context.Context, subject, target string) error {
	if err := s.checkPair(ctx, subject, target); err != nil {
		return err
	}
	return s.relationRepo.AddBlock(ctx, subject, target)
}

func (s *RelationService) UnblockUser(ctx context.Context, subject, target string) error {
	if err := s.checkPair(ctx, subject, target); err != nil {
		return err
	}
	return s.relationRepo.RemoveBlock(ctx, subject, target)
}

func (s *RelationService) IsContact(ctx context.Context, subject, target string) (bool, error) {
	return s.relationRepo.IsContact(ctx, subject, target)
}

func (s *RelationService) IsBlocked(ctx context.Context, subject, target string) (bool, error) {
	return s.relationRepo.IsBlocked(ctx, subject, target)
}
