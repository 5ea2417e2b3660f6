package service

import (
	"context"
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

// UserService 身份注册中心
// 一个地址一个账户，用户名与地址一一对应
type UserService struct {
	db           *gorm.DB
	locker       lock.Locker
	clk          clock.Clock
	cfg          *config.Config
	accountRepo  *repository.AccountRepository
	settingsRepo *repository.SettingsRepository
	walletRepo   *repository.WalletRepository
	statsRepo    *repository.StatsRepository
}

func NewUserService(db *gorm.DB, locker lock.Locker, clk clock.Clock, cfg *config.Config) *UserService {
	return &UserService{
		db:           db,
		locker:       locker,
		clk:          clk,
		cfg:          cfg,
		accountRepo:  repository.NewAccountRepository(db),
		settingsRepo: repository.NewSettingsRepository(db),
		walletRepo:   repository.NewWalletRepository(db),
		statsRepo:    repository.NewStatsRepository(db),
	}
}

type RegisterRequest struct {
	Address      string
	Username     string
	DisplayName  string
	MessagePrice int64
}

// Register 注册账户
// 收取配置的防垃圾注册费（从钱包划入托管池），与账户创建同一个事务：
// 钱包余额不足时注册整体失败，不会留下半个账户
func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*model.Account, error) {
	// 用户名格式校验：空或超长的用户名永远不可注册。
	// HTTP 层的参数绑定会先拦一道，这里保证直接调用服务也守住约束
	if req.Username == "" || len(req.Username) > 30 {
		return nil, bizerr.ErrNotAuthorized
	}
	if req.MessagePrice < 0 {
		return nil, bizerr.ErrInvalidPayment
	}

	key := lock.AccountKey(req.Address)
	owner := fmt.Sprintf("register-%d", idgen.NextID())
	if err := s.locker.Lock(ctx, key, owner); err != nil {
		return nil, fmt.Errorf("系统繁忙，请稍后重试: %w", err)
	}
	defer s.locker.Unlock(ctx, key, owner)

	exists, err := s.accountRepo.Exists(ctx, req.Address)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, bizerr.ErrAlreadyExists
	}

	taken, err := s.accountRepo.UsernameExists(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, bizerr.ErrUsernameTaken
	}

	tick := s.clk.Tick()
	account := &model.Account{
		Address:         req.Address,
		Username:        req.Username,
		DisplayName:     req.DisplayName,
		MessagePrice:    req.MessagePrice,
		ReputationScore: 100,
		JoinedAt:        tick,
		LastActive:      tick,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		fee := s.cfg.Business.RegistrationFee
		if fee > 0 {
			err := s.walletRepo.Transfer(ctx, tx,
				req.Address, s.cfg.Business.EscrowAddress, fee,
				model.FlowKindRegistration, "注册防垃圾费")
			if err != nil {
				return err
			}
			if err := s.statsRepo.AddSpamPool(ctx, tx, fee); err != nil {
				return err
			}
		}

		if err := s.accountRepo.Create(ctx, tx, account); err != nil {
			return err
		}

		settings := &model.UserSettings{
			Address:               req.Address,
			AllowStrangerMessages: true,
			NotificationsEnabled:  true,
		}
		if err := s.settingsRepo.Create(ctx, tx, settings); err != nil {
			return err
		}

		return s.statsRepo.AddUsers(ctx, tx, 1)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("注册成功: address=%s, username=%s", req.Address, req.Username)
	return account, nil
}

func (s *UserService) GetByAddress(ctx context.Context, address string) (*model.Account, error) {
	return s.accountRepo.GetByAddress(ctx, address)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	return s.accountRepo.GetByUsername(ctx, username)
}

// UpdateProfile 更新展示资料（简单字段读写）
func (s *UserService) UpdateProfile(ctx context.Context, address, displayName, bio, avatarURL string) error {
	return s.accountRepo.UpdateProfile(ctx, address, displayName, bio, avatarURL)
}

func (s *UserService) GetSettings(ctx context.Context, address string) (*model.UserSettings, error) {
	exists, err := s.accountRepo.Exists(ctx, address)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, bizerr.ErrUserNotFound
	}
	return s.settingsRepo.Get(ctx, address)
}

func (s *UserService) UpdateSettings(ctx context.Context, settings *model.UserSettings) error {
	exists, err := s.accountRepo.Exists(ctx, settings.Address)
	if err != nil {
		return err
	}
	if !exists {
		return bizerr.ErrUserNotFound
	}
	return s.settingsRepo.Save(ctx, settings)
}

// SetPremiumStatus 设置会员标记，仅限配置的管理员地址调用
func (s *UserService) SetPremiumStatus(ctx context.Context, caller, target string, premium bool) error {
	if caller != s.cfg.Business.OwnerAddress {
		return bizerr.ErrNotAuthorized
	}
	return s.accountRepo.SetPremium(ctx, target, premium)
}
