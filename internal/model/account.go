package model

import (
	"time"
)

// Account 用户账户表
// 记录注册身份的收付款累计值，是整个付费消息系统的核心数据
//
// TotalReceived 既是累计收款额，也是当前可提现余额；提现会扣减它。
// ReputationScore 初始化后不再变化，留作后续信誉体系使用。
type Account struct {
	ID              int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Address         string `gorm:"type:varchar(64);uniqueIndex;not null" json:"address"`  // 链上风格地址，一个地址一个账户
	Username        string `gorm:"type:varchar(30);uniqueIndex;not null" json:"username"` // 用户名，全局唯一，不超过30字符
	DisplayName     string `gorm:"type:varchar(64)" json:"display_name"`
	Bio             string `gorm:"type:varchar(256)" json:"bio"`
	AvatarURL       string `gorm:"type:varchar(256)" json:"avatar_url"`
	MessagePrice    int64  `gorm:"not null;default:0" json:"message_price"`     // 陌生人给该账户发消息需要支付的价格
	TotalReceived   int64  `gorm:"not null;default:0" json:"total_received"`    // 累计收款（净额），同时是可提现余额
	TotalSent       int64  `gorm:"not null;default:0" json:"total_sent"`        // 累计付款（总额）
	MessageCount    int64  `gorm:"not null;default:0" json:"message_count"`     // 发送消息条数
	ReputationScore int    `gorm:"not null;default:100" json:"reputation_score"` // 预留字段，核心操作不修改
	IsPremium       bool   `gorm:"not null;default:false" json:"is_premium"`
	JoinedAt        int64  `gorm:"not null" json:"joined_at"`   // 注册时刻（单调时钟刻度）
	LastActive      int64  `gorm:"not null" json:"last_active"` // 最近活跃时刻（单调时钟刻度）

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string {
	return "account"
}

// UserSettings 用户设置表
//
// AutoDeleteMessages / MessageRetentionDays 仅存储，当前没有任何操作依据它们
// 执行清理，留作后续保留策略使用。
type UserSettings struct {
	ID                          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Address                     string `gorm:"type:varchar(64);uniqueIndex;not null" json:"address"`
	AllowStrangerMessages       bool   `gorm:"not null;default:true" json:"allow_stranger_messages"`         // 是否允许非联系人发消息
	RequirePaymentFromStrangers bool   `gorm:"not null;default:false" json:"require_payment_from_strangers"` // 非联系人发消息是否必须按 MessagePrice 付费
	NotificationsEnabled        bool   `gorm:"not null;default:true" json:"notifications_enabled"`
	AutoDeleteMessages          bool   `gorm:"not null;default:false" json:"auto_delete_messages"`
	MessageRetentionDays        int    `gorm:"not null;default:0" json:"message_retention_days"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserSettings) TableName() string {
	return "user_settings"
}
