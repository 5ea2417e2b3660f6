package model

import (
	"time"
)

// PlatformStatsID 全局统计单行记录的固定主键
const PlatformStatsID = 1

// PlatformStats 平台全局计数器（单行表）
// 只由核心的可变更操作修改，对外统计查询只读
type PlatformStats struct {
	ID                 int64 `gorm:"primaryKey" json:"-"`
	TotalUsers         int64 `gorm:"not null;default:0" json:"total_users"`
	TotalMessages      int64 `gorm:"not null;default:0" json:"total_messages"`
	PlatformEarnings   int64 `gorm:"not null;default:0" json:"platform_earnings"`    // 已累计的平台费（2%）
	SpamPreventionPool int64 `gorm:"not null;default:0" json:"spam_prevention_pool"` // 注册防垃圾费累计

	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PlatformStats) TableName() string {
	return "platform_stats"
}
