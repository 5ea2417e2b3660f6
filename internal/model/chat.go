package model

import (
	"fmt"
	"time"
)

// ChatThread 会话表
// 两个账户之间的唯一会话。一对地址最多创建一次，创建后永不删除。
//
// PairKey 是无序地址对的规范化 key（字典序小者在前），用唯一索引保证
// 同一对用户不会出现第二个会话，两个方向的查询都落到同一行。
type ChatThread struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement" json:"chat_id"`
	PairKey       string `gorm:"type:varchar(130);uniqueIndex;not null" json:"-"`
	UserA         string `gorm:"type:varchar(64);index;not null" json:"user_a"` // 创建时的发起方
	UserB         string `gorm:"type:varchar(64);index;not null" json:"user_b"`
	CreatedTick   int64  `gorm:"not null" json:"created_tick"`
	LastMessageAt int64  `gorm:"not null" json:"last_message_at"`
	MessageCount  int64  `gorm:"not null;default:0" json:"message_count"`
	TotalPayments int64  `gorm:"not null;default:0" json:"total_payments"` // 会话内累计支付总额

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ChatThread) TableName() string {
	return "chat_thread"
}

// PairKey 计算无序地址对的规范化 key
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%s|%s", a, b)
}

// HasParticipant 判断地址是否是会话参与方
func (c *ChatThread) HasParticipant(addr string) bool {
	return c.UserA == addr || c.UserB == addr
}
