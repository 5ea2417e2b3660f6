package model

import (
	"time"
)

const (
	MaxContentRefLen = 64  // 内容引用（哈希/指针）最大长度，内容本体不落库
	MaxMetadataLen   = 200 // 附加元数据最大长度
)

const (
	MsgTypeText  = "TEXT"
	MsgTypeMedia = "MEDIA"
)

// Message 消息表
// 除 IsRead 外全部字段写入后不可变；消息 ID 全局单调递增、从 1 开始、永不复用。
//
// Payment 记录该消息最终提交的支付总额（用户主动支付 + 策略要求的部分）。
// ReplyTo 为可空引用，不用哨兵值。
type Message struct {
	ID          uint64  `gorm:"primaryKey;autoIncrement" json:"message_id"`
	ChatID      uint64  `gorm:"index;not null" json:"chat_id"`
	Sender      string  `gorm:"type:varchar(64);index;not null" json:"sender"`
	Recipient   string  `gorm:"type:varchar(64);index;not null" json:"recipient"`
	ContentRef  string  `gorm:"type:varchar(64);not null" json:"content_ref"` // 不透明内容引用，核心从不解析
	MsgType     string  `gorm:"type:varchar(20);not null" json:"msg_type"`
	Payment     int64   `gorm:"not null;default:0" json:"payment"`
	Timestamp   int64   `gorm:"not null" json:"timestamp"` // 单调时钟刻度
	IsRead      bool    `gorm:"not null;default:false" json:"is_read"`
	IsEncrypted bool    `gorm:"not null;default:false" json:"is_encrypted"`
	ReplyTo     *uint64 `gorm:"default:null" json:"reply_to,omitempty"`
	Metadata    string  `gorm:"type:varchar(200)" json:"metadata"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Message) TableName() string {
	return "message"
}
