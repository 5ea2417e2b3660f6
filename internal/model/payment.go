package model

import (
	"time"
)

const (
	PaymentTypeTip        = "TIP"         // 发送方主动附带了支付
	PaymentTypeMessageFee = "MESSAGE_FEE" // 仅因策略要求产生的支付
)

// PaymentRecord 消息支付记录表
// 与携带非零支付的消息一一对应；无支付的消息没有记录。写入后不可变。
type PaymentRecord struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	MessageID   uint64 `gorm:"uniqueIndex;not null" json:"message_id"`
	Amount      int64  `gorm:"not null" json:"amount"` // 支付总额（含平台费）
	Sender      string `gorm:"type:varchar(64);index;not null" json:"sender"`
	Recipient   string `gorm:"type:varchar(64);index;not null" json:"recipient"`
	PlatformFee int64  `gorm:"not null" json:"platform_fee"`
	PaymentType string `gorm:"type:varchar(20);not null" json:"payment_type"`
	ProcessedAt int64  `gorm:"not null" json:"processed_at"` // 单调时钟刻度

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PaymentRecord) TableName() string {
	return "payment_record"
}
