package model

import (
	"time"
)

// ContactEntry 联系人关系（有向）
// 只影响陌生人定价策略，不做权限控制
type ContactEntry struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Subject string `gorm:"type:varchar(64);not null;uniqueIndex:idx_contact_pair" json:"subject"`
	Target  string `gorm:"type:varchar(64);not null;uniqueIndex:idx_contact_pair" json:"target"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ContactEntry) TableName() string {
	return "contact_entry"
}

// BlockEntry 拉黑关系（有向）
// 会话创建时双向检查：任意一方拉黑另一方，会话即被拒绝
type BlockEntry struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Subject string `gorm:"type:varchar(64);not null;uniqueIndex:idx_block_pair" json:"subject"`
	Target  string `gorm:"type:varchar(64);not null;uniqueIndex:idx_block_pair" json:"target"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (BlockEntry) TableName() string {
	return "block_entry"
}
