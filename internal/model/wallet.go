package model

import (
	"time"
)

// Wallet 钱包表
// 资金划转协作方的可支配余额账本。与 Account.TotalReceived（应收/可提现）分开：
// 钱包里的钱才是真正可以花出去的。平台托管池也是一个普通钱包行。
type Wallet struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Address string `gorm:"type:varchar(64);uniqueIndex;not null" json:"address"`
	Balance int64  `gorm:"not null;default:0" json:"balance"`
	Version int    `gorm:"not null;default:0" json:"version"` // 乐观锁版本号

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallet"
}

const (
	FlowKindRegistration = "REGISTRATION" // 注册防垃圾费
	FlowKindEscrow       = "ESCROW"       // 消息支付入托管池
	FlowKindWithdraw     = "WITHDRAW"     // 用户提现
	FlowKindPlatformFee  = "PLATFORM_FEE" // 平台费提取
	FlowKindDeposit      = "DEPOSIT"      // 充值入账
)

// WalletFlow 资金流水表
// 记录每一笔钱包间划转，只追加、不修改、不删除，是对账的核心依据
type WalletFlow struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	FlowNo      string `gorm:"type:varchar(64);uniqueIndex;not null" json:"flow_no"`
	FromAddress string `gorm:"type:varchar(64);index;not null" json:"from_address"`
	ToAddress   string `gorm:"type:varchar(64);index;not null" json:"to_address"`
	Amount      int64  `gorm:"not null" json:"amount"`
	Kind        string `gorm:"type:varchar(20);not null" json:"kind"`
	Remark      string `gorm:"type:varchar(256)" json:"remark"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (WalletFlow) TableName() string {
	return "wallet_flow"
}
