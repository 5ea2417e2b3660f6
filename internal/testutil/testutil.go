package testutil

import (
	"testing"

	"github.com/Dorcaemmanuel/PeerPayChat/internal/config"
	"github.com/Dorcaemmanuel/PeerPayChat/internal/infrastructure/database"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB 打开内存 SQLite 并迁移全部表结构
// 限制单连接，避免多个连接各自打开一份独立的内存库
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// NewConfig 测试用业务配置，注册费默认为 0，需要时在用例里覆盖
func NewConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Business.OwnerAddress = "addr_owner"
	cfg.Business.EscrowAddress = "addr_escrow"
	cfg.Business.RegistrationFee = 0
	cfg.Business.MaxRetryCount = 3
	cfg.Kafka.Topic.MessageSent = "test.message.sent"
	cfg.Kafka.Topic.PaymentSettled = "test.payment.settled"
	return cfg
}
