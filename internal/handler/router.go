package handler

import (
	"github.com/Dorcaemmanuel/PeerPayChat/internal/clock"
	"github.com/Dorcaemmanuel/PeerPayChat/internal/config"
	"github.com/Dorcaemmanuel/PeerPayChat/internal/infrastructure/lock"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter 配置路由
func SetupRouter(db *gorm.DB, locker lock.Locker, clk clock.Clock, cfg *config.Config) *gin.Engine {
	// 设置 gin 为发布模式（减少日志输出）
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// 注册中间件
	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())

	// 创建处理器
	h := NewHandler(db, locker, clk, cfg)

	// API 路由组
	api := r.Group("/api/v1")
	{
		// 用户相关
		user := api.Group("/user")
		{
			user.POST("/register", h.Register)
			user.GET("/profile", h.GetProfile)
			user.POST("/profile", h.UpdateProfile)
			user.GET("/by-username", h.GetByUsername)
			user.GET("/settings", h.GetSettings)
			user.POST("/settings", h.UpdateSettings)
			user.POST("/premium", h.SetPremium)
			user.POST("/withdraw", h.Withdraw)
		}

		// 钱包相关
		wallet := api.Group("/wallet")
		{
			wallet.GET("/balance", h.GetWalletBalance)
			wallet.POST("/deposit", h.Deposit)
			wallet.GET("/flows", h.ListWalletFlows)
		}

		// 关系相关
		contact := api.Group("/contact")
		{
			contact.POST("/add", h.AddContact)
			contact.POST("/remove", h.RemoveContact)
		}
		block := api.Group("/block")
		{
			block.POST("/add", h.BlockUser)
			block.POST("/remove", h.UnblockUser)
		}

		// 会话相关
		chat := api.Group("/chat")
		{
			chat.POST("/create", h.CreateChat)
			chat.GET("/detail", h.GetChat)
			chat.GET("/list", h.ListChats)
		}

		// 消息相关
		message := api.Group("/message")
		{
			message.POST("/send", h.SendMessage)
			message.POST("/read", h.MarkRead)
			message.GET("/detail", h.GetMessage)
			message.GET("/payment", h.GetMessagePayment)
			message.GET("/list", h.ListMessages)
		}

		// 平台相关
		platform := api.Group("/platform")
		{
			platform.GET("/stats", h.GetPlatformStats)
			platform.POST("/withdraw", h.WithdrawPlatformFees)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
