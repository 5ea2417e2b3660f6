package handler

import (
	"strconv"

	"github.com/Dorcaemmanuel/PeerPayChat/internal/clock"
	"github.com/Dorcaemmanuel/PeerPayChat/internal/config"
	"github.com/Dorcaemmanuel/PeerPayChat/internal/infrastructure/lock"
	"github.com/Dorcaemmanuel/PeerPayChat/internal/model"
	"github.com/Dorcaemmanuel/PeerPayChat/internal/service"
	"github.com/Dorcaemmanuel/PeerPayChat/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler 统一处理器，包含所有服务依赖
// 调用方身份由请求里的 address 字段给出（合约调用风格，认证不在范围内）
type Handler struct {
	userService     *service.UserService
	relationService *service.RelationService
	chatService     *service.ChatService
	messageService  *service.MessageService
	paymentService  *service.PaymentService
	walletService   *service.WalletService
}

// NewHandler 创建处理器实例
func NewHandler(db *gorm.DB, locker lock.Locker, clk clock.Clock, cfg *config.Config) *Handler {
	return &Handler{
		userService:     service.NewUserService(db, locker, clk, cfg),
		relationService: service.NewRelationService(db),
		chatService:     service.NewChatService(db, locker, clk),
		messageService:  service.NewMessageService(db, locker, clk, cfg),
		paymentService:  service.NewPaymentService(db, locker, cfg),
		walletService:   service.NewWalletService(db),
	}
}

// ============================================================
// 用户相关接口
// ============================================================

// RegisterRequest 注册请求
type RegisterRequest struct {
	Address      string `json:"address" binding:"required"`
	Username     string `json:"username" binding:"required,max=30"`
	DisplayName  string `json:"display_name"`
	MessagePrice int64  `json:"message_price"` // 陌生人发消息的定价，可以为 0
}

// Register 注册账户
// POST /api/v1/user/register
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	account, err := h.userService.Register(c.Request.Context(), &service.RegisterRequest{
		Address:      req.Address,
		Username:     req.Username,
		DisplayName:  req.DisplayName,
		MessagePrice: req.MessagePrice,
	})
	if err != nil {
		response.BizError(c, err)
		return
	}

	response.Success(c, account)
}

// GetProfile 按地址查账户
// GET /api/v1/user/profile?address=xxx
func (h *Handler) GetProfile(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		response.ParamError(c, "address 参数不能为空")
		return
	}

	account, err := h.userService.GetByAddress(c.Request.Context(), address)
	if err != nil {
		response.BizError(c, err)
		return
	}

	response.Success(c, account)
}

// GetByUsername 按用户名查账户
// GET /api/v1/user/by-username?username=xxx
func (h *Handler) GetByUsername(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		response.ParamError(c, "username 参数不能为空")
		return
	}

	account, err := h.userService.GetByUsername(c.Request.Context(), username)
	if err != nil {
		response.BizError(c, err)
		return
	}

	response.Success(c, account)
}

// UpdateProfileRequest 资料更新请求
type UpdateProfileRequest struct {
	Address     string `json:"address" binding:"required"`
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio" binding:"max=256"`
	AvatarURL   string `json:"avatar_url" binding:"max=256"`
}

// UpdateProfile 更新展示资料
// POST /api/v1/user/profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	err := h.userService.UpdateProfile(c.Request.Context(), req.Address, req.DisplayName, req.Bio, req.AvatarURL)
	if err != nil {
		response.BizError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "资料已更新"})
}

// GetSettings 查询用户设置
// GET /api/v1/user/settings?address=xxx
func (h *Handler) GetSettings(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		response.ParamError(c, "address 参数不能为空")
		return
	}

	settings, err := h.userService.GetSettings(c.Request.Context(), address)
	if err != nil {
		response.BizError(c, err)
		return
	}

	response.Success(c, settings)
}

// UpdateSettingsRequest 设置更新请求
type UpdateSettingsRequest struct {
	Address                     string `json:"address" binding:"required"`
	AllowStrangerMessages       *bool  `json:"allow_stranger_messages" binding:"required"`
	RequirePaymentFromStrangers *bool  `json:"require_payment_from_strangers" binding:"required"`
	NotificationsEnabled        *bool  `json:"notifications_enabled" binding:"required"`
	AutoDeleteMessages          bool   `json:"auto_delete_messages"`
	MessageRetentionDays        int    `json:"message_retention_days"`
}

// UpdateSettings 更新用户设置
// POST /api/v1/user/settings
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	settings := &model.UserSettings{
		Address:                     req.Address,
		AllowStrangerMessages:       *req.AllowStrangerMessages,
		RequirePaymentFromStrangers: *req.RequirePaymentFromStrangers,
		NotificationsEnabled:        *req.NotificationsEnabled,
		AutoDeleteMessages:          req.AutoDeleteMessages,
		MessageRetentionDays:        req.MessageRetentionDays,
	}
	if err := h.userService.UpdateSettings(c.Request.Context(), settings); err != nil {
		response.BizError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "设置已更新"})
}

// SetPremiumRequest 会员标记请求（仅管理员）
type SetPremiumRequest struct {
	Caller  string `json:"caller" binding:"required"`
	Target  string `json:"target" binding:"required"`
	Premium *bool  `json:"premium" binding:"required"`
}

// SetPremium 设置会员标记
// POST /api/v1/user/premium
func (h *Handler) SetPremium(c *gin.Context) {
	var req SetPremiumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	err := h.userService.SetPremiumStatus(c.Request.Context(), req.Caller, req.Target, *req.Premium)
	if err != nil {
		response.BizError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "会员状态已更新"})
}

// ============================================================
// 钱包相关接口
// ============================================================

// GetWalletBalance 查询钱包余额
// GET /api/v1/wallet/balance?address=xxx
func (h *Handler) GetWalletBalance(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		response.ParamError(c, "address 参数不能为空")
		return
	}

	balance, err := h.walletService.GetBalance(c.Request.Context(), address)
	if err != nil {
		response.BizError(c, err)
		return
	}

	response.Success(c, gin.H{
		"address": address,
		"balance": balance,
	})
}

// DepositRequest 充值请求
type DepositRequest struct {
	Address string `json:"address" binding:"required"`
	Amount  int64  `json:"amount" binding:"required,gt=0"`
}

// Deposit 充值接口（简化版，实际应该走支付渠道）
// POST /api/v1/wallet/deposit
func (h *Handler) Deposit(c *gin.Context) {
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	if err := h.walletService.Deposit(c.Request.Context(), req.Address, req.Amount); err != nil {
		response.BizError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "充值成功"})
}

// ListWalletFlows 查询资金流水
// GET /api/v1/wallet/flows?address=xxx&limit=20
func (h *Handler) ListWalletFlows(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		response.ParamError(c, "address 参数不能为空")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	flows, err := h.walletService.ListFlows(c.Request.Context(), address, limit)
	if err != nil {
		response.BizError(c, err)
		return
	}

	response.Success(c, gin.H{"list": flows})
}

// ============================================================
// 关系相关接口
// ============================================================

// RelationRequest 关系操作请求（联系人/拉黑共用）
type RelationRequest struct {
	Subject string `json:"subject" binding:"required"`
	Target  string `json:"target" binding:"required"`
}

// AddContact 添加联系人
// POST /api/v1/contact/add
func (h *Handler) AddContact(c *gin.Context) {
	var req RelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	if err := h.relationService.AddContact(c.Request.Context(), req.Subject, req.Target); err != nil {
		response.BizError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "联系人已添加"})
}

// RemoveContact 移除联系人
// POST /api/v1/contact/remove
func (h *Handler) RemoveContact(c *gin.Context) {
	var req RelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	if err := h.relationService.RemoveContact(c.Request.Context(), req.Subject, req.Target); err != nil {
		response.BizError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "联系人已移除"})
}

// BlockUser 拉黑用户
// POST /api/v1/block/add
func (h *Handler) BlockUser(c *gin.Context) {
	var req RelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	if err := h.relationService.BlockUser(c.Request.Context(), req.Subject, req.Target); err != nil {
		response.BizError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "已拉黑"})
}

// UnblockUser 取消拉黑
// POST /api/v1/block/remove
func (h *Handler) UnblockUser(c *gin.Context) {
	var req RelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	if err := h.relationService.UnblockUser(c.Request.Context(), req.Subject, req.Target); err != nil {
		response.BizError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "已取消拉黑"})
}

// ============================================================
// 会话相关接口
// ============================================================

// CreateChatRequest 会话创建请求
type CreateChatRequest struct {
	Sender    string `json:"sender" binding:"required"`
	Recipient string `json:"recipient" binding:"required"`
}

// CreateChat 解析或创建会话（幂等）
// POST /api/v1/chat/create
func (h *Handler) CreateChat(c *gin.Context) {
	var req CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	chatID, err := h.chatService.ResolveOrCreate(c.Request.Context(), req.Sender, req.Recipient)
	if err != nil {
		response.BizError(c, err)
		return
	}

	response.Success(c, gin.H{"chat_id": chatID})
}

// GetChat 查询会话详情
// GET /api/v1/chat/detail?chat_id=xxx
func (h *Handler) GetChat(c *gin.Context) {
	chatID, err := strconv.ParseUint(c.Query("chat_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "chat_id 参数错误")
		return
	}

	chat, err := h.chatService.GetChat(c.Request.Context(), chatID)
	if err != nil {
		response.BizError(c, err)
		return
	}

	response.Success(c, chat)
}

// ListChats 查询用户会话列表
// GET /api/v1/chat/list?address=xxx
func (h *Handler) ListChats(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		response.ParamError(c, "address 参数不能为空")
		return
	}

	chats, err := h.chatService.ListUserChats(c.Request.Context(), address)
	if err != nil {
		response.BizError(c, err)
		return
	}

	response.Success(c, gin.H{"list": chats})
}

// ============================================================
// 消息相关接口
// ============================================================

// SendMessageRequest 发消息请求
type SendMessageRequest struct {
	Sender        string  `json:"sender" binding:"required"`
	Recipient     string  `json:"recipient" binding:"required"`
	ContentRef    string  `json:"content_ref" binding:"required"`
	MsgType       string  `json:"msg_type"`
	PaymentAmount int64   `json:"payment_amount"` // 主动附带的支付，可以为 0
	Encrypted     bool    `json:"encrypted"`
	ReplyTo       *uint64 `json:"reply_to"`
	Metadata      string  `json:"metadata"`
}

// SendMessage 发送消息
// POST /api/v1/message/send
//
// 【关键点】发送是整个系统最核心的操作，需要保证：
// 1. 原子性：消息、会话聚合、双方账户、支付记录、全局计数要么全部落库要么全不落库
// 2. 权限：拉黑关系在任何支付之前生效
// 3. 并发安全：同一对用户的发送通过地址对锁串行执行
func (h *Handler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	messageID, err := h.messageService.Send(c.Request.Context(), &service.SendRequest{
		Sender:        req.Sender,
		Recipient:     req.Recipient,
		ContentRef:    req.ContentRef,
		MsgType:       req.MsgType,
		PaymentAmount: req.PaymentAmount,
		Encrypted:     req.Encrypted,
		ReplyTo:       req.ReplyTo,
		Metadata:      req.Metadata,
	})
	if err != nil {
		response.BizError(c, err)
		return
	}

	response.Success(c, gin.H{"message_id": messageID})
}

// MarkReadRequest 标记已读请求
type MarkReadRequest struct {
	MessageID uint64 `json:"message_id" binding:"required"`
	Caller    string `json:"caller" binding:"required"`
}

// MarkRead 标记消息已读（仅收件人）
// POST /api/v1/message/read
func (h *Handler) MarkRead(c *gin.Context) {
	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	if err := h.messageService.MarkRead(c.Request.Context(), req.MessageID, req.Caller); err != nil {
		response.BizError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "已标记为已读"})
}

// GetMessage 查询消息详情
// GET /api/v1/message/detail?message_id=xxx
func (h *Handler) GetMessage(c *gin.Context) {
	messageID, err := strconv.ParseUint(c.Query("message_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "message_id 参数错误")
		return
	}

	msg, err := h.messageService.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		response.BizError(c, err)
		return
	}

	response.Success(c, msg)
}

// GetMessagePayment 查询消息的支付记录
// GET /api/v1/message/payment?message_id=xxx
func (h *Handler) GetMessagePayment(c *gin.Context) {
	messageID, err := strconv.ParseUint(c.Query("message_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "message_id 参数错误")
		return
	}

	record, err := h.messageService.GetPaymentRecord(c.Request.Context(), messageID)
	if err != nil {
		response.BizError(c, err)
		return
	}

	response.Success(c, record)
}

// ListMessages 查询会话消息列表
// GET /api/v1/message/list?chat_id=xxx&page=1&page_size=20
func (h *Handler) ListMessages(c *gin.Context) {
	chatID, err := strconv.ParseUint(c.Query("chat_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "chat_id 参数错误")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	messages, total, err := h.messageService.ListChatMessages(c.Request.Context(), chatID, page, pageSize)
	if err != nil {
		response.BizError(c, err)
		return
	}

	response.Success(c, gin.H{
		"list":      messages,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// WithdrawRequest 提现请求
type WithdrawRequest struct {
	Address string `json:"address" binding:"required"`
	Amount  int64  `json:"amount" binding:"required"`
}

// Withdraw 用户提现
// POST /api/v1/user/withdraw
func (h *Handler) Withdraw(c *gin.Context) {
	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	if err := h.messageService.Withdraw(c.Request.Context(), req.Address, req.Amount); err != nil {
		response.BizError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "提现成功"})
}

// ============================================================
// 平台相关接口
// ============================================================

// GetPlatformStats 查询平台全局统计
// GET /api/v1/platform/stats
func (h *Handler) GetPlatformStats(c *gin.Context) {
	stats, err := h.paymentService.GetPlatformStats(c.Request.Context())
	if err != nil {
		response.BizError(c, err)
		return
	}

	response.Success(c, stats)
}

// PlatformWithdrawRequest 平台费提取请求（仅管理员）
type PlatformWithdrawRequest struct {
	Caller string `json:"caller" binding:"required"`
	Amount int64  `json:"amount" binding:"required"`
}

// WithdrawPlatformFees 提取平台费
// POST /api/v1/platform/withdraw
func (h *Handler) WithdrawPlatformFees(c *gin.Context) {
	var req PlatformWithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	if err := h.paymentService.WithdrawPlatformFees(c.Request.Context(), req.Caller, req.Amount); err != nil {
		response.BizError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "平台费已提取"})
}
