package bizerr

import "errors"

// ============================================================================
// 业务错误定义
// ============================================================================
//
// 所有可变更操作只会返回下面这组错误之一（或成功）。
// 错误是输入和当前状态的确定性函数：没有重试分类，也没有部分提交——
// 失败的调用不会在任何表里留下痕迹。
//
// ============================================================================

var (
	ErrNotAuthorized     = errors.New("无权执行该操作")
	ErrUserNotFound      = errors.New("用户不存在")
	ErrMessageNotFound   = errors.New("消息不存在")
	ErrInvalidPayment    = errors.New("支付金额不合法")
	ErrMessageTooLong    = errors.New("消息内容超长")
	ErrUsernameTaken     = errors.New("用户名已被占用")
	ErrInsufficientFunds = errors.New("余额不足")
	ErrBlockedUser       = errors.New("对方已拉黑，无法操作")
	ErrInvalidChat       = errors.New("会话不存在")
	ErrAlreadyExists     = errors.New("记录已存在")
)

// 业务错误码，供 HTTP 响应层使用
const (
	CodeNotAuthorized     = 2001
	CodeUserNotFound      = 2002
	CodeMessageNotFound   = 2003
	CodeInvalidPayment    = 2004
	CodeMessageTooLong    = 2005
	CodeUsernameTaken     = 2006
	CodeInsufficientFunds = 2007
	CodeBlockedUser       = 2008
	CodeInvalidChat       = 2009
	CodeAlreadyExists     = 2010
)

var codeTable = []struct {
	err  error
	code int
}{
	{ErrNotAuthorized, CodeNotAuthorized},
	{ErrUserNotFound, CodeUserNotFound},
	{ErrMessageNotFound, CodeMessageNotFound},
	{ErrInvalidPayment, CodeInvalidPayment},
	{ErrMessageTooLong, CodeMessageTooLong},
	{ErrUsernameTaken, CodeUsernameTaken},
	{ErrInsufficientFunds, CodeInsufficientFunds},
	{ErrBlockedUser, CodeBlockedUser},
	{ErrInvalidChat, CodeInvalidChat},
	{ErrAlreadyExists, CodeAlreadyExists},
}

// CodeOf 返回业务错误对应的错误码，非业务错误返回 0
func CodeOf(err error) int {
	for _, entry := range codeTable {
		if errors.Is(err, entry.err) {
			return entry.code
		}
	}
	return 0
}

// IsBizError 判断是否属于封闭的业务错误集合
func IsBizError(err error) bool {
	return CodeOf(err) != 0
}
