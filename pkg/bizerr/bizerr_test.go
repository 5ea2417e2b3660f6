package bizerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, 2001, CodeOf(ErrNotAuthorized))
	assert.Equal(t, 2002, CodeOf(ErrUserNotFound))
	assert.Equal(t, 2007, CodeOf(ErrInsufficientFunds))

	// 包装后仍能识别
	wrapped := fmt.Errorf("查询失败: %w", ErrUserNotFound)
	assert.Equal(t, 2002, CodeOf(wrapped))

	// 未知错误
	assert.Equal(t, 0, CodeOf(errors.New("其他错误")))
	assert.Equal(t, 0, CodeOf(nil))
}

func TestIsBizError(t *testing.T) {
	assert.True(t, IsBizError(ErrBlockedUser))
	assert.True(t, IsBizError(fmt.Errorf("包装: %w", ErrInvalidChat)))
	assert.False(t, IsBizError(errors.New("其他错误")))
}
