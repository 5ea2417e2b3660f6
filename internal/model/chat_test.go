package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPairKey(t *testing.T) {
	// 规范化地址对：与参数顺序无关
	assert.Equal(t, PairKey("addr_a", "addr_b"), PairKey("addr_b", "addr_a"))
	assert.Equal(t, "addr_a|addr_b", PairKey("addr_b", "addr_a"))
	assert.NotEqual(t, PairKey("addr_a", "addr_b"), PairKey("addr_a", "addr_c"))
}

func TestHasParticipant(t *testing.T) {
	chat := &ChatThread{UserA: "addr_a", UserB: "addr_b"}
	assert.True(t, chat.HasParticipant("addr_a"))
	assert.True(t, chat.HasParticipant("addr_b"))
	assert.False(t, chat.HasParticipant("addr_c"))
}
