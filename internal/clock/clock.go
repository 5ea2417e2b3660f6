package clock

import (
	"sync/atomic"
	"time"
)

// Clock 单调时钟刻度提供方
// 账户活跃时刻、消息时间戳等字段只依赖刻度的单调递增，不依赖墙钟语义
type Clock interface {
	Tick() int64
}

// SystemClock 以毫秒时间戳作为刻度
type SystemClock struct{}

func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

func (SystemClock) Tick() int64 {
	return time.Now().UnixMilli()
}

// ManualClock 手动推进的时钟，每次读取自增 1，测试用
type ManualClock struct {
	tick int64
}

func NewManualClock(start int64) *ManualClock {
	return &ManualClock{tick: start}
}

func (c *ManualClock) Tick() int64 {
	return atomic.AddInt64(&c.tick, 1)
}
