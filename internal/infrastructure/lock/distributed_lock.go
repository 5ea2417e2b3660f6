package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dorcaemmanuel/PeerPayChat/internal/model"

	"github.com/go-redis/redis/v8"
)

// ============================================================================
// 互斥锁
// ============================================================================
//
// 每个可变更操作在进入数据库事务前，先拿到覆盖其共享状态的互斥锁：
// 发消息/建会话按"无序地址对"加锁，提现按账户加锁。同一对用户的两次发送
// 不会交错执行；不同用户对之间互不影响。
//
// 加锁：SET key value NX EX timeout
//   - NX: 只有 key 不存在时才设置（保证互斥）
//   - EX: 设置过期时间（防止死锁）
//   - value: 锁持有者标识（释放时验证，防止误删别人的锁）
//
// 释放锁：Lua 脚本保证"检查+删除"的原子性
//
// ============================================================================

var (
	ErrLockFailed = errors.New("获取互斥锁失败")
)

// Locker 互斥锁抽象：生产环境走 Redis，测试环境用进程内实现
type Locker interface {
	Lock(ctx context.Context, key, owner string) error
	Unlock(ctx context.Context, key, owner string) error
}

// ============================================================
// 锁 key 约定
// ============================================================

// ChatPairKey 无序地址对锁，发消息和建会话共用
func ChatPairKey(a, b string) string {
	return fmt.Sprintf("chat:lock:%s", model.PairKey(a, b))
}

// AccountKey 单账户锁，提现/注册用
func AccountKey(address string) string {
	return fmt.Sprintf("account:lock:%s", address)
}

// ============================================================
// Redis 实现
// ============================================================

type RedisLocker struct {
	client        *redis.Client
	expiration    time.Duration
	retryInterval time.Duration
	maxRetries    int
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{
		client:        client,
		expiration:    30 * time.Second,
		retryInterval: 100 * time.Millisecond,
		maxRetries:    30,
	}
}

func (l *RedisLocker) tryLock(ctx context.Context, key, owner string) (bool, error) {
	return l.client.SetNX(ctx, key, owner, l.expiration).Result()
}

// Lock 阻塞式获取锁（带重试）
func (l *RedisLocker) Lock(ctx context.Context, key, owner string) error {
	for i := 0; i < l.maxRetries; i++ {
		success, err := l.tryLock(ctx, key, owner)
		if err != nil {
			return err
		}
		if success {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.retryInterval):
		}
	}
	return ErrLockFailed
}

// Unlock 释放锁，只有持有者能删掉自己的 key
func (l *RedisLocker) Unlock(ctx context.Context, key, owner string) error {
	script := `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		else
			return 0
		end
	`
	_, err := l.client.Eval(ctx, script, []string{key}, owner).Result()
	return err
}
