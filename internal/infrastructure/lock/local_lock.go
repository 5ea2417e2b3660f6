package lock

import (
	"context"
	"sync"
	"time"
)

// LocalLocker 进程内互斥锁实现，语义与 Redis 版一致（按 key 互斥、持有者校验），
// 供单进程部署和测试使用
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]string // key -> owner
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]string)}
}

func (l *LocalLocker) tryLock(key, owner string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return false
	}
	l.held[key] = owner
	return true
}

func (l *LocalLocker) Lock(ctx context.Context, key, owner string) error {
	for {
		if l.tryLock(key, owner) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
}

func (l *LocalLocker) Unlock(ctx context.Context, key, owner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == owner {
		delete(l.held, key)
	}
	return nil
}
