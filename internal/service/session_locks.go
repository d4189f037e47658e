package service

import "github.com/moby/locker"

// SessionLocks 按会话串行化购物车与收藏夹的读-改-写
// 没有持有者与等待者的锁会被回收
type SessionLocks struct {
	locks *locker.Locker
}

// NewSessionLocks 创建会话锁集合
func NewSessionLocks() *SessionLocks {
	return &SessionLocks{locks: locker.New()}
}

// Lock 获取会话锁，返回解锁函数
func (l *SessionLocks) Lock(sessionID string) func() {
	l.locks.Lock(sessionID)
	return func() {
		_ = l.locks.Unlock(sessionID)
	}
}
