// Package store 提供按实体 ID 索引的结果存储
package store

import (
	"sync"
	"sync/atomic"
)

// Keyed 写时复制的键值存储
// 每次 Put 复制整张表后原子替换，读取方拿到的快照永远不会被修改
type Keyed[T any] struct {
	mu   sync.Mutex // 串行化写入，读取无锁
	snap atomic.Pointer[map[string]T]
}

func NewKeyed[T any]() *Keyed[T] {
	k := &Keyed[T]{}
	empty := map[string]T{}
	k.snap.Store(&empty)
	return k
}

// Put 替换单个键的值
func (k *Keyed[T]) Put(key string, v T) {
	k.mu.Lock()
	defer k.mu.Unlock()

	cur := *k.snap.Load()
	next := make(map[string]T, len(cur)+1)
	for ck, cv := range cur {
		next[ck] = cv
	}
	next[key] = v
	k.snap.Store(&next)
}

func (k *Keyed[T]) Get(key string) (T, bool) {
	v, ok := (*k.snap.Load())[key]
	return v, ok
}

// Snapshot 当前快照，调用方只读
func (k *Keyed[T]) Snapshot() map[string]T {
	return *k.snap.Load()
}

func (k *Keyed[T]) Len() int {
	return len(*k.snap.Load())
}
