// Package subscription 维护频道名与订阅ID之间的双向映射
package subscription

import (
	"maps"
	"slices"
)

// Registry 频道 <-> 订阅ID 的双射
// 不带锁, 由会话的互斥锁保护
type Registry struct {
	byChannel map[string]uint64
	byID      map[uint64]string
}

func NewRegistry() *Registry {
	return &Registry{
		byChannel: make(map[string]uint64),
		byID:      make(map[uint64]string),
	}
}

// Subscribe 订阅频道, 已订阅时返回原有ID且isNew为false
// nextID 仅在需要分配新ID时调用
func (r *Registry) Subscribe(channel string, nextID func() uint64) (id uint64, isNew bool) {
	if id, ok := r.byChannel[channel]; ok {
		return id, false
	}
	id = nextID()
	// 计数器单调递增, 理论上不会冲突
	if old, ok := r.byID[id]; ok {
		delete(r.byChannel, old)
	}
	r.byChannel[channel] = id
	r.byID[id] = channel
	return id, true
}

// Unsubscribe 同时移除两个方向的映射
func (r *Registry) Unsubscribe(channel string) (id uint64, found bool) {
	id, found = r.byChannel[channel]
	if !found {
		return 0, false
	}
	delete(r.byChannel, channel)
	delete(r.byID, id)
	return id, true
}

func (r *Registry) Lookup(channel string) (uint64, bool) {
	id, ok := r.byChannel[channel]
	return id, ok
}

func (r *Registry) Channel(id uint64) (string, bool) {
	channel, ok := r.byID[id]
	return channel, ok
}

// Channels 按字典序返回已订阅的频道
func (r *Registry) Channels() []string {
	return slices.Sorted(maps.Keys(r.byChannel))
}

func (r *Registry) Len() int {
	return len(r.byChannel)
}

// Clear 断开连接时清空
func (r *Registry) Clear() {
	clear(r.byChannel)
	clear(r.byID)
}
