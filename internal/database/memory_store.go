package database

import (
	"cmp"
	"slices"

	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/event"
)

// Key 事件存储的复合键
type Key struct {
	Channel string
	User    string
}

// MemoryStore 按 (频道, 用户) 保存事件, 按到达顺序追加
// 不带锁, 由会话的互斥锁保护
type MemoryStore struct {
	events map[Key][]event.Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[Key][]event.Event)}
}

func (ms *MemoryStore) Append(channel, user string, ev event.Event) {
	key := Key{Channel: channel, User: user}
	ms.events[key] = append(ms.events[key], ev)
}

// Query 返回事件序列的副本, 键不存在时返回空序列
func (ms *MemoryStore) Query(channel, user string) []event.Event {
	events := ms.events[Key{Channel: channel, User: user}]
	result := make([]event.Event, len(events))
	copy(result, events)
	return result
}

// Keys 返回全部键, 先按频道再按用户排序
func (ms *MemoryStore) Keys() []Key {
	keys := make([]Key, 0, len(ms.events))
	for key := range ms.events {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b Key) int {
		return cmp.Or(cmp.Compare(a.Channel, b.Channel), cmp.Compare(a.User, b.User))
	})
	return keys
}

// Len 全部事件数量
func (ms *MemoryStore) Len() int {
	total := 0
	for _, events := range ms.events {
		total += len(events)
	}
	return total
}
