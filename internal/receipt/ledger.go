// Package receipt 记录等待服务器回执的客户端动作
package receipt

import (
	"maps"
	"slices"
)

// Kind 动作类型
type Kind int

const (
	Joined Kind = iota
	Exited
	Disconnect
)

// Action 回执到达时要完成的动作
type Action struct {
	Kind    Kind
	Channel string
}

func (a Action) String() string {
	switch a.Kind {
	case Joined:
		return "Joined channel " + a.Channel
	case Exited:
		return "Exited channel " + a.Channel
	case Disconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

// Ledger 回执ID -> 待完成动作, 每个ID只能被消费一次
type Ledger struct {
	pending map[string]Action
}

func NewLedger() *Ledger {
	return &Ledger{pending: make(map[string]Action)}
}

func (l *Ledger) Track(id string, action Action) {
	l.pending[id] = action
}

// Resolve 消费回执ID, 未知ID返回found=false
func (l *Ledger) Resolve(id string) (action Action, found bool) {
	action, found = l.pending[id]
	if found {
		delete(l.pending, id)
	}
	return action, found
}

// Pending 按回执ID排序返回尚未确认的动作
func (l *Ledger) Pending() []string {
	return slices.Sorted(maps.Keys(l.pending))
}

func (l *Ledger) Len() int {
	return len(l.pending)
}

func (l *Ledger) Clear() {
	clear(l.pending)
}
