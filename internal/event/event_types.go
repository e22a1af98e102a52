// Package event 定义了频道事件及其在消息体, 报告文件和摘要中的表示
package event

import (
	"fmt"
	"maps"
)

// 消息体中的字段名称
const (
	KeyUser        = "user"
	KeyChannel     = "channel name"
	KeyCity        = "city"
	KeyEventName   = "event name"
	KeyDateTime    = "date time"
	KeyGeneralInfo = "general information"
	KeyDescription = "description"
)

// 常用的附加信息字段
const (
	InfoActive               = "active"
	InfoForcesArrivalAtScene = "forces_arrival_at_scene"
)

// Event 频道事件, 构造后不再修改
type Event struct {
	Channel     string            // 频道名称
	City        string            // 城市
	Name        string            // 事件名称
	DateTime    int64             // 事件时间, Unix秒
	Description string            // 描述
	Info        map[string]string // 附加信息
	Owner       string            // 上报用户
}

// NewEvent 使用报告文件中的记录创建事件
func NewEvent(channel string, record Record, owner string) Event {
	return Event{
		Channel:     channel,
		City:        record.City,
		Name:        record.EventName,
		DateTime:    record.DateTime,
		Description: record.Description,
		Info:        maps.Clone(record.Info),
		Owner:       owner,
	}
}

// InfoValue 读取附加信息字段
func (e Event) InfoValue(key string) (string, bool) {
	value, ok := e.Info[key]
	return value, ok
}

// InfoCopy 返回附加信息的副本
func (e Event) InfoCopy() map[string]string {
	if e.Info == nil {
		return map[string]string{}
	}
	return maps.Clone(e.Info)
}

// IsFlagSet 附加信息字段是否为字面量 "true"
func (e Event) IsFlagSet(key string) bool {
	return e.Info[key] == "true"
}

// ParseError 消息体解析失败
type ParseError struct {
	Field string
	Value string
	Cause error
}

func (e *ParseError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("event: invalid %s %q", e.Field, e.Value)
	}
	return fmt.Sprintf("event: invalid %s %q: %v", e.Field, e.Value, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
