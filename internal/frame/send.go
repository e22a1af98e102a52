package frame

import (
	"strings"

	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/stomp"
)

// NewSendFrame 创建 SEND 帧
func NewSendFrame(destination string, body string) stomp.Frame {
	return stomp.NewFrame(stomp.SEND, body,
		stomp.Header{Key: HeaderDestination, Value: destination},
	)
}

// MessageFrame MESSAGE 帧中客户端关心的字段
type MessageFrame struct {
	Destination  string
	Channel      string
	Subscription string
	MessageID    string
	Body         string
}

// ParseMessageFrame 解析 MESSAGE 帧, 频道名去掉一个前导 "/"
func ParseMessageFrame(f stomp.Frame) MessageFrame {
	destination, _ := f.Header(HeaderDestination)
	subscription, _ := f.Header(HeaderSubscription)
	messageID, _ := f.Header(HeaderMessageID)
	return MessageFrame{
		Destination:  destination,
		Channel:      ChannelName(destination),
		Subscription: subscription,
		MessageID:    messageID,
		Body:         f.Body,
	}
}

// ChannelName 去掉目的地的一个前导 "/"
func ChannelName(destination string) string {
	return strings.TrimPrefix(destination, "/")
}

// Destination 使用给定前缀构造目的地
func Destination(prefix, channel string) string {
	return prefix + channel
}
