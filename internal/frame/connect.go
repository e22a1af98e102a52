// Package frame 构造客户端发送的STOMP帧并解析服务器返回的帧
package frame

import (
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/stomp"
)

// 帧头名称
const (
	HeaderAcceptVersion = "accept-version"
	HeaderHost          = "host"
	HeaderLogin         = "login"
	HeaderPasscode      = "passcode"
	HeaderVersion       = "version"
	HeaderDestination   = "destination"
	HeaderID            = "id"
	HeaderReceipt       = "receipt"
	HeaderReceiptID     = "receipt-id"
	HeaderMessage       = "message"
	HeaderMessageID     = "message-id"
	HeaderSubscription  = "subscription"
)

// NewConnectFrame 创建 CONNECT 帧
func NewConnectFrame(acceptVersion, host, login, passcode string) stomp.Frame {
	return stomp.NewFrame(stomp.CONNECT, "",
		stomp.Header{Key: HeaderAcceptVersion, Value: acceptVersion},
		stomp.Header{Key: HeaderHost, Value: host},
		stomp.Header{Key: HeaderLogin, Value: login},
		stomp.Header{Key: HeaderPasscode, Value: passcode},
	)
}

// ParseConnectedFrame 返回服务器协商的协议版本
func ParseConnectedFrame(f stomp.Frame) string {
	version, _ := f.Header(HeaderVersion)
	return version
}
