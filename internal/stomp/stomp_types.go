// Package stomp 实现了STOMP文本协议的帧类型定义与编解码
package stomp

// Command 定义了STOMP帧的命令类型
type Command int

// STOMP 帧命令常量定义
const (
	UNKNOWN Command = iota // 未识别的命令

	// 客户端 -> 服务器
	CONNECT     // 请求建立会话
	SUBSCRIBE   // 订阅频道
	UNSUBSCRIBE // 取消订阅
	SEND        // 向频道发送消息
	DISCONNECT  // 请求断开

	// 服务器 -> 客户端
	CONNECTED // 会话建立确认
	ERROR     // 错误, 会话随即终止
	RECEIPT   // 回执
	MESSAGE   // 频道消息
)

// CommandMap 将Command映射到其线上表示
var CommandMap = map[Command]string{
	CONNECT:     "CONNECT",
	SUBSCRIBE:   "SUBSCRIBE",
	UNSUBSCRIBE: "UNSUBSCRIBE",
	SEND:        "SEND",
	DISCONNECT:  "DISCONNECT",
	CONNECTED:   "CONNECTED",
	ERROR:       "ERROR",
	RECEIPT:     "RECEIPT",
	MESSAGE:     "MESSAGE",
}

var commandByName = func() map[string]Command {
	result := make(map[string]Command, len(CommandMap))
	for command, name := range CommandMap {
		result[name] = command
	}
	return result
}()

// String 返回Command的线上表示
func (command Command) String() string {
	if name, ok := CommandMap[command]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsOutbound 客户端是否会发送该命令
func (command Command) IsOutbound() bool {
	return command >= CONNECT && command <= DISCONNECT
}

// IsInbound 服务器是否会发送该命令
func (command Command) IsInbound() bool {
	return command >= CONNECTED && command <= MESSAGE
}

// ParseCommand 将命令行解析为Command, 无法识别时返回UNKNOWN
func ParseCommand(name string) Command {
	if command, ok := commandByName[name]; ok {
		return command
	}
	return UNKNOWN
}

// Terminator 帧结束符
const Terminator byte = 0x00

// Header 帧头, 保留出现顺序
type Header struct {
	Key   string
	Value string
}

// Frame 定义了完整的STOMP帧结构
type Frame struct {
	Command Command  // 命令
	Name    string   // 线上的原始命令行
	Headers []Header // 按出现顺序排列的帧头
	Body    string   // 帧体
}

// NewFrame 创建一个帧
func NewFrame(command Command, body string, headers ...Header) Frame {
	return Frame{
		Command: command,
		Name:    command.String(),
		Headers: headers,
		Body:    body,
	}
}

// Header 返回第一个名为name的帧头的值
func (f Frame) Header(name string) (string, bool) {
	return GetHeader(name, f.Headers)
}
