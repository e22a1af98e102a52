// Package session 实现了客户端协议状态机: 命令处理, 服务器帧处理与会话生命周期
package session

import (
	"errors"
	"strings"
	"time"

	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/event"
)

// State 会话状态
type State int

const (
	Disconnected State = iota // 未连接
	Connecting                // 已发送 CONNECT, 等待 CONNECTED
	LoggedIn                  // 已登录
)

var StateMap = map[State]string{
	Disconnected: "Disconnected",
	Connecting:   "Connecting",
	LoggedIn:     "LoggedIn",
}

func (s State) String() string {
	if name, ok := StateMap[s]; ok {
		return name
	}
	return "Unknown"
}

// Command 用户命令
type Command int

const (
	UNKNOWN Command = iota
	LOGIN
	JOIN
	EXIT
	REPORT
	SUMMARY
	LOGOUT
)

var CommandMap = map[string]Command{
	"login":   LOGIN,
	"join":    JOIN,
	"exit":    EXIT,
	"report":  REPORT,
	"summary": SUMMARY,
	"logout":  LOGOUT,
}

// commandUsages 参数数量与用法提示
var commandUsages = map[Command]struct {
	args  int
	usage string
}{
	LOGIN:   {3, "Invalid login command. Usage: login {host:port} {username} {password}"},
	JOIN:    {1, "Invalid join command. Usage: join {channel}"},
	EXIT:    {1, "Invalid exit command. Usage: exit {channel}"},
	REPORT:  {1, "Invalid report command. Usage: report {json_path}"},
	SUMMARY: {3, "Invalid summary command. Usage: summary {channel} {user} {file}"},
	LOGOUT:  {0, "Invalid logout command. Usage: logout"},
}

// 用户可见的提示
const (
	msgNotConnected      = "Not connected to server. Please login first."
	msgAlreadyLoggedIn   = "The client is already logged in, log out before trying again"
	msgInvalidHostPort   = "Invalid host:port format"
	msgCouldNotConnect   = "Could not connect to server"
	msgLoginSuccessful   = "Login successful"
	msgLoggedOut         = "Logged out"
	msgSendFailed        = "Error sending frame"
	msgSummaryWritten    = "Summary written to file"
	msgReportFileHint    = "Make sure the file exists and is in the correct path"
	msgAlreadySubscribed = "Already subscribed to channel "
	msgNotSubscribed     = "Not subscribed to channel "
)

// ErrNotConnected 当前没有可用的传输, 命令处理可以继续
var ErrNotConnected = errors.New("not connected")

// UsageError 命令格式错误或在错误的状态下使用命令
type UsageError struct {
	Command string
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// CommandLine 解析后的命令行
type CommandLine struct {
	Command Command
	Name    string
	Args    []string
}

// ParseCommandLine 按空白切分命令行, 空行返回false
func ParseCommandLine(line string) (CommandLine, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return CommandLine{}, false
	}
	return CommandLine{
		Command: CommandMap[fields[0]],
		Name:    fields[0],
		Args:    fields[1:],
	}, true
}

// Validate 检查命令是否可识别以及参数数量
func (c CommandLine) Validate() error {
	if c.Command == UNKNOWN {
		return &UsageError{Command: c.Name, Message: "Unknown command: " + c.Name}
	}
	usage := commandUsages[c.Command]
	// logout 忽略多余参数
	if c.Command == LOGOUT || len(c.Args) == usage.args {
		return nil
	}
	return &UsageError{Command: c.Name, Message: usage.usage}
}

// EventSink 接收会话保存的事件, 例如归档
type EventSink interface {
	Enqueue(channel, user string, ev event.Event) bool
}

// ReportLoader 读取报告文件
type ReportLoader func(path string) (event.Report, error)

// Options 会话参数
type Options struct {
	AcceptVersion     string
	Host              string
	DestinationPrefix string
	DedupeSize        int
	DedupeTTL         time.Duration
	Sink              EventSink
	LoadReport        ReportLoader
}
