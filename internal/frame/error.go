package frame

import (
	"strings"

	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/stomp"
)

// ParseErrorFrame 提取 ERROR 帧中的错误描述
// 优先使用 message 帧头, 其次是帧体, 最后拼接全部帧头
func ParseErrorFrame(f stomp.Frame) string {
	if message, ok := f.Header(HeaderMessage); ok && strings.TrimSpace(message) != "" {
		return strings.TrimSpace(message)
	}
	if body := strings.TrimSpace(f.Body); body != "" {
		return body
	}
	lines := make([]string, 0, len(f.Headers))
	for _, header := range f.Headers {
		lines = append(lines, header.Key+":"+header.Value)
	}
	return strings.Join(lines, "\n")
}
