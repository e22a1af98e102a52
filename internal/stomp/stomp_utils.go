package stomp

import (
	"errors"
	"strings"
)

// ErrEmptyFrame 输入中没有任何命令行
var ErrEmptyFrame = errors.New("stomp: empty frame")

// Encode 将帧编码为线上字节: 命令行, 帧头, 空行, 帧体, 结束符
func Encode(f Frame) []byte {
	name := f.Name
	if f.Command != UNKNOWN || name == "" {
		name = f.Command.String()
	}

	var builder strings.Builder
	builder.Grow(len(name) + len(f.Body) + 16*len(f.Headers) + 3)
	builder.WriteString(name)
	builder.WriteByte('\n')
	for _, header := range f.Headers {
		builder.WriteString(header.Key)
		builder.WriteByte(':')
		builder.WriteString(header.Value)
		builder.WriteByte('\n')
	}
	builder.WriteByte('\n')
	builder.WriteString(f.Body)
	builder.WriteByte(Terminator)
	return []byte(builder.String())
}

// Decode 解析一个帧, 帧体为第一个空行之后的全部内容
func Decode(raw []byte) (Frame, error) {
	text := string(raw)
	text = strings.TrimSuffix(text, string(Terminator))
	// 帧之间允许出现心跳换行
	text = strings.TrimLeft(text, "\r\n")
	if strings.TrimSpace(text) == "" {
		return Frame{}, ErrEmptyFrame
	}

	line, rest, more := strings.Cut(text, "\n")
	name := strings.TrimRight(line, "\r")
	result := Frame{
		Command: ParseCommand(name),
		Name:    name,
		Headers: make([]Header, 0, 4),
	}

	for more {
		line, rest, more = strings.Cut(rest, "\n")
		line = strings.TrimRight(line, "\r")
		if line == "" {
			if more {
				result.Body = rest
			}
			return result, nil
		}
		key, value, _ := strings.Cut(line, ":")
		result.Headers = append(result.Headers, Header{Key: key, Value: value})
	}

	return result, nil
}

// GetHeader 按出现顺序返回第一个键为name的帧头的值
func GetHeader(name string, headers []Header) (string, bool) {
	for _, header := range headers {
		if header.Key == name {
			return header.Value, true
		}
	}
	return "", false
}
