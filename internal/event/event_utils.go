package event

import (
	"errors"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ErrMissingField 消息体缺少必要字段
var ErrMissingField = errors.New("missing field")

// DateTimeLayout 摘要中的时间格式
const DateTimeLayout = "02/01/06 15:04"

// ParseMessageBody 解析 MESSAGE 帧体
// 未知字段被忽略, 除 date time 外的字段缺失时保持零值
func ParseMessageBody(body string) (Event, error) {
	result := Event{Info: make(map[string]string)}
	lines := strings.Split(body, "\n")
	// Split 会在结尾换行后多出一个空串
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	hasDateTime := false
	inGeneralInfo := false
	for i := 0; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], "\r")
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}

		// 附加信息段内以空白开头的行
		if inGeneralInfo && (strings.HasPrefix(key, " ") || strings.HasPrefix(key, "\t")) {
			result.Info[strings.TrimSpace(key)] = strings.TrimSpace(value)
			continue
		}
		inGeneralInfo = false

		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case KeyUser:
			result.Owner = value
		case KeyChannel:
			result.Channel = value
		case KeyCity:
			result.City = value
		case KeyEventName:
			result.Name = value
		case KeyDateTime:
			dateTime, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return Event{}, &ParseError{Field: KeyDateTime, Value: value, Cause: err}
			}
			result.DateTime = dateTime
			hasDateTime = true
		case KeyGeneralInfo:
			inGeneralInfo = true
		case KeyDescription:
			var builder strings.Builder
			for _, rest := range lines[i+1:] {
				builder.WriteString(rest)
				builder.WriteByte('\n')
			}
			result.Description = builder.String()
			i = len(lines)
		}
	}

	if !hasDateTime {
		return Event{}, &ParseError{Field: KeyDateTime, Cause: ErrMissingField}
	}
	return result, nil
}

// FormatForSend 生成 SEND 帧体, 字段顺序和名称是其他客户端解析的依据
func (e Event) FormatForSend(currentUser string) string {
	var builder strings.Builder
	writeField(&builder, KeyUser, currentUser)
	writeField(&builder, KeyCity, e.City)
	writeField(&builder, KeyEventName, e.Name)
	writeField(&builder, KeyDateTime, strconv.FormatInt(e.DateTime, 10))
	builder.WriteString(KeyGeneralInfo + ":\n")
	for _, key := range slices.Sorted(maps.Keys(e.Info)) {
		builder.WriteString("  ")
		writeField(&builder, key, e.Info[key])
	}
	builder.WriteString(KeyDescription + ":\n")
	builder.WriteString(e.Description)
	return builder.String()
}

// FormatDateTime 以本地时区格式化Unix秒
func FormatDateTime(epochSeconds int64) string {
	return time.Unix(epochSeconds, 0).Local().Format(DateTimeLayout)
}

func writeField(builder *strings.Builder, key, value string) {
	builder.WriteString(key)
	builder.WriteString(": ")
	builder.WriteString(value)
	builder.WriteByte('\n')
}
