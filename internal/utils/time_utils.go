package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/logger"
)

var timeUnits = []struct {
	suffix string
	unit   time.Duration
}{
	{"s", time.Second},
	{"m", time.Minute},
	{"h", time.Hour},
	{"d", 24 * time.Hour},
}

// ParseDuration 解析 "10s" "5m" "1h" "2d" 形式的时间字符串
func ParseDuration(timeString string) (time.Duration, error) {
	timeString = strings.ToLower(strings.TrimSpace(timeString))
	for _, u := range timeUnits {
		if cutString, found := strings.CutSuffix(timeString, u.suffix); found {
			number, err := strconv.Atoi(cutString)
			if err != nil {
				return 0, fmt.Errorf("invalid time format %q: %w", timeString, err)
			}
			if number < 0 {
				return 0, fmt.Errorf("invalid time format %q: negative", timeString)
			}
			return time.Duration(number) * u.unit, nil
		}
	}
	return 0, fmt.Errorf("invalid time format %q", timeString)
}

// ParseStringTime 解析失败时记录错误并返回0
func ParseStringTime(timeString string) time.Duration {
	duration, err := ParseDuration(timeString)
	if err != nil {
		logger.ErrorF("Error parsing time string: %s", err.Error())
		return 0
	}
	return duration
}
