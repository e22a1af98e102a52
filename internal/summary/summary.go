// Package summary 计算并渲染 (频道, 用户) 的事件摘要报告
package summary

import (
	"cmp"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/event"
)

// MaxDescriptionLength 摘要中描述的最大字符数
const MaxDescriptionLength = 27

const ellipsis = "..."

type Summary struct {
	Channel        string
	User           string
	Total          int
	Active         int
	ArrivedAtScene int
	Events         []event.Event // 已排序
}

// Compute 统计事件并按时间, 再按事件名称排序
// 传入的切片不会被修改
func Compute(channel, user string, events []event.Event) Summary {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b event.Event) int {
		return cmp.Or(cmp.Compare(a.DateTime, b.DateTime), cmp.Compare(a.Name, b.Name))
	})

	result := Summary{
		Channel: channel,
		User:    user,
		Total:   len(sorted),
		Events:  sorted,
	}
	for _, ev := range sorted {
		if ev.IsFlagSet(event.InfoActive) {
			result.Active++
		}
		if ev.IsFlagSet(event.InfoForcesArrivalAtScene) {
			result.ArrivedAtScene++
		}
	}
	return result
}

// Truncate 超过27个字符时截断并追加 "..."
func Truncate(description string) string {
	runes := []rune(description)
	if len(runes) <= MaxDescriptionLength {
		return description
	}
	return string(runes[:MaxDescriptionLength]) + ellipsis
}

func Render(s Summary) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Channel %s\n", s.Channel)
	builder.WriteString("Stats:\n")
	fmt.Fprintf(&builder, "Total: %d\n", s.Total)
	fmt.Fprintf(&builder, "active: %d\n", s.Active)
	fmt.Fprintf(&builder, "forces arrival at scene: %d\n\n", s.ArrivedAtScene)

	if len(s.Events) == 0 {
		return builder.String()
	}

	builder.WriteString("Event Reports:\n")
	for i, ev := range s.Events {
		fmt.Fprintf(&builder, "Report_%d:\n", i+1)
		fmt.Fprintf(&builder, "city: %s\n", ev.City)
		fmt.Fprintf(&builder, "date time: %s\n", event.FormatDateTime(ev.DateTime))
		fmt.Fprintf(&builder, "event name: %s\n", ev.Name)
		fmt.Fprintf(&builder, "summary: %s\n", Truncate(ev.Description))
		builder.WriteString("\n")
	}
	return builder.String()
}

// WriteFile 覆盖写入摘要文件, 父目录必须存在
func WriteFile(path string, s Summary) error {
	if err := os.WriteFile(path, []byte(Render(s)), 0644); err != nil {
		return fmt.Errorf("write summary %s: %w", path, err)
	}
	return nil
}
