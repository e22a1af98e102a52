package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Record 报告文件中的一条事件记录
type Record struct {
	EventName   string            `json:"event_name"`
	City        string            `json:"city"`
	DateTime    int64             `json:"date_time"`
	Description string            `json:"description"`
	Info        map[string]string `json:"-"`

	RawInfo map[string]json.RawMessage `json:"general_information"`
}

// Report 报告文件内容
type Report struct {
	Channel string   `json:"channel_name"`
	Events  []Record `json:"events"`
}

// LoadReport 读取并解析报告文件
func LoadReport(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, err
	}
	return ParseReport(data)
}

// ParseReport 解析报告文件内容, 非字符串的附加信息保留其JSON文本
func ParseReport(data []byte) (Report, error) {
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return Report{}, fmt.Errorf("decode report: %w", err)
	}
	if report.Channel == "" {
		return Report{}, fmt.Errorf("decode report: %w: channel_name", ErrMissingField)
	}

	for i := range report.Events {
		record := &report.Events[i]
		record.Info = make(map[string]string, len(record.RawInfo))
		for key, raw := range record.RawInfo {
			var text string
			if err := json.Unmarshal(raw, &text); err == nil {
				record.Info[key] = text
				continue
			}
			var compact bytes.Buffer
			if err := json.Compact(&compact, raw); err != nil {
				return Report{}, fmt.Errorf("decode report: general_information %q: %w", key, err)
			}
			record.Info[key] = compact.String()
		}
		record.RawInfo = nil
	}
	return report, nil
}
