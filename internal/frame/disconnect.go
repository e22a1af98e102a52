package frame

import "github.com/life-stream-dev/life-stream-go-stomp-client/internal/stomp"

// NewDisconnectFrame 创建 DISCONNECT 帧, 断开在收到对应回执后才算完成
func NewDisconnectFrame(receiptID string) stomp.Frame {
	return stomp.NewFrame(stomp.DISCONNECT, "",
		stomp.Header{Key: HeaderReceipt, Value: receiptID},
	)
}

// ParseReceiptFrame 读取 RECEIPT 帧的 receipt-id
func ParseReceiptFrame(f stomp.Frame) (string, bool) {
	id, ok := f.Header(HeaderReceiptID)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
