package frame

import (
	"strconv"

	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/stomp"
)

// NewSubscribeFrame 创建 SUBSCRIBE 帧
func NewSubscribeFrame(destination string, subscriptionID uint64, receiptID string) stomp.Frame {
	return stomp.NewFrame(stomp.SUBSCRIBE, "",
		stomp.Header{Key: HeaderDestination, Value: destination},
		stomp.Header{Key: HeaderID, Value: strconv.FormatUint(subscriptionID, 10)},
		stomp.Header{Key: HeaderReceipt, Value: receiptID},
	)
}

// NewUnsubscribeFrame 创建 UNSUBSCRIBE 帧
func NewUnsubscribeFrame(subscriptionID uint64, receiptID string) stomp.Frame {
	return stomp.NewFrame(stomp.UNSUBSCRIBE, "",
		stomp.Header{Key: HeaderID, Value: strconv.FormatUint(subscriptionID, 10)},
		stomp.Header{Key: HeaderReceipt, Value: receiptID},
	)
}
