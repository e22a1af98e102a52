// Package connection 实现了与STOMP服务器之间的TCP传输
package connection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/logger"
)

var (
	ErrFrameTooLarge = errors.New("frame exceeds maximum size")
	ErrClosed        = errors.New("transport closed")
)

// Dialer 建立到服务器的传输
type Dialer interface {
	Dial(ctx context.Context, address string) (Transport, error)
}

// Transport 以0字节分隔的帧传输
type Transport interface {
	SendFrame(data []byte) error
	// ReceiveFrame 返回不含结束符的一帧
	ReceiveFrame() ([]byte, error)
	Close() error
	ID() string
}

// ConnectionError 连接, 发送或接收失败
type ConnectionError struct {
	Message string
	Cause   error
}

func (e *ConnectionError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

func IsNetClosedError(err error) bool {
	if errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, ErrClosed) {
		return true
	}
	var opErr *net.OpError
	ok := errors.As(err, &opErr)
	return ok && opErr.Timeout()
}

// HandleReadError 记录读取错误并返回给用户的提示
func HandleReadError(connID string, err error) string {
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		logger.InfoF("[%s] Server close connection", connID)
		return "Connection closed by server"
	case IsNetClosedError(err):
		logger.DebugF("[%s] Connection closed locally", connID)
		return "Connection closed"
	case os.IsTimeout(err):
		logger.WarnF("[%s] Reading timeout", connID)
		return "Connection timed out"
	default:
		logger.ErrorF("[%s] Error occured while reading frame, details: %v", connID, err)
		return "Connection error"
	}
}
