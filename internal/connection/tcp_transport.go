package connection

import (
	"bufio"
	"bytes"
	"context"
	"net"
	"sync"
	"time"

	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/logger"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/stomp"
)

const DefaultMaxFrameSize = 1 << 20

// TCPDialer 使用TCP连接服务器
type TCPDialer struct {
	Timeout      time.Duration
	MaxFrameSize int
}

func (d *TCPDialer) Dial(ctx context.Context, address string) (Transport, error) {
	dialer := net.Dialer{Timeout: d.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, &ConnectionError{Message: "could not connect to " + address, Cause: err}
	}
	transport := NewTransport(conn, conn.RemoteAddr().String(), d.MaxFrameSize)
	logger.InfoF("[%s] Connected", transport.ID())
	return transport, nil
}

// TCPTransport 基于 net.Conn 的传输
type TCPTransport struct {
	conn         net.Conn
	connID       string
	reader       *bufio.Reader
	maxFrameSize int
	writeMu      sync.Mutex
	closeOnce    sync.Once
	closeErr     error
}

// NewTransport 包装一个已建立的连接
func NewTransport(conn net.Conn, connID string, maxFrameSize int) *TCPTransport {
	if maxFrameSize <= 0 {
		maxFrameSize = DefaultMaxFrameSize
	}
	return &TCPTransport{
		conn:         conn,
		connID:       connID,
		reader:       bufio.NewReader(conn),
		maxFrameSize: maxFrameSize,
	}
}

func (t *TCPTransport) ID() string {
	return t.connID
}

// SendFrame 写出完整的帧
func (t *TCPTransport) SendFrame(data []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if err := Send(t.conn, data, t.connID); err != nil {
		return &ConnectionError{Message: "send frame", Cause: err}
	}
	return nil
}

// ReceiveFrame 读取到下一个0字节为止
func (t *TCPTransport) ReceiveFrame() ([]byte, error) {
	var frame bytes.Buffer
	for {
		chunk, err := t.reader.ReadSlice(stomp.Terminator)
		if frame.Len()+len(chunk) > t.maxFrameSize+1 {
			return nil, &ConnectionError{Message: "receive frame", Cause: ErrFrameTooLarge}
		}
		frame.Write(chunk)
		if err == nil {
			data := frame.Bytes()
			data = data[:len(data)-1]
			logger.DebugF("[%s] Received %d bytes", t.connID, len(data))
			return data, nil
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		return nil, &ConnectionError{Message: "receive frame", Cause: err}
	}
}

// Close 可重复调用, 会使阻塞中的 ReceiveFrame 返回
func (t *TCPTransport) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.conn.Close()
		logger.DebugF("[%s] Connection closed", t.connID)
	})
	return t.closeErr
}

// Send 循环写入直到数据全部发出
func Send(conn net.Conn, data []byte, connID string) error {
	total := 0
	for total < len(data) {
		n, err := conn.Write(data[total:])
		if err != nil {
			logger.ErrorF("[%s] Fail to send data, details: %v", connID, err)
			return err
		}
		total += n
	}
	logger.DebugF("[%s] Send %d bytes to server", connID, total)
	return nil
}
