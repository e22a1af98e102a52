package session

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/connection"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/event"
)

var errDial = errors.New("connection refused")

type fakeTransport struct {
	mu       sync.Mutex
	id       string
	sent     [][]byte
	sendErr  error
	closed   bool
	closedCh chan struct{}
}

func newFakeTransport(id string) *fakeTransport {
	return &fakeTransport{id: id, closedCh: make(chan struct{})}
}

func (t *fakeTransport) SendFrame(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return connection.ErrClosed
	}
	if t.sendErr != nil {
		return t.sendErr
	}
	t.sent = append(t.sent, append([]byte(nil), data...))
	return nil
}

func (t *fakeTransport) ReceiveFrame() ([]byte, error) {
	<-t.closedCh
	return nil, connection.ErrClosed
}

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.closed = true
		close(t.closedCh)
	}
	return nil
}

func (t *fakeTransport) ID() string {
	return t.id
}

func (t *fakeTransport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *fakeTransport) sentFrames() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	result := make([]string, 0, len(t.sent))
	for _, data := range t.sent {
		result = append(result, string(data))
	}
	return result
}

// fakeDialer 按顺序返回预设的传输, 为nil时返回错误
type fakeDialer struct {
	mu         sync.Mutex
	transports []*fakeTransport
	addresses  []string
}

func (d *fakeDialer) Dial(_ context.Context, address string) (connection.Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.addresses = append(d.addresses, address)
	if len(d.transports) == 0 {
		return nil, errDial
	}
	t := d.transports[0]
	d.transports = d.transports[1:]
	if t == nil {
		return nil, errDial
	}
	return t, nil
}

type output struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (o *output) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buf.Write(p)
}

// Lines 返回并清空已输出的行
func (o *output) Lines() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	text := strings.TrimRight(o.buf.String(), "\n")
	o.buf.Reset()
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

type sinkEntry struct {
	channel string
	user    string
	event   event.Event
}

type fakeSink struct {
	mu      sync.Mutex
	entries []sinkEntry
}

func (f *fakeSink) Enqueue(channel, user string, ev event.Event) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, sinkEntry{channel: channel, user: user, event: ev})
	return true
}
