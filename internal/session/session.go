package session

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/connection"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/database"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/event"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/logger"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/receipt"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/subscription"
)

const (
	defaultDedupeSize = 1024
	defaultDedupeTTL  = 10 * time.Minute
)

// Session 客户端协议会话
// 命令协程与响应协程共享的状态全部由 mu 保护
type Session struct {
	mu            sync.Mutex
	state         State
	username      string
	tag           string // 日志中的会话标识
	generation    uint64 // 每次拆除会话时递增
	transport     connection.Transport
	subscriptions *subscription.Registry
	receipts      *receipt.Ledger
	store         *database.MemoryStore // 拆除会话时保留
	seen          *expirable.LRU[string, struct{}]

	nextReceiptID      atomic.Uint64
	nextSubscriptionID atomic.Uint64

	dialer     connection.Dialer
	options    Options
	outMu      sync.Mutex
	out        io.Writer
	sink       EventSink
	loadReport ReportLoader

	connections   chan connection.Transport
	terminated    chan struct{}
	terminateOnce sync.Once
}

func New(dialer connection.Dialer, out io.Writer, options Options) *Session {
	if options.DedupeSize <= 0 {
		options.DedupeSize = defaultDedupeSize
	}
	if options.DedupeTTL <= 0 {
		options.DedupeTTL = defaultDedupeTTL
	}
	if options.AcceptVersion == "" {
		options.AcceptVersion = "1.2"
	}
	loadReport := options.LoadReport
	if loadReport == nil {
		loadReport = event.LoadReport
	}

	return &Session{
		state:         Disconnected,
		subscriptions: subscription.NewRegistry(),
		receipts:      receipt.NewLedger(),
		store:         database.NewMemoryStore(),
		seen:          expirable.NewLRU[string, struct{}](options.DedupeSize, nil, options.DedupeTTL),
		dialer:        dialer,
		options:       options,
		out:           out,
		sink:          options.Sink,
		loadReport:    loadReport,
		connections:   make(chan connection.Transport, 1),
		terminated:    make(chan struct{}),
	}
}

// Connections 每次连接成功后发布新的传输, 供响应协程读取
func (s *Session) Connections() <-chan connection.Transport {
	return s.connections
}

// Terminated 已登录或正在登录的会话因登出或传输失败结束时关闭
func (s *Session) Terminated() <-chan struct{} {
	return s.terminated
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

// Events 返回 (频道, 用户) 下事件的副本
func (s *Session) Events(channel, user string) []event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Query(channel, user)
}

func (s *Session) Subscriptions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscriptions.Channels()
}

func (s *Session) PendingReceipts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.receipts.Pending()
}

// Close 关闭会话, 用于进程退出
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Disconnected {
		logger.InfoF("[%s] Closing session", s.tag)
	}
	s.teardownLocked(false)
}

// HandleTransportFailure 响应协程读取失败时调用, 只有 t 仍是当前传输时才拆除会话
func (s *Session) HandleTransportFailure(t connection.Transport, err error) {
	message := connection.HandleReadError(t.ID(), err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport != t {
		_ = t.Close()
		return
	}
	s.println(message)
	s.teardownLocked(true)
}

func (s *Session) failSendLocked(t connection.Transport) {
	if s.transport != t {
		return
	}
	s.teardownLocked(true)
}

// teardownLocked 关闭传输并清空连接相关的状态, 事件存储保留
func (s *Session) teardownLocked(terminate bool) {
	wasActive := s.state != Disconnected
	if s.transport != nil {
		if err := s.transport.Close(); err != nil && !connection.IsNetClosedError(err) {
			logger.WarnF("[%s] Error occured while closing connection, details: %v", s.tag, err)
		}
	}
	s.transport = nil
	s.subscriptions.Clear()
	s.receipts.Clear()
	s.seen.Purge()
	s.state = Disconnected
	s.username = ""
	s.generation++

	if wasActive {
		logger.InfoF("[%s] Session ended", s.tag)
		if terminate {
			s.terminateOnce.Do(func() { close(s.terminated) })
		}
	}
}

// publishLocked 替换尚未被读取的旧传输
func (s *Session) publishLocked(t connection.Transport) {
	for {
		select {
		case s.connections <- t:
			return
		default:
		}
		select {
		case <-s.connections:
		default:
		}
	}
}

func (s *Session) newReceiptID() string {
	return strconv.FormatUint(s.nextReceiptID.Add(1)-1, 10)
}

func (s *Session) newSubscriptionID() uint64 {
	return s.nextSubscriptionID.Add(1) - 1
}

func newTag() string {
	return uuid.NewString()[:8]
}

// println 每个事件输出一行
func (s *Session) println(message string) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	_, _ = fmt.Fprintln(s.out, message)
}

func (s *Session) sinkEvent(channel, user string, ev event.Event) {
	if s.sink == nil {
		return
	}
	s.sink.Enqueue(channel, user, ev)
}
