package session

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/event"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/frame"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/logger"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/receipt"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/stomp"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/summary"
)

// HandleCommand 处理一行用户命令, 返回需要发送的帧
// 错误和提示直接输出, 不返回给调用方
func (s *Session) HandleCommand(ctx context.Context, line string) []stomp.Frame {
	cmd, ok := ParseCommandLine(line)
	if !ok {
		return nil
	}

	if cmd.Command != LOGIN && s.State() != LoggedIn {
		s.println(msgNotConnected)
		return nil
	}
	if err := cmd.Validate(); err != nil {
		s.println(err.Error())
		return nil
	}

	switch cmd.Command {
	case LOGIN:
		return s.handleLogin(ctx, cmd.Args[0], cmd.Args[1], cmd.Args[2])
	case JOIN:
		return s.handleJoin(cmd.Args[0])
	case EXIT:
		return s.handleExit(cmd.Args[0])
	case REPORT:
		return s.handleReport(cmd.Args[0])
	case SUMMARY:
		s.handleSummary(cmd.Args[0], cmd.Args[1], cmd.Args[2])
		return nil
	case LOGOUT:
		return s.handleLogout()
	default:
		return nil
	}
}

// Execute 处理命令并在锁外通过当前传输发送生成的帧
func (s *Session) Execute(ctx context.Context, line string) error {
	frames := s.HandleCommand(ctx, line)
	if len(frames) == 0 {
		return nil
	}

	s.mu.Lock()
	t := s.transport
	tag := s.tag
	s.mu.Unlock()

	if t == nil {
		logger.WarnF("[%s] Dropping %d frame(s), transport already closed", tag, len(frames))
		return ErrNotConnected
	}

	for _, f := range frames {
		if err := t.SendFrame(stomp.Encode(f)); err != nil {
			logger.ErrorF("[%s] Fail to send %s frame, details: %v", tag, f.Command, err)
			s.println(msgSendFailed)
			s.mu.Lock()
			s.failSendLocked(t)
			s.mu.Unlock()
			return fmt.Errorf("send %s: %w", f.Command, err)
		}
		logger.DebugF("[%s] Sent %s frame", tag, f.Command)
	}
	return nil
}

// requireLoggedInLocked 状态可能在命令解析后发生变化, 加锁后再次检查
func (s *Session) requireLoggedInLocked() bool {
	if s.state == LoggedIn {
		return true
	}
	s.println(msgNotConnected)
	return false
}

func validateHostPort(hostPort string) bool {
	host, port, err := net.SplitHostPort(hostPort)
	if err != nil || host == "" {
		return false
	}
	number, err := strconv.Atoi(port)
	return err == nil && number > 0 && number <= 65535
}

func (s *Session) handleLogin(ctx context.Context, hostPort, username, password string) []stomp.Frame {
	s.mu.Lock()
	if s.state != Disconnected {
		s.mu.Unlock()
		s.println(msgAlreadyLoggedIn)
		return nil
	}
	if !validateHostPort(hostPort) {
		s.mu.Unlock()
		s.println(msgInvalidHostPort)
		return nil
	}
	// 拨号期间保持 Connecting, 防止并发登录
	s.state = Connecting
	s.username = username
	s.tag = newTag()
	generation := s.generation
	tag := s.tag
	s.mu.Unlock()

	logger.InfoF("[%s] Connecting to %s as %s", tag, hostPort, username)
	t, err := s.dialer.Dial(ctx, hostPort)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != generation {
		// 拨号期间会话已被关闭
		if t != nil {
			_ = t.Close()
		}
		return nil
	}
	if err != nil {
		logger.WarnF("[%s] Fail to connect to %s, details: %v", tag, hostPort, err)
		s.state = Disconnected
		s.username = ""
		s.println(msgCouldNotConnect)
		return nil
	}

	s.transport = t
	s.publishLocked(t)
	return []stomp.Frame{frame.NewConnectFrame(s.options.AcceptVersion, s.options.Host, username, password)}
}

func (s *Session) handleJoin(channel string) []stomp.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.requireLoggedInLocked() {
		return nil
	}

	id, isNew := s.subscriptions.Subscribe(channel, s.newSubscriptionID)
	if !isNew {
		s.println(msgAlreadySubscribed + channel)
		return nil
	}
	receiptID := s.newReceiptID()
	s.receipts.Track(receiptID, receipt.Action{Kind: receipt.Joined, Channel: channel})
	logger.DebugF("[%s] Subscribing to %s with id %d, receipt %s", s.tag, channel, id, receiptID)
	return []stomp.Frame{frame.NewSubscribeFrame(frame.Destination(s.options.DestinationPrefix, channel), id, receiptID)}
}

func (s *Session) handleExit(channel string) []stomp.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.requireLoggedInLocked() {
		return nil
	}

	id, found := s.subscriptions.Unsubscribe(channel)
	if !found {
		s.println(msgNotSubscribed + channel)
		return nil
	}
	receiptID := s.newReceiptID()
	s.receipts.Track(receiptID, receipt.Action{Kind: receipt.Exited, Channel: channel})
	logger.DebugF("[%s] Unsubscribing from %s with id %d, receipt %s", s.tag, channel, id, receiptID)
	return []stomp.Frame{frame.NewUnsubscribeFrame(id, receiptID)}
}

func (s *Session) handleReport(path string) []stomp.Frame {
	// 文件读取不持有锁
	report, err := s.loadReport(path)
	if err != nil {
		s.println("Error processing report file: " + err.Error())
		s.println(msgReportFileHint)
		return nil
	}

	s.mu.Lock()
	if !s.requireLoggedInLocked() {
		s.mu.Unlock()
		return nil
	}
	username := s.username
	destination := frame.Destination(s.options.DestinationPrefix, report.Channel)
	events := make([]event.Event, 0, len(report.Events))
	frames := make([]stomp.Frame, 0, len(report.Events))
	for _, record := range report.Events {
		ev := event.NewEvent(report.Channel, record, username)
		s.store.Append(report.Channel, username, ev)
		events = append(events, ev)
		frames = append(frames, frame.NewSendFrame(destination, ev.FormatForSend(username)))
	}
	logger.InfoF("[%s] Reporting %d event(s) to %s", s.tag, len(events), report.Channel)
	s.mu.Unlock()

	for _, ev := range events {
		s.sinkEvent(report.Channel, username, ev)
	}
	return frames
}

func (s *Session) handleSummary(channel, user, path string) {
	s.mu.Lock()
	if !s.requireLoggedInLocked() {
		s.mu.Unlock()
		return
	}
	events := s.store.Query(channel, user)
	s.mu.Unlock()

	// 排序, 格式化与文件写入均在锁外进行
	if err := summary.WriteFile(path, summary.Compute(channel, user, events)); err != nil {
		logger.ErrorF("Fail to write summary, details: %v", err)
		s.println("Error: Could not write summary file: " + err.Error())
		return
	}
	s.println(msgSummaryWritten)
}

func (s *Session) handleLogout() []stomp.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.requireLoggedInLocked() {
		return nil
	}

	// 收到对应回执后才清理本地状态
	receiptID := s.newReceiptID()
	s.receipts.Track(receiptID, receipt.Action{Kind: receipt.Disconnect})
	logger.DebugF("[%s] Logging out, receipt %s", s.tag, receiptID)
	return []stomp.Frame{frame.NewDisconnectFrame(receiptID)}
}
