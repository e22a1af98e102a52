package session

import (
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/event"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/frame"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/logger"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/receipt"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/stomp"
)

// HandleServerFrame 处理服务器发来的一帧, 不含结束符
func (s *Session) HandleServerFrame(raw []byte) {
	f, err := stomp.Decode(raw)
	if err != nil {
		logger.DebugF("Dropping server frame, details: %v", err)
		return
	}

	switch f.Command {
	case stomp.CONNECTED:
		s.handleConnected(f)
	case stomp.ERROR:
		s.handleError(f)
	case stomp.RECEIPT:
		s.handleReceipt(f)
	case stomp.MESSAGE:
		s.handleMessage(f)
	default:
		logger.DebugF("Ignoring %s frame from server", f.Name)
	}
}

func (s *Session) handleConnected(f stomp.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Connecting {
		logger.WarnF("[%s] Unexpected CONNECTED frame in state %s", s.tag, s.state)
		return
	}
	s.state = LoggedIn
	logger.InfoF("[%s] Logged in as %s, version %s", s.tag, s.username, frame.ParseConnectedFrame(f))
	s.println(msgLoginSuccessful)
}

func (s *Session) handleError(f stomp.Frame) {
	message := frame.ParseErrorFrame(f)

	s.mu.Lock()
	defer s.mu.Unlock()
	logger.ErrorF("[%s] Server error: %s", s.tag, message)
	s.println("Error: " + message)
	s.teardownLocked(false)
}

func (s *Session) handleReceipt(f stomp.Frame) {
	receiptID, ok := frame.ParseReceiptFrame(f)
	if !ok {
		logger.DebugF("[%s] RECEIPT frame without receipt-id", s.tag)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	action, found := s.receipts.Resolve(receiptID)
	if !found {
		logger.DebugF("[%s] Ignoring unknown receipt %s", s.tag, receiptID)
		return
	}

	if action.Kind == receipt.Disconnect {
		s.teardownLocked(true)
		s.println(msgLoggedOut)
		return
	}
	s.println(action.String())
}

func (s *Session) handleMessage(f stomp.Frame) {
	message := frame.ParseMessageFrame(f)

	s.mu.Lock()
	tag := s.tag
	if message.MessageID != "" {
		if s.seen.Contains(message.MessageID) {
			s.mu.Unlock()
			logger.DebugF("[%s] Dropping duplicate message %s", tag, message.MessageID)
			return
		}
		s.seen.Add(message.MessageID, struct{}{})
	}
	s.mu.Unlock()

	ev, err := event.ParseMessageBody(message.Body)
	if err != nil {
		logger.WarnF("[%s] Discarding message %s on %s, details: %v", tag, message.MessageID, message.Channel, err)
		return
	}
	ev.Channel = message.Channel

	s.mu.Lock()
	// 自己上报的事件在 report 时已经保存
	if ev.Owner == "" || ev.Owner == s.username {
		s.mu.Unlock()
		return
	}
	s.store.Append(message.Channel, ev.Owner, ev)
	s.mu.Unlock()

	logger.DebugF("[%s] Stored event %q from %s on %s", tag, ev.Name, ev.Owner, message.Channel)
	s.sinkEvent(message.Channel, ev.Owner, ev)
}
