package database

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/event"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/logger"
)

// EventSaver 归档后端
type EventSaver interface {
	SaveEvent(ctx context.Context, channel, user string, ev event.Event) error
}

type archiveItem struct {
	channel string
	user    string
	event   event.Event
}

// Archiver 在后台协程中归档事件, 调用方不会被数据库IO阻塞
type Archiver struct {
	saver   EventSaver
	ch      chan archiveItem
	mu      sync.Mutex
	closed  bool
	wg      sync.WaitGroup
	saved   atomic.Uint64
	dropped atomic.Uint64
	failed  atomic.Uint64
}

func NewArchiver(saver EventSaver, queueSize int) *Archiver {
	if queueSize <= 0 {
		queueSize = 1
	}
	a := &Archiver{
		saver: saver,
		ch:    make(chan archiveItem, queueSize),
	}
	a.wg.Add(1)
	go a.startWorker()
	return a
}

func (a *Archiver) startWorker() {
	defer a.wg.Done()
	for item := range a.ch {
		if err := a.saver.SaveEvent(context.Background(), item.channel, item.user, item.event); err != nil {
			a.failed.Add(1)
			logger.ErrorF("Failed to archive event %q on %s/%s: %v", item.event.Name, item.channel, item.user, err)
			continue
		}
		a.saved.Add(1)
	}
}

// Enqueue 队列已满或已关闭时丢弃事件并返回false
func (a *Archiver) Enqueue(channel, user string, ev event.Event) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		a.dropped.Add(1)
		return false
	}
	select {
	case a.ch <- archiveItem{channel: channel, user: user, event: ev}:
		return true
	default:
		a.dropped.Add(1)
		logger.WarnF("Archive queue is full, dropping event %q on %s/%s", ev.Name, channel, user)
		return false
	}
}

// Close 停止接收并等待队列中的事件写完
func (a *Archiver) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.ch)
	}
	a.mu.Unlock()

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		logger.DebugF("Archiver drained: saved=%d dropped=%d failed=%d", a.saved.Load(), a.dropped.Load(), a.failed.Load())
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Invoke 供清理器调用
func (a *Archiver) Invoke(ctx context.Context) error {
	return a.Close(ctx)
}

func (a *Archiver) Saved() uint64 {
	return a.saved.Load()
}

func (a *Archiver) Dropped() uint64 {
	return a.dropped.Load()
}

func (a *Archiver) Failed() uint64 {
	return a.failed.Load()
}
