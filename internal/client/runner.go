// Package client 将用户输入与服务器帧接入会话
package client

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/connection"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/logger"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/session"
)

// LineSource 用户命令来源, Close 之后 ReadLine 应返回 io.EOF
type LineSource interface {
	ReadLine() (string, error)
	Close() error
}

// Runner 运行命令协程与响应协程
type Runner struct {
	Session          *session.Session
	Input            LineSource
	ExitOnDisconnect bool
}

type inputLine struct {
	text string
	err  error
}

// Run 阻塞直到输入结束, ctx 被取消, 或会话结束且 ExitOnDisconnect 为真
func (r *Runner) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)
	lines := make(chan inputLine)
	// 读取协程不受 errgroup 管理, 非交互模式下的阻塞读取不会拖住退出
	go r.readLines(ctx, lines)

	group.Go(func() error {
		defer cancel()
		return r.commandWorker(ctx, lines)
	})
	group.Go(func() error {
		return r.responseWorker(ctx)
	})
	group.Go(func() error {
		r.watchStop(ctx, cancel)
		return nil
	})

	return group.Wait()
}

func (r *Runner) readLines(ctx context.Context, lines chan<- inputLine) {
	for {
		text, err := r.Input.ReadLine()
		select {
		case lines <- inputLine{text: text, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

func (r *Runner) commandWorker(ctx context.Context, lines <-chan inputLine) error {
	for {
		var line inputLine
		select {
		case <-ctx.Done():
			return nil
		case line = <-lines:
		}

		if line.err != nil {
			if errors.Is(line.err, io.EOF) {
				logger.Debug("Input closed, stopping")
				return nil
			}
			return fmt.Errorf("read command: %w", line.err)
		}

		if err := r.Session.Execute(ctx, line.text); err != nil {
			if errors.Is(err, session.ErrNotConnected) {
				logger.Warn("Command dropped, not connected")
				continue
			}
			// 会话已被拆除, 用户可以重新登录
			logger.WarnF("Command failed, details: %v", err)
		}
	}
}

func (r *Runner) responseWorker(ctx context.Context) error {
	for {
		var t connection.Transport
		select {
		case <-ctx.Done():
			return nil
		case t = <-r.Session.Connections():
		}

		logger.DebugF("[%s] Reading frames", t.ID())
		for {
			raw, err := t.ReceiveFrame()
			if err != nil {
				if ctx.Err() != nil {
					_ = t.Close()
					return nil
				}
				r.Session.HandleTransportFailure(t, err)
				break
			}
			r.Session.HandleServerFrame(raw)
		}
	}
}

// watchStop 关闭输入与会话, 使两个阻塞读取返回
func (r *Runner) watchStop(ctx context.Context, cancel context.CancelFunc) {
	var terminated <-chan struct{}
	if r.ExitOnDisconnect {
		terminated = r.Session.Terminated()
	}

	select {
	case <-ctx.Done():
	case <-terminated:
		logger.Info("Session ended, stopping")
		cancel()
	}

	if err := r.Input.Close(); err != nil {
		logger.WarnF("Error occured while closing input, details: %v", err)
	}
	r.Session.Close()
}
