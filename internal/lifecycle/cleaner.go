// Package lifecycle 负责退出时按顺序释放资源
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/logger"
)

const (
	defaultTimeout        = 10 * time.Second
	loggerShutdownTimeout = 3 * time.Second
)

type Callable interface {
	Invoke(ctx context.Context) error
}

// CallableFunc 将普通函数适配为 Callable
type CallableFunc func(ctx context.Context) error

func (f CallableFunc) Invoke(ctx context.Context) error {
	return f(ctx)
}

type Cleaner struct {
	cleaners       []Callable
	mu             sync.Mutex
	cleanOnce      sync.Once
	cleaning       bool
	loggerShutdown Callable
	timeout        time.Duration
	result         error
}

func NewCleaner() *Cleaner {
	return &Cleaner{timeout: defaultTimeout}
}

func (c *Cleaner) Add(callable Callable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cleaning {
		logger.Debug("Cleaner is already shutting down, ignoring new cleaner")
		return
	}
	c.cleaners = append(c.cleaners, callable)
}

// Init 设置日志关闭回调, 它总是最后执行
func (c *Cleaner) Init(loggerShutdown Callable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loggerShutdown = loggerShutdown
}

// Clean 按注册的逆序调用清理函数, 每个函数有独立的超时
// 重复调用返回第一次的结果
func (c *Cleaner) Clean(ctx context.Context) error {
	c.cleanOnce.Do(func() {
		c.mu.Lock()
		c.cleaning = true // 标记为清理中，阻止后续Add操作
		cleanersCopy := make([]Callable, len(c.cleaners))
		copy(cleanersCopy, c.cleaners)
		loggerShutdown := c.loggerShutdown
		c.mu.Unlock()

		logger.DebugF("Starting cleanup of %d registered functions", len(cleanersCopy))

		var errs []error
		for i := len(cleanersCopy) - 1; i >= 0; i-- {
			if err := c.invoke(ctx, i, cleanersCopy[i]); err != nil {
				errs = append(errs, err)
			}
		}

		if len(errs) > 0 {
			logger.ErrorF("%d errors occurred during cleanup", len(errs))
		} else {
			logger.Debug("All cleaners executed successfully")
		}
		logger.Info("Cleanup finished, client offline")
		c.result = errors.Join(errs...)

		if loggerShutdown != nil {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loggerShutdownTimeout)
			defer cancel()
			if err := loggerShutdown.Invoke(shutdownCtx); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "LOGGER SHUTDOWN ERROR: %v\n", err)
			}
		}
	})
	return c.result
}

func (c *Cleaner) invoke(ctx context.Context, idx int, callable Callable) error {
	logger.DebugF("Invoking cleaner #%d (%T)", idx+1, callable)
	// 进程因信号退出时 ctx 已被取消, 清理仍需要执行
	timeoutCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()
	if err := callable.Invoke(timeoutCtx); err != nil {
		logger.ErrorF("Cleaner #%d (%T) failed: %v", idx+1, callable, err)
		return fmt.Errorf("cleaner #%d: %w", idx+1, err)
	}
	return nil
}
