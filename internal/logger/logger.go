package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

const (
	LevelFatal slog.Level = 12
)

// Options 日志初始化参数
type Options struct {
	Dir       string        // 日志目录
	Debug     bool          // 是否输出调试日志
	Console   bool          // 是否同时输出到标准错误
	NoColor   bool          // 关闭颜色
	Retention time.Duration // 日志保留时间
}

// asyncCore 由同一个handler派生出的所有handler共享
type asyncCore struct {
	mu          sync.Mutex
	ch          chan []byte
	writer      io.Writer
	console     io.Writer
	currentDay  int      // 当前日志日期（day of year）
	currentFile *os.File // 当前日志文件
	basePath    string   // 日志文件基础路径
	retention   time.Duration
	closed      bool
	wg          sync.WaitGroup
}

type AsyncHandler struct {
	core     *asyncCore
	attrs    []slog.Attr
	group    string
	logLevel slog.Level
}

func NewAsyncHandler(basePath string, logLevel slog.Level, console io.Writer, retention time.Duration) *AsyncHandler {
	core := &asyncCore{
		ch:        make(chan []byte, 1024),
		basePath:  basePath,
		console:   console,
		retention: retention,
	}
	if err := core.rotateIfNeeded(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "logger: %v\n", err)
	}
	core.wg.Add(1)
	go core.startWorker()
	return &AsyncHandler{core: core, logLevel: logLevel}
}

func (c *asyncCore) cleanOldLogs() {
	if c.retention <= 0 {
		return
	}
	files, _ := filepath.Glob(filepath.Join(c.basePath, "*.log"))
	now := time.Now()

	for _, f := range files {
		fi, err := os.Stat(f)
		if err != nil {
			continue
		}
		if now.Sub(fi.ModTime()) > c.retention {
			_ = os.Remove(f)
		}
	}
}

// 初始化或轮转日志文件
func (c *asyncCore) rotateIfNeeded() error {
	now := time.Now()
	currentDay := now.YearDay()

	if currentDay == c.currentDay && c.currentFile != nil {
		return nil
	}

	if c.currentFile != nil {
		if err := c.currentFile.Close(); err != nil {
			return fmt.Errorf("关闭日志文件失败: %w", err)
		}
		c.currentFile = nil
	}

	// 文件不可用时仍然输出到控制台
	c.currentDay = currentDay
	c.writer = c.console
	if c.writer == nil {
		c.writer = io.Discard
	}

	logPath := c.getLogPath(now)
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return fmt.Errorf("创建日志目录失败: %w", err)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("创建日志文件失败: %w", err)
	}

	c.currentFile = f
	if c.console != nil {
		c.writer = io.MultiWriter(c.console, f)
	} else {
		c.writer = f
	}
	c.cleanOldLogs()
	return nil
}

func (c *asyncCore) getLogPath(now time.Time) string {
	return filepath.Join(c.basePath, now.Format("2006-01-02")+".log")
}

func (c *asyncCore) startWorker() {
	defer c.wg.Done()
	for data := range c.ch {
		if err := c.rotateIfNeeded(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		}
		_, _ = c.writer.Write(data)
	}
}

func (h *AsyncHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.logLevel
}

func (h *AsyncHandler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String()

	switch r.Level {
	case slog.LevelDebug:
		level = color.MagentaString(level)
	case slog.LevelInfo:
		level = color.BlueString(level)
	case slog.LevelWarn:
		level = color.YellowString(level)
	case slog.LevelError:
		level = color.RedString(level)
	case LevelFatal:
		level = color.HiRedString("FATAL")
	}

	// 基础格式：时间 | 级别 | 消息
	var line strings.Builder
	line.WriteString(fmt.Sprintf(
		"%s | %-5s | %s",
		color.GreenString(r.Time.Format("2006-01-02T15:04:05")),
		level,
		color.CyanString(r.Message),
	))

	// 处理固定字段
	for _, attr := range h.attrs {
		line.WriteString(color.CyanString(fmt.Sprintf(" %s=%v", attr.Key, attr.Value)))
	}

	// 处理动态字段
	r.Attrs(func(attr slog.Attr) bool {
		key := attr.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		line.WriteString(color.CyanString(fmt.Sprintf(" %s=%v", key, attr.Value)))
		return true
	})

	line.WriteByte('\n')

	h.Write([]byte(line.String()))
	return nil
}

func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	// 合并新旧字段
	newAttrs := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	newAttrs = append(newAttrs, h.attrs...)
	for _, attr := range attrs {
		if h.group != "" {
			attr.Key = h.group + "." + attr.Key
		}
		newAttrs = append(newAttrs, attr)
	}

	return &AsyncHandler{
		core:     h.core,
		attrs:    newAttrs,
		group:    h.group,
		logLevel: h.logLevel,
	}
}

func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &AsyncHandler{
		core:     h.core,
		attrs:    h.attrs,
		group:    group,
		logLevel: h.logLevel,
	}
}

func (h *AsyncHandler) Write(p []byte) {
	// 拷贝数据避免竞态
	pb := make([]byte, len(p))
	copy(pb, p)

	h.core.mu.Lock()
	defer h.core.mu.Unlock()
	if h.core.closed {
		return
	}
	h.core.ch <- pb
}

func (h *AsyncHandler) Close() error {
	c := h.core
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.ch)
	c.mu.Unlock()

	c.wg.Wait()
	if c.currentFile != nil {
		_ = c.currentFile.Sync()
		return c.currentFile.Close()
	}
	return nil
}

type ShutdownCallback struct {
	handler *AsyncHandler
}

func (lc *ShutdownCallback) Invoke(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		done <- lc.handler.Close()
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func Init(options Options) *ShutdownCallback {
	color.NoColor = color.NoColor || options.NoColor

	level := slog.LevelInfo
	if options.Debug {
		level = slog.LevelDebug
	}
	var console io.Writer
	if options.Console {
		console = os.Stderr
	}
	dir := options.Dir
	if dir == "" {
		dir = "logs"
	}

	handler := NewAsyncHandler(dir, level, console, options.Retention)
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logger initialized")
	return &ShutdownCallback{handler: handler}
}

// logf 级别未启用时不格式化消息
func logf(level slog.Level, msg string, v ...any) {
	ctx := context.Background()
	logger := slog.Default()
	if !logger.Enabled(ctx, level) {
		return
	}
	logger.Log(ctx, level, fmt.Sprintf(msg, v...))
}

func Debug(msg string, v ...any) {
	slog.Debug(msg, v...)
}

func DebugF(msg string, v ...any) {
	logf(slog.LevelDebug, msg, v...)
}

func Info(msg string, v ...any) {
	slog.Info(msg, v...)
}

func InfoF(msg string, v ...any) {
	logf(slog.LevelInfo, msg, v...)
}

func Warn(msg string, v ...any) {
	slog.Warn(msg, v...)
}

func WarnF(msg string, v ...any) {
	logf(slog.LevelWarn, msg, v...)
}

func Error(msg string, v ...any) {
	slog.Error(msg, v...)
}

func ErrorF(msg string, v ...any) {
	logf(slog.LevelError, msg, v...)
}

// Fatal 只记录日志, 是否退出由调用方决定
func Fatal(msg string, v ...any) {
	slog.Log(context.Background(), LevelFatal, msg, v...)
}

func FatalF(msg string, v ...any) {
	logf(LevelFatal, msg, v...)
}
