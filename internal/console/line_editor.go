// Package console 读取用户输入的命令行
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ergochat/readline"
	"golang.org/x/term"
)

const historySize = 500

// LineEditor 终端上使用 readline, 管道输入时使用 bufio.Scanner
type LineEditor struct {
	mu          sync.Mutex
	interactive bool
	prompt      string
	rl          *readline.Instance
	scanner     *bufio.Scanner
	out         io.Writer
	closed      bool
}

// NewLineEditor 根据标准输入是否为终端选择读取方式
func NewLineEditor(prompt, historyFile string) *LineEditor {
	isInteractive := term.IsTerminal(int(os.Stdin.Fd())) &&
		os.Getenv("INSIDE_EMACS") == ""
	if !isInteractive {
		return NewScannerEditor(os.Stdin, os.Stdout, prompt)
	}

	rl, err := readline.NewFromConfig(&readline.Config{
		HistoryFile:            historyPath(historyFile),
		HistoryLimit:           historySize,
		DisableAutoSaveHistory: true,
		Prompt:                 prompt,
	})
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: readline init failed (%v), using basic input\n", err)
		return NewScannerEditor(os.Stdin, os.Stdout, prompt)
	}

	return &LineEditor{
		interactive: true,
		prompt:      prompt,
		rl:          rl,
		out:         rl, // Instance.Write 会重绘提示行
	}
}

// NewScannerEditor 逐行读取r, 提示符与输出写入w
func NewScannerEditor(r io.Reader, w io.Writer, prompt string) *LineEditor {
	return &LineEditor{
		prompt:  prompt,
		scanner: bufio.NewScanner(r),
		out:     w,
	}
}

// historyPath 相对路径放在用户主目录下
func historyPath(historyFile string) string {
	if historyFile == "" || filepath.IsAbs(historyFile) {
		return historyFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return historyFile
	}
	return filepath.Join(home, historyFile)
}

// ReadLine 读取一行, 输入结束或编辑器关闭时返回 io.EOF
func (le *LineEditor) ReadLine() (string, error) {
	le.mu.Lock()
	closed := le.closed
	le.mu.Unlock()
	if closed {
		return "", io.EOF
	}

	if le.interactive {
		return le.readInteractiveLine()
	}
	return le.readScannerLine()
}

func (le *LineEditor) readInteractiveLine() (string, error) {
	line, err := le.rl.Readline()
	if err != nil {
		if errors.Is(err, readline.ErrInterrupt) || le.isClosed() {
			return "", io.EOF
		}
		return "", err
	}

	if trimmed := strings.TrimSpace(line); trimmed != "" {
		le.rl.SaveToHistory(trimmed)
	}
	return line, nil
}

func (le *LineEditor) readScannerLine() (string, error) {
	if le.prompt != "" {
		_, _ = fmt.Fprint(le.out, le.prompt)
	}
	if !le.scanner.Scan() {
		if err := le.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return le.scanner.Text(), nil
}

func (le *LineEditor) isClosed() bool {
	le.mu.Lock()
	defer le.mu.Unlock()
	return le.closed
}

// Stdout 在交互模式下输出不会破坏正在编辑的提示行
func (le *LineEditor) Stdout() io.Writer {
	return le.out
}

func (le *LineEditor) IsInteractive() bool {
	return le.interactive
}

// Close 可重复调用, 交互模式下会使阻塞的 ReadLine 返回
func (le *LineEditor) Close() error {
	le.mu.Lock()
	defer le.mu.Unlock()
	if le.closed {
		return nil
	}
	le.closed = true
	if le.rl != nil {
		return le.rl.Close()
	}
	return nil
}
