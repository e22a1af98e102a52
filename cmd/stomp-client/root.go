package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/client"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/config"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/connection"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/console"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/database"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/lifecycle"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/logger"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/session"
)

const appName = "stomp-client"

type rootOptions struct {
	configPath string
	debug      bool
}

func newRootCommand(version string) *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Interactive client for a STOMP event channel server",
		Version: version,
		Long: `stomp-client connects to a STOMP server and reads commands from standard input:

  login {host:port} {username} {password}
  join {channel}
  exit {channel}
  report {json_path}
  summary {channel} {user} {file}
  logout`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runClient(cmd.Context(), opts)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file, created from defaults when missing")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	rootCmd.SetVersionTemplate(appName + " {{.Version}}\n")

	rootCmd.AddCommand(newSummaryCommand(opts))
	return rootCmd
}

// setup 读取配置并初始化日志, 返回的 Cleaner 最后关闭日志
func setup(opts *rootOptions) (config.Config, *lifecycle.Cleaner, error) {
	cfg, err := config.ReadConfig(opts.configPath)
	if err != nil {
		return cfg, nil, err
	}

	loggerCallback := logger.Init(logger.Options{
		Dir:       cfg.Log.Dir,
		Debug:     cfg.Log.Debug || opts.debug,
		Console:   cfg.Log.Console,
		NoColor:   cfg.Log.NoColor,
		Retention: cfg.Log.RetentionDuration(),
	})
	logger.Debug("Application initializing...")

	cleaner := lifecycle.NewCleaner()
	cleaner.Init(loggerCallback)
	return cfg, cleaner, nil
}

func runClient(ctx context.Context, opts *rootOptions) (err error) {
	cfg, cleaner, err := setup(opts)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, cleaner.Clean(ctx))
	}()

	editor := console.NewLineEditor(cfg.Client.Prompt, cfg.Client.HistoryFile)
	cleaner.Add(lifecycle.CallableFunc(func(context.Context) error {
		return editor.Close()
	}))

	sessionOptions := session.Options{
		AcceptVersion:     cfg.Stomp.AcceptVersion,
		Host:              cfg.Stomp.Host,
		DestinationPrefix: cfg.Stomp.DestinationPrefix,
		DedupeSize:        cfg.Client.DedupeSize,
		DedupeTTL:         cfg.Client.DedupeTTLDuration(),
	}
	if cfg.Archive.Enabled {
		archiver, archiveErr := startArchive(ctx, cfg.Archive, cleaner)
		if archiveErr != nil {
			return archiveErr
		}
		sessionOptions.Sink = archiver
	}

	dialer := &connection.TCPDialer{
		Timeout:      cfg.Stomp.DialTimeoutDuration(),
		MaxFrameSize: cfg.Stomp.MaxFrameSize,
	}
	s := session.New(dialer, editor.Stdout(), sessionOptions)
	cleaner.Add(lifecycle.CallableFunc(func(context.Context) error {
		s.Close()
		return nil
	}))

	runner := &client.Runner{
		Session:          s,
		Input:            editor,
		ExitOnDisconnect: cfg.Client.ExitOnDisconnect,
	}
	logger.InfoF("Client started, interactive %v", editor.IsInteractive())
	return runner.Run(ctx)
}

// startArchive 连接MongoDB并启动归档协程, 清理时先排空队列再断开连接
func startArchive(ctx context.Context, cfg config.ArchiveConfig, cleaner *lifecycle.Cleaner) (*database.Archiver, error) {
	store, err := database.ConnectDatabase(ctx, cfg, appName)
	if err != nil {
		logger.ErrorF("Error occured while initializing database, details: %v", err)
		return nil, err
	}
	cleaner.Add(database.NewDBCloseCallback(store))

	archiver := database.NewArchiver(store, cfg.QueueSize)
	cleaner.Add(archiver)
	return archiver, nil
}
