package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/database"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/event"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/summary"
)

var errArchiveDisabled = errors.New("archive is disabled, set archive.enabled to read archived events")

// newSummaryCommand 不连接STOMP服务器, 直接从归档生成摘要
func newSummaryCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <channel> <user> <file>",
		Short: "Write a summary of archived events without connecting to a server",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd, opts, args[0], args[1], args[2])
		},
	}
}

func runSummary(cmd *cobra.Command, opts *rootOptions, channel, user, path string) (err error) {
	ctx := cmd.Context()
	cfg, cleaner, err := setup(opts)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, cleaner.Clean(ctx))
	}()

	if !cfg.Archive.Enabled {
		return errArchiveDisabled
	}

	store, err := database.ConnectDatabase(ctx, cfg.Archive, appName)
	if err != nil {
		return err
	}
	cleaner.Add(database.NewDBCloseCallback(store))

	return writeArchivedSummary(ctx, store, channel, user, path, cmd.OutOrStdout())
}

type eventQuerier interface {
	QueryEvents(ctx context.Context, channel, user string) ([]event.Event, error)
}

func writeArchivedSummary(ctx context.Context, store eventQuerier, channel, user, path string, out io.Writer) error {
	events, err := store.QueryEvents(ctx, channel, user)
	if err != nil {
		return fmt.Errorf("query archived events: %w", err)
	}
	if err := summary.WriteFile(path, summary.Compute(channel, user, events)); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Summary written to file (%d events)\n", len(events))
	return nil
}
