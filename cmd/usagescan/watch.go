package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/usagescan/internal/core"
	"github.com/janekbaraniewski/usagescan/internal/providers"
	"github.com/janekbaraniewski/usagescan/internal/telemetry"
)

func newWatchCommand(opts *rootOptions) *cobra.Command {
	var (
		emitInitial bool
		debounce    time.Duration
		poll        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow usage logs and print new entries as JSON lines",
		Long: "Run a full scan, then print entries appended to the logs as they appear. " +
			"File system events trigger a debounced incremental scan; a poll interval catches anything missed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("debounce") {
				debounce = cfg.Watch.Debounce()
			}
			if !cmd.Flags().Changed("poll") {
				poll = cfg.Watch.PollInterval()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			coord, resolver := newCoordinator(cfg, providers.Bindings(cfg))
			out := cmd.OutOrStdout()

			initial := coord.ScanAll()
			logScan("watch: initial scan", initial, resolver)
			if emitInitial {
				if err := writeEntries(out, initial, formatJSONL); err != nil {
					return err
				}
			}

			watcher := telemetry.NewWatcher(coord, debounce, poll)
			log.Printf("watch: following %v", watcher.Roots())

			err = watcher.Run(ctx, func(entries []core.UsageEntry) {
				logScan("watch: incremental scan", entries, resolver)
				if err := writeEntries(out, entries, formatJSONL); err != nil {
					log.Printf("watch: %v", err)
				}
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&emitInitial, "emit-initial", false, "print the entries of the initial full scan too")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "delay after a file event before scanning")
	cmd.Flags().DurationVar(&poll, "poll", 30*time.Second, "interval between scans without file events")
	return cmd
}
