package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/usagescan/internal/core"
	"github.com/janekbaraniewski/usagescan/internal/providers"
)

func newScanCommand(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "scan [claude|codex|opencode|all]",
		Short: "Scan usage logs once and print every entry",
		Long: "Scan usage logs of all enabled tools, or of one tool regardless of its enabled setting, " +
			"and print the entries to stdout.",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"claude", "codex", "opencode", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			bindings := providers.Bindings(cfg)
			if len(args) == 1 && !strings.EqualFold(args[0], "all") {
				tool, ok := core.ParseTool(strings.ToLower(args[0]))
				if !ok {
					return fmt.Errorf("unknown tool %q; expected claude, codex, opencode or all", args[0])
				}
				b, _ := providers.BindingFor(cfg, tool)
				bindings = []providers.Binding{b}
			}

			coord, resolver := newCoordinator(cfg, bindings)
			entries := coord.ScanAll()
			logScan("scan", entries, resolver)
			return writeEntries(cmd.OutOrStdout(), entries, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format: json or jsonl")
	return cmd
}
