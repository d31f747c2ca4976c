package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/usagescan/internal/config"
	"github.com/janekbaraniewski/usagescan/internal/core"
	"github.com/janekbaraniewski/usagescan/internal/providers"
)

func newConfigCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit the settings file",
	}

	cmd.AddCommand(newConfigPathCommand(opts))
	cmd.AddCommand(newConfigInitCommand(opts))
	cmd.AddCommand(newConfigSourcesCommand(opts))
	cmd.AddCommand(newConfigToggleCommand(opts, "enable", true))
	cmd.AddCommand(newConfigToggleCommand(opts, "disable", false))

	return cmd
}

func newConfigPathCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the settings file location",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), opts.settingsPath())
		},
	}
}

func newConfigInitCommand(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := opts.settingsPath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			}
			if err := opts.saveConfig(config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing settings file")
	return cmd
}

func newConfigSourcesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List tools with their log locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TOOL\tENABLED\tPATTERNS\tDATABASE")
			for _, tool := range core.AllTools() {
				b, _ := providers.BindingFor(cfg, tool)
				db := b.DBPath
				if db == "" {
					db = "-"
				}
				fmt.Fprintf(w, "%s\t%t\t%s\t%s\n", tool, cfg.Source(tool).Enabled, strings.Join(b.Patterns, ", "), db)
			}
			return w.Flush()
		},
	}
}

func newConfigToggleCommand(opts *rootOptions, verb string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <claude|codex|opencode>",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " scanning of a tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tool, ok := core.ParseTool(strings.ToLower(args[0]))
			if !ok {
				return fmt.Errorf("unknown tool %q", args[0])
			}
			if err := opts.saveSourceEnabled(tool, enabled); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %sd\n", tool, verb)
			return nil
		},
	}
}
