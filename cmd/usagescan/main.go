package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/usagescan/internal/config"
	"github.com/janekbaraniewski/usagescan/internal/core"
	"github.com/janekbaraniewski/usagescan/internal/pricing"
	"github.com/janekbaraniewski/usagescan/internal/providers"
	"github.com/janekbaraniewski/usagescan/internal/telemetry"
	"github.com/janekbaraniewski/usagescan/internal/version"
)

func main() {
	if os.Getenv("USAGESCAN_DEBUG") != "" {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	verbose    bool
}

func (o *rootOptions) loadConfig() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if o.configPath == "" {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFrom(o.configPath)
	}
	if err != nil {
		return cfg, fmt.Errorf("loading config (%s): %w", o.settingsPath(), err)
	}
	return cfg, nil
}

func (o *rootOptions) settingsPath() string {
	if o.configPath != "" {
		return o.configPath
	}
	return config.ConfigPath()
}

func (o *rootOptions) saveConfig(cfg config.Config) error {
	if o.configPath == "" {
		return config.Save(cfg)
	}
	return config.SaveTo(o.configPath, cfg)
}

func (o *rootOptions) saveSourceEnabled(tool core.Tool, enabled bool) error {
	if o.configPath == "" {
		return config.SaveSourceEnabled(tool, enabled)
	}
	return config.SaveSourceEnabledTo(o.configPath, tool, enabled)
}

func newCoordinator(cfg config.Config, bindings []providers.Binding) (*telemetry.Coordinator, *pricing.Resolver) {
	resolver := pricing.NewSourceResolver(cfg.Pricing.Source())
	return telemetry.NewCoordinator(bindings, resolver), resolver
}

// logScan reports what a scan found. It does nothing unless diagnostics are
// enabled, since resolver.Len may load the price table.
func logScan(kind string, entries []core.UsageEntry, resolver *pricing.Resolver) {
	if log.Writer() == io.Discard {
		return
	}
	counts := lo.CountValuesBy(entries, func(e core.UsageEntry) core.Tool { return e.Tool })
	tokens := lo.SumBy(entries, func(e core.UsageEntry) int64 { return e.Tokens().Total() })
	log.Printf("%s: %d entries %v, %d tokens, %d priced models", kind, len(entries), counts, tokens, resolver.Len())
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "usagescan",
		Short:        "usagescan reads local AI coding tool logs and reports token usage and cost.",
		Version:      version.String(),
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if opts.verbose {
				log.SetOutput(os.Stderr)
			}
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "settings file (default "+config.ConfigPath()+")")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log diagnostics to stderr")

	root.AddCommand(newScanCommand(opts))
	root.AddCommand(newWatchCommand(opts))
	root.AddCommand(newConfigCommand(opts))

	return root
}
