package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/awsl-project/hostlink/internal/config"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hostlink",
		Short: "Hostlink - remote assistance host",
		Long: `Hostlink accepts remote-assistance connection requests and opens a
session surface for each one. The background service is torn down when the
system suspends and recreated when it resumes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newServeCommand(), newTokenCommand(), newVersionCommand())
	return cmd
}

// loadConfig reads HOSTLINK_* variables; flags that were set win.
func loadConfig(flags *pflag.FlagSet, o *overrides) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	o.apply(flags, cfg)
	return cfg, nil
}

type overrides struct {
	addr     string
	secret   string
	manifest string
	metrics  string
	logLevel string
	dataDir  string
}

func (o *overrides) register(flags *pflag.FlagSet) {
	flags.StringVar(&o.addr, "addr", "", "remote-access listen address (HOSTLINK_REMOTE_ADDR)")
	flags.StringVar(&o.secret, "secret", "", "token signing secret (HOSTLINK_REMOTE_SECRET)")
	flags.StringVar(&o.manifest, "manifest", "", "application manifest path (HOSTLINK_MANIFEST)")
	flags.StringVar(&o.metrics, "metrics-addr", "", "Prometheus listen address (HOSTLINK_METRICS_ADDR)")
	flags.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error (HOSTLINK_LOGGING_LEVEL)")
	flags.StringVar(&o.dataDir, "data-dir", "", "data directory (HOSTLINK_STORAGE_DATA_DIR)")
}

func (o *overrides) apply(flags *pflag.FlagSet, cfg *config.Config) {
	set := func(name string, dst *string, v string) {
		if f := flags.Lookup(name); f != nil && f.Changed {
			*dst = v
		}
	}
	set("addr", &cfg.Remote.Addr, o.addr)
	set("secret", &cfg.Remote.Secret, o.secret)
	set("manifest", &cfg.Manifest, o.manifest)
	set("metrics-addr", &cfg.Metrics, o.metrics)
	set("log-level", &cfg.Logging.Level, o.logLevel)
	set("data-dir", &cfg.Storage.DataDir, o.dataDir)
}
