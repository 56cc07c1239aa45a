package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/entrhq/webpilot/pkg/config"
	"github.com/entrhq/webpilot/pkg/executor/cli"
	"github.com/entrhq/webpilot/pkg/logging"
)

const keyCheckTimeout = 15 * time.Second

// rootOptions holds the flags shared by all commands.
type rootOptions struct {
	configPath  string
	model       string
	metricsAddr string
	plain       bool
}

// load reads the configuration, applies flag overrides and configures logging.
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.model != "" {
		cfg.LLM.Model = o.model
	}
	if o.metricsAddr != "" {
		cfg.Metrics.Addr = o.metricsAddr
	}

	if err := logging.Configure(logging.Options{
		Dir:        cfg.Logging.Dir,
		Level:      cfg.Logging.Level,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	}); err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}
	return cfg, nil
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "webpilot",
		Short:        "webpilot operates a web browser for you, driven by an LLM.",
		Version:      Version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return runInteractive(cmd.Context(), cfg, opts.plain, cmd)
		},
	}
	cmd.SetVersionTemplate("webpilot {{.Version}}\n")

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "config file (default ./webpilot.yaml, then ~/.webpilot/webpilot.yaml)")
	pf.StringVarP(&opts.model, "model", "m", "", "model to use, overrides llm.model")
	pf.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "use the line-based interface instead of the TUI")

	cmd.AddCommand(
		newRunCommand(opts),
		newCheckKeyCommand(opts),
		newConfigCommand(),
	)
	return cmd
}

func newRunCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <task>",
		Short: "Run a single task and exit; questions are answered on stdin",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.close()

			e := cli.NewExecutor(a.orch,
				cli.WithReader(cmd.InOrStdin()),
				cli.WithWriter(cmd.OutOrStdout()),
				cli.WithModel(cfg.LLM.Model),
			)
			return a.serveWhile(cmd.Context(), func(ctx context.Context) error {
				return e.RunOnce(ctx, strings.Join(args, " "))
			})
		},
	}
}

func newCheckKeyCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check-key",
		Short: "Validate the configured API key against the model endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			provider, err := newProvider(cfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), keyCheckTimeout)
			defer cancel()
			if err := provider.ValidateKey(ctx); err != nil {
				return fmt.Errorf("API key check failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API key OK (model %s)\n", provider.GetModel())
			return nil
		},
	}
}

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var (
		path  string
		force bool
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.WriteFile(path, config.Default(), force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&path, "path", config.DefaultFileName, "where to write the file")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}
