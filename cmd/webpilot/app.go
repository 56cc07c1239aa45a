package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/entrhq/webpilot/pkg/agent"
	"github.com/entrhq/webpilot/pkg/config"
	"github.com/entrhq/webpilot/pkg/executor/cli"
	"github.com/entrhq/webpilot/pkg/executor/tui"
	"github.com/entrhq/webpilot/pkg/llm"
	"github.com/entrhq/webpilot/pkg/llm/openai"
	"github.com/entrhq/webpilot/pkg/llm/tokenizer"
	"github.com/entrhq/webpilot/pkg/logging"
	"github.com/entrhq/webpilot/pkg/metrics"
	"github.com/entrhq/webpilot/pkg/tools/browser"
)

// Constructors are variables so tests can replace the network and browser.
var (
	newProvider = func(cfg *config.Config) (llm.Provider, error) {
		opts := []openai.ProviderOption{openai.WithModel(cfg.LLM.Model)}
		if cfg.LLM.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.LLM.BaseURL))
		}
		return openai.NewProvider(cfg.LLM.APIKey, opts...)
	}

	newSurface = startDriver

	newTokenizer = tokenizer.New
)

// app is the wired object graph behind every command that runs tasks.
type app struct {
	cfg          *config.Config
	provider     llm.Provider
	orch         *agent.Orchestrator
	metrics      *metrics.Recorder
	closeSurface func() error
	log          *logging.Logger
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log, err := logging.NewLogger("main")
	if err != nil {
		log.Warnf("Logging to stderr: %v", err)
	}

	provider, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}

	surface, closeSurface, err := newSurface(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	rec := metrics.New()
	opts := []agent.Option{
		agent.WithMaxIterations(cfg.Agent.MaxIterations),
		agent.WithPageGrounding(cfg.Agent.PageGrounding),
		agent.WithBufferSize(cfg.Agent.BufferSize),
		agent.WithMetrics(rec),
	}
	if tok, err := newTokenizer(); err != nil {
		log.Warnf("Token counting falls back to estimates: %v", err)
	} else {
		opts = append(opts, agent.WithTokenizer(tok))
	}

	orch, err := agent.New(provider, surface, opts...)
	if err != nil {
		_ = closeSurface()
		return nil, err
	}

	log.Infof("webpilot %s ready: model=%s tools=%v", Version, cfg.LLM.Model, orch.ToolNames())
	return &app{
		cfg:          cfg,
		provider:     provider,
		orch:         orch,
		metrics:      rec,
		closeSurface: closeSurface,
		log:          log,
	}, nil
}

// startDriver launches the Playwright browser described by cfg.
func startDriver(ctx context.Context, cfg *config.Config) (browser.Surface, func() error, error) {
	policy, err := browser.NewPolicy(cfg.Browser.Blocklist)
	if err != nil {
		return nil, nil, err
	}

	log, _ := logging.NewLogger("browser")
	opts := browser.DefaultOptions()
	opts.Headless = cfg.Browser.Headless
	opts.Width = cfg.Browser.Width
	opts.Height = cfg.Browser.Height
	opts.PositionX = cfg.Browser.PositionX
	opts.PositionY = cfg.Browser.PositionY
	opts.SlowMo = cfg.Browser.SlowMo()
	opts.StateFile = cfg.Browser.StateFile
	opts.MaxTextLength = cfg.Browser.MaxTextLength
	opts.SkipInstall = cfg.Browser.SkipInstall
	opts.Policy = policy

	d := browser.NewDriver(opts, log)
	if err := d.Start(ctx); err != nil {
		return nil, nil, err
	}
	if cfg.Browser.StartURL != "" {
		log.Infof("Start page: %s", d.Navigate(ctx, cfg.Browser.StartURL))
	}
	return d, d.Close, nil
}

// serveWhile runs fn and, when configured, the metrics endpoint until fn
// returns.
func (a *app) serveWhile(ctx context.Context, fn func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	metricsCtx, stopMetrics := context.WithCancel(gctx)

	if addr := a.cfg.Metrics.Addr; addr != "" {
		a.log.Infof("Serving metrics on %s", addr)
		g.Go(func() error {
			return a.metrics.Serve(metricsCtx, addr)
		})
	}
	g.Go(func() error {
		defer stopMetrics()
		return fn(gctx)
	})
	return g.Wait()
}

func (a *app) close() {
	if err := a.closeSurface(); err != nil {
		a.log.Warnf("Closing browser: %v", err)
	}
}

// runInteractive runs the TUI, or the line-based REPL when plain is set.
func runInteractive(ctx context.Context, cfg *config.Config, plain bool, cmd *cobra.Command) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	return a.serveWhile(ctx, func(ctx context.Context) error {
		if plain {
			return cli.NewExecutor(a.orch,
				cli.WithReader(cmd.InOrStdin()),
				cli.WithWriter(cmd.OutOrStdout()),
				cli.WithModel(cfg.LLM.Model),
			).Run(ctx)
		}
		return tui.NewExecutor(a.orch, a.provider, cfg.ModelChoices()).Run(ctx)
	})
}
