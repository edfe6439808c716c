// Package cli wires the oadesk command line: the TUI by default, plus
// scriptable subcommands over the same data access layer.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/idilsaglam/oadesk/internal/api"
	"github.com/idilsaglam/oadesk/internal/config"
	"github.com/idilsaglam/oadesk/internal/logging"
	"github.com/idilsaglam/oadesk/internal/tui"
	"github.com/idilsaglam/oadesk/internal/ui"
)

// Version info (set at build time)
var Version = "0.1.0"

// app carries state shared by every subcommand of one invocation.
type app struct {
	configPath string
	backend    string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger

	// client, when set, replaces the configured backend.
	client api.Client
	runTUI func(api.Client, *zap.Logger) error
}

// Option customises the command tree, mostly for tests.
type Option func(*app)

// WithClient makes every subcommand use c instead of the configured backend.
func WithClient(c api.Client) Option {
	return func(a *app) { a.client = c }
}

// WithTUI replaces the interactive entry point.
func WithTUI(run func(api.Client, *zap.Logger) error) Option {
	return func(a *app) { a.runTUI = run }
}

// NewRootCmd builds the oadesk command tree.
func NewRootCmd(opts ...Option) *cobra.Command {
	a := &app{runTUI: tui.Run, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}

	root := &cobra.Command{
		Use:   "oadesk",
		Short: "Office dashboard for the terminal",
		Long: `oadesk is a terminal office dashboard: to-do list, company
announcements and an AI assistant.

Examples:
  oadesk                          Open the dashboard
  oadesk todos ls                 List to-do items
  oadesk todos add 写周报          Add an item
  oadesk chat 你好                 Ask the assistant once
  oadesk serve --store sqlite     Run the JSON backend`,
		Version:           Version,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { _ = a.logger.Sync() },
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.dataClient()
			if err != nil {
				return err
			}
			return a.runTUI(c, a.logger)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/.oadesk/config.yaml)")
	root.PersistentFlags().StringVar(&a.backend, "backend", "", "data backend: mock or http")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		a.todosCmd(),
		a.announcementsCmd(),
		a.chatCmd(),
		a.statusCmd(),
		a.serveCmd(),
		a.authCmd(),
		a.configCmd(),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		ui.Fail(os.Stderr, err.Error())
		return 1
	}
	return 0
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.backend != "" {
		cfg.Backend = a.backend
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg
	ui.SetTheme(cfg.Theme)

	logger, err := logging.New(logging.Options{
		File:    cfg.Log.File,
		Level:   cfg.Log.Level,
		Verbose: a.verbose,
	})
	if err != nil {
		return err
	}
	a.logger = logger
	if cfg.API.TokenExpired {
		a.logger.Warn("saved token has expired; requests are sent without one")
		if cfg.Backend == config.BackendHTTP {
			ui.Fail(cmd.ErrOrStderr(), "saved token has expired, run `oadesk auth login`")
		}
	}
	a.logger.Debug("command start",
		zap.String("command", cmd.CommandPath()),
		zap.String("backend", cfg.Backend))
	return nil
}

// dataClient returns the api.Client selected by configuration.
func (a *app) dataClient() (api.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	return newClient(a.cfg, a.logger)
}

func newClient(cfg config.Config, logger *zap.Logger) (api.Client, error) {
	switch cfg.Backend {
	case config.BackendHTTP:
		timeout, err := cfg.Timeout()
		if err != nil {
			return nil, err
		}
		opts := []api.HTTPOption{api.WithLogger(logger)}
		if timeout > 0 {
			opts = append(opts, api.WithTimeout(timeout))
		}
		if cfg.API.Token != "" {
			opts = append(opts, api.WithToken(cfg.API.Token))
		}
		return api.NewHTTPClient(cfg.API.BaseURL, opts...), nil
	case config.BackendMock:
		return api.NewMockClient(
			api.WithLatencyScale(cfg.Mock.LatencyScale),
			api.WithMockLogger(logger),
		), nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

func out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }
