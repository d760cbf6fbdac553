package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/topicflow"
	"github.com/aretw0/topicflow/internal/config"
	"github.com/aretw0/topicflow/internal/logging"
	"github.com/aretw0/topicflow/internal/metrics"
	"github.com/spf13/cobra"
)

// errBlocking makes the process exit 1 without an extra error line; the
// report already explains why.
var errBlocking = errors.New("project has blocking validation errors")

// app carries what PersistentPreRunE builds for the subcommands.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type appKey struct{}

func appFrom(cmd *cobra.Command) *app {
	if a, ok := cmd.Context().Value(appKey{}).(*app); ok {
		return a
	}
	return &app{cfg: &config.Config{}, logger: logging.NewNop()}
}

// editor opens the configured store and wires the services on it.
// The returned close function releases the store.
func (a *app) editor(ctx context.Context) (*topicflow.Editor, func() error, error) {
	store, err := openStore(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, nil, err
	}

	opts := []topicflow.Option{
		topicflow.WithLogger(a.logger),
		topicflow.WithMetrics(a.metrics),
		topicflow.WithDisabledRules(a.cfg.Validation.DisabledRules...),
	}
	if store.locker != nil {
		opts = append(opts, topicflow.WithLocker(store.locker, a.cfg.Redis.LockTTL))
	}
	return topicflow.New(store, opts...), store.close, nil
}

// NewRootCmd creates the command tree.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "topicflow",
		Short: "Topicflow validates instrument communication diagrams",
		Long: `Topicflow edits and validates instrument communication diagrams: projects made of
topics, each a state machine of messages exchanged with an instrument.`,
		Version: topicflow.Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			level, err := logging.ParseLevel(cfg.Log.Level)
			if err != nil {
				return err
			}
			logger := logging.NewWithWriter(cmd.ErrOrStderr(), level, cfg.Log.Format)
			slog.SetDefault(logger)
			if cfg.File != "" {
				logger.Debug("Using config file", "path", cfg.File)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, appKey{}, &app{
				cfg:     cfg,
				logger:  logger,
				metrics: metrics.New(),
			}))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate("{{.Name}} version {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", fmt.Sprintf("config file (default: ./%s)", config.DefaultFile))
	pf.String("log-level", "", "Log level (debug|info|warn|error)")
	pf.String("log-format", "", "Log format (text|json)")
	pf.String("store", "", "Store driver (memory|file|redis|sqlite|postgres)")
	pf.String("store-path", "", "Directory of the file store or sqlite database path")
	pf.String("dsn", "", "Postgres connection string")
	pf.String("redis-addr", "", "Redis address")
	pf.Bool("redis-lock", false, "Lock instrument keys through Redis")
	pf.String("renderer-url", "", "Base URL of the diagram renderer")
	pf.StringSlice("disable-rule", nil, "Validation rule IDs to skip (repeatable)")

	_ = rootCmd.RegisterFlagCompletionFunc("store", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.DriverMemory, config.DriverFile, config.DriverRedis, config.DriverSQLite, config.DriverPostgres}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newGraphCmd())
	rootCmd.AddCommand(newRulesCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMCPCmd())
	rootCmd.AddCommand(newProjectCmd())
	rootCmd.AddCommand(newFieldsCmd())

	return rootCmd
}
