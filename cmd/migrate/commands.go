package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unicrossed/backend/internal/config"
	"github.com/unicrossed/backend/internal/infra/logger"
	pgrepo "github.com/unicrossed/backend/internal/repo/postgres"
)

type migrator interface {
	Up() error
	Down(steps int) error
	Version() (uint, bool, error)
	Force(version int) error
	Close() error
}

type openFunc func(dsn string, log *zap.Logger) (migrator, error)

type rootOptions struct {
	ConfigPath string
	DSN        string
	open       openFunc
	log        *zap.Logger
}

func openPostgres(dsn string, log *zap.Logger) (migrator, error) {
	return pgrepo.NewMigrator(dsn, log)
}

// newRootCommand builds the migrate CLI. The DSN comes from --dsn or, when
// empty, from the api config file and its env overrides.
func newRootCommand(open openFunc) *cobra.Command {
	opts := &rootOptions{open: open}

	cmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the UniCrossed postgres schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if opts.DSN == "" {
				opts.DSN = cfg.Postgres.DSN
			}
			log, err := logger.New(cfg.Log.Level, cfg.Env)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			opts.log = log
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "configs/config.yaml", "path to config yaml")
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "postgres dsn (overrides config)")

	cmd.AddCommand(newUpCommand(opts))
	cmd.AddCommand(newDownCommand(opts))
	cmd.AddCommand(newVersionCommand(opts))
	cmd.AddCommand(newForceCommand(opts))

	return cmd
}

func newUpCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(opts, func(m migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				return printVersion(cmd, m)
			})
		},
	}
}

func newDownCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "down [N]",
		Short: "Roll back N migrations (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				steps = n
			}
			return withMigrator(opts, func(m migrator) error {
				if err := m.Down(steps); err != nil {
					return err
				}
				return printVersion(cmd, m)
			})
		},
	}
}

func newVersionCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(opts, func(m migrator) error {
				return printVersion(cmd, m)
			})
		},
	}
}

func newForceCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "force V",
		Short: "Set the schema version without running migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return withMigrator(opts, func(m migrator) error {
				if err := m.Force(version); err != nil {
					return err
				}
				return printVersion(cmd, m)
			})
		},
	}
}

func withMigrator(opts *rootOptions, fn func(migrator) error) error {
	m, err := opts.open(opts.DSN, opts.log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil && opts.log != nil {
			opts.log.Warn("close migrator", zap.Error(err))
		}
	}()
	return fn(m)
}

func printVersion(cmd *cobra.Command, m migrator) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	cmd.Printf("version=%d dirty=%t\n", version, dirty)
	return nil
}
