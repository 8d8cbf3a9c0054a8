// Package admin implements the operator command line: schema migrations,
// primary token administration and user bootstrap.
package admin

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/accounts/internal/logging"
	"github.com/dmitrijs2005/accounts/internal/server/config"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	dsn      string
	logLevel string
}

// state is what PersistentPreRunE hands to subcommands.
type state struct {
	cfg     *config.Config
	backend *Backend
	log     logging.Logger
}

// NewRootCmd creates the admin command tree. open is called once per
// invocation after configuration is resolved.
func NewRootCmd(open Opener) *cobra.Command {
	opts := &rootOptions{}
	st := &state{}

	cmd := &cobra.Command{
		Use:           "admin",
		Short:         "Accounts service administration",
		Long:          `Run migrations, manage primary API tokens and create users directly against the accounts database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			b, err := open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			st.cfg = cfg
			st.backend = b
			st.log = logging.NewJSONLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.dsn, "dsn", "d", "", "database DSN (overrides "+config.EnvDatabaseDSN+")")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug|info|warn|error)")

	cmd.AddCommand(newMigrateCmd(st))
	cmd.AddCommand(newTokenCmd(st))
	cmd.AddCommand(newUserCmd(st))

	return cmd
}

// run wraps a subcommand so the backend is closed whether fn fails or not.
func (st *state) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if st.backend != nil {
			if cerr := st.backend.Close(); cerr != nil && err == nil {
				err = cerr
			}
			st.backend = nil
		}
		return err
	}
}

// loadConfig resolves defaults, then the environment, then root flags. The
// admin log level defaults to warn so command output stays readable.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.LogLevel = "warn"
	if err := config.ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if cmd.Flags().Changed("dsn") {
		cfg.DatabaseDSN = opts.dsn
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	return cfg, nil
}

// Execute runs the tree against the real database.
func Execute(ctx context.Context) error {
	return NewRootCmd(OpenBackend).ExecuteContext(ctx)
}
