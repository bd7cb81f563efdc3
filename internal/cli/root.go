// Package cli implements the go-inject command line.
package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	userapp "github.com/km-arc/go-inject/app"
	"github.com/km-arc/go-inject/framework/app"
	"github.com/km-arc/go-inject/framework/config"
	"github.com/km-arc/go-inject/framework/logging"
)

type rootOptions struct {
	verbosity int
	jsonLogs  bool
	envFiles  []string
}

// NewRootCmd builds the command tree. Each call returns independent
// commands and flags.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "go-inject",
		Short: "A name-keyed dependency container with an HTTP demo",
		Long: `go-inject wires services by name through a dependency container and
serves the users demo API on top of it.

Bindings declare their dependencies explicitly; resolution builds them in
dependency order and rejects unknown names and cycles before constructing
anything.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbosity, jsonLogs := logSettings(cmd, opts)
			logging.Setup(verbosity, cmd.ErrOrStderr(), jsonLogs)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE); overrides LOG_VERBOSITY")
	root.PersistentFlags().BoolVar(&opts.jsonLogs, "log-json", false, "Write logs as JSON; overrides LOG_JSON")
	root.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "Load environment from these files (default .env)")

	root.AddCommand(
		newServeCmd(opts),
		newDemoCmd(),
		newGraphCmd(opts),
		newCheckCmd(opts),
		newVersionCmd(),
	)
	return root
}

// logSettings reads LOG_VERBOSITY, LOG_JSON and APP_DEBUG from the
// environment and env files. Flags given on the command line win.
func logSettings(cmd *cobra.Command, opts *rootOptions) (int, bool) {
	cfg := config.Load(opts.envFiles...)
	verbosity, jsonLogs := cfg.LogVerbosity(), cfg.Log.JSON

	flags := cmd.Flags()
	if flags.Changed("verbose") {
		verbosity = opts.verbosity
	}
	if flags.Changed("log-json") {
		jsonLogs = opts.jsonLogs
	}
	return verbosity, jsonLogs
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// newApplication creates the application with the framework and user
// providers registered.
func newApplication(opts *rootOptions) (*app.Application, error) {
	return app.New(app.Options{
		EnvFiles:  opts.envFiles,
		Providers: userapp.Providers(),
	})
}
