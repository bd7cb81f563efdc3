package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-inject/app/users"
	"github.com/km-arc/go-inject/framework/app"
	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/errors"
	"github.com/km-arc/go-inject/framework/logging"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Boot the application and serve HTTP",
		Long: `Boot registers and boots every provider, validates the binding graph and
serves HTTP on APP_PORT until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApplication(opts)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return application.Run(ctx)
		},
	}
}

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Resolve a logger → repo → service chain and show the failure modes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd)
		},
	}
}

func runDemo(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	c := container.New(container.WithLogger(logging.GetLogger("container")))

	c.AfterResolving(func(name string, _ any) {
		fmt.Fprintf(out, "constructed %s\n", name)
	})

	c.Bind("logger", nil, container.Ctor0(func() users.Logger {
		return users.NewLogger(logging.GetLogger("demo"))
	}))
	c.Bind("repo", []string{"logger"}, container.Ctor1(users.NewRepository))
	c.Bind("service", []string{"repo"}, container.Ctor1(users.NewService))

	svc, err := container.Resolve[*users.Service](c, "service")
	if err != nil {
		return err
	}
	user, err := svc.RegisterUser(users.Registration{Name: "Andy", Email: "andy@example.com"})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "registered %s <%s>\n", user.Name, user.Email)

	if _, err := c.Make("missing"); err != nil {
		fmt.Fprintf(out, "%s: %v\n", errors.GetErrorCode(err), err)
	}

	c.Bind("x", []string{"y"}, func([]any) (any, error) { return "x", nil })
	c.Bind("y", []string{"x"}, func([]any) (any, error) { return "y", nil })
	if _, err := c.Make("x"); err != nil {
		fmt.Fprintf(out, "%s: %v\n", errors.GetErrorCode(err), err)
	}
	return nil
}

func newGraphCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print every binding with its dependencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := bootApplication(opts)
			if err != nil {
				return err
			}
			return printGraph(cmd, application.Describe(), format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or yaml")
	return cmd
}

func printGraph(cmd *cobra.Command, nodes []container.Node, format string) error {
	out := cmd.OutOrStdout()
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(nodes); err != nil {
			return errors.Wrap(err, errors.ErrInternal, "encoding graph")
		}
		return enc.Close()
	case "text":
		for _, n := range nodes {
			kind := n.Kind
			if n.Shared {
				kind += ", shared"
			}
			line := fmt.Sprintf("%s (%s)", n.Name, kind)
			if len(n.Deps) > 0 {
				line += " -> " + strings.Join(n.Deps, ", ")
			}
			if len(n.Aliases) > 0 {
				line += " [aliases: " + strings.Join(n.Aliases, ", ") + "]"
			}
			fmt.Fprintln(out, line)
		}
		return nil
	default:
		return errors.Newf(errors.ErrInvalidInput, "unknown format %q, want text or yaml", format)
	}
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Boot the application and validate the binding graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := bootApplication(opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d bindings\n", len(application.Bindings()))
			return nil
		},
	}
}

func bootApplication(opts *rootOptions) (*app.Application, error) {
	done := logging.LogOperationStart(logging.GetLogger("cli"), "boot")
	defer done()

	application, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	if err := application.Boot(); err != nil {
		return nil, err
	}
	return application, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "go-inject version %s\n", app.Version)
		},
	}
}
