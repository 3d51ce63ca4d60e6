package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/akhuoa/console-formatter/pkg/paths"
	"github.com/akhuoa/console-formatter/pkg/server"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var addr, static string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: MsgServeShort,
		Long:  MsgServeLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("static") {
				a.cfg.Server.Static = static
			}

			catalog, err := a.catalog()
			if err != nil {
				return err
			}

			staticDir := a.cfg.Server.Static
			if staticDir != "" {
				staticDir = paths.ExpandHome(staticDir)
			}

			srv, err := server.New(server.Options{
				Addr:      a.cfg.Server.Addr,
				BodyLimit: a.cfg.Server.Limit,
				StaticDir: staticDir,
				Catalog:   catalog,
				Fetcher:   a.fetchClient(),
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), MsgListening+"\n", displayAddr(a.cfg.Server.Addr))
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", MsgFlagAddr)
	cmd.Flags().StringVar(&static, "static", "", MsgFlagStatic)
	return cmd
}

// displayAddr turns a listen address into one a browser can open
func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return strings.Replace(addr, "0.0.0.0", "localhost", 1)
}
