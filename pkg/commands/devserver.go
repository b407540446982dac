package commands

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"tableflip.dev/moodlog/pkg/commands/options"
	"tableflip.dev/moodlog/pkg/logging"
	"tableflip.dev/moodlog/pkg/runner/serve"
)

func addDevServer(topLevel *cobra.Command) {
	so := &options.ServerOptions{}

	cmd := &cobra.Command{
		Use:    "dev-server",
		Short:  "Run an in-memory journal API for local development",
		Hidden: true,
		Example: `
moodlog dev-server --addr 127.0.0.1:8000
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			log, err := logging.New(logging.Options{Level: "info", Stderr: true})
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			s := serve.Serve{
				Addr:    so.Addr,
				Secret:  so.Secret,
				Origins: so.Origins,
				Logger:  log,
				OnListening: func(a net.Addr) {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "journal API listening on http://%s (users: demo, admin)\n", a)
				},
			}
			return s.Do(cmd.Context())
		},
	}

	options.AddServerArgs(cmd, so)
	topLevel.AddCommand(cmd)
}
