package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tableflip.dev/moodlog/pkg/commands/options"
	"tableflip.dev/moodlog/pkg/runner/mcp"
)

func addMCP(topLevel *cobra.Command) {
	mo := &options.MCPOptions{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the journal to assistants over the Model Context Protocol",
		Long: `Launch an MCP server that lets an assistant read and write journal entries,
the mood calendar and settings as the signed in user.`,
		Example: `
moodlog mcp --stdio
moodlog mcp --addr 127.0.0.1:8081
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.Close()
			if !e.Service.Session().Authenticated() {
				return errors.New("not logged in, run moodlog login first")
			}

			r := &mcp.Runner{
				Service: e.Service,
				Version: version,
				Logger:  e.Log,
				Stdio:   mo.Stdio,
				Addr:    mo.Addr,
				Path:    mo.Path,
				OnListening: func(url string) {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on %s\n", url)
				},
			}
			return r.Do(cmd.Context())
		},
	}

	options.AddMCPArgs(cmd, mo)
	topLevel.AddCommand(cmd)
}
