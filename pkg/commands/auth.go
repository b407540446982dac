package commands

import (
	"errors"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/moodlog/pkg/commands/options"
	"tableflip.dev/moodlog/pkg/runner/auth"
)

func addLogin(topLevel *cobra.Command) {
	lo := &options.LoginOptions{}

	cmd := &cobra.Command{
		Use:   "login [username]",
		Short: "Sign in and remember the session",
		Example: `
moodlog login demo
moodlog login --google
moodlog login --token eyJhbGciOi...
`,
		Args: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if len(args) > 1 {
				return errors.New("login takes a single username")
			}
			if len(args) == 0 && lo.Token == "" && !lo.Google {
				return errors.New("requires a username, --token or --google")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()

			l := auth.Login{
				Service: e.Service,
				Printer: e.Printer,
				Token:   lo.Token,
				Google:  lo.Google,
			}
			if len(args) == 1 {
				l.Username = args[0]
			}
			err = l.Do(cmd.Context())
			return output.HandleError(err)
		},
	}

	options.AddLoginArgs(cmd, lo)
	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}

func addLogout(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Example: `
moodlog logout
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()

			l := auth.Logout{Service: e.Service, Printer: e.Printer}
			err = l.Do(cmd.Context())
			return output.HandleError(err)
		},
	}

	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}

func addWhoAmI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user",
		Example: `
moodlog whoami
moodlog whoami --json
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()

			w := auth.WhoAmI{Service: e.Service, Printer: e.Printer, JSON: output.JSON}
			err = w.Do(cmd.Context())
			return output.HandleError(err)
		},
	}

	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
