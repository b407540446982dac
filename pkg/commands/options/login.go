package options

import (
	"github.com/spf13/cobra"
)

// LoginOptions
type LoginOptions struct {
	Token  string
	Google bool
}

func AddLoginArgs(cmd *cobra.Command, o *LoginOptions) {
	cmd.Flags().StringVar(&o.Token, "token", "",
		`Sign in with a token from the Google redirect instead of a username.`)
	cmd.Flags().BoolVar(&o.Google, "google", false,
		"Print the Google sign in URL.")
}
