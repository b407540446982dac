package options

import (
	"github.com/spf13/cobra"
)

// ServerOptions
type ServerOptions struct {
	Addr    string
	Secret  string
	Origins []string
}

func AddServerArgs(cmd *cobra.Command, o *ServerOptions) {
	cmd.Flags().StringVar(&o.Addr, "addr", "127.0.0.1:8000",
		"Address to listen on.")
	cmd.Flags().StringVar(&o.Secret, "secret", "",
		"HMAC secret issued tokens are signed with.")
	cmd.Flags().StringSliceVar(&o.Origins, "origin", nil,
		"Allowed CORS origin, may be repeated.")
}

// MCPOptions
type MCPOptions struct {
	Stdio bool
	Addr  string
	Path  string
}

func AddMCPArgs(cmd *cobra.Command, o *MCPOptions) {
	cmd.Flags().BoolVar(&o.Stdio, "stdio", false,
		"Serve a single client over stdin and stdout instead of HTTP.")
	cmd.Flags().StringVar(&o.Addr, "addr", "127.0.0.1:8080",
		"Address the HTTP endpoint listens on.")
	cmd.Flags().StringVar(&o.Path, "path", "/mcp",
		"HTTP endpoint path.")
}
