package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"tableflip.dev/moodlog/pkg/app"
	"tableflip.dev/moodlog/pkg/logging"
)

const (
	DefaultAddr = "127.0.0.1:8080"
	DefaultPath = "/mcp"
)

const instructions = "Read and write mood journal entries, the mood calendar and settings of the signed in user."

// Runner exposes the signed in user's journal to MCP clients until ctx is
// done. It serves streamable HTTP unless Stdio is set.
type Runner struct {
	Service *app.Service
	Version string
	Logger  *zap.Logger

	Stdio bool
	Addr  string
	Path  string
	// OnListening is called with the endpoint URL once the port is open.
	OnListening func(url string)
}

func (r *Runner) Do(ctx context.Context) error {
	if r.Service == nil {
		return errors.New("mcp: no journal service")
	}
	srv := r.newServer()
	if r.Stdio {
		return server.ServeStdio(srv)
	}
	return r.serveHTTP(ctx, srv)
}

func (r *Runner) newServer() *server.MCPServer {
	version := r.Version
	if version == "" {
		version = "dev"
	}
	srv := server.NewMCPServer("moodlog", version,
		server.WithResourceCapabilities(false, false),
		server.WithToolCapabilities(false),
		server.WithInstructions(instructions),
		server.WithRecovery(),
	)
	svc := NewService(r.Service)
	registerResources(srv, svc)
	registerTools(srv, svc)
	return srv
}

// EndpointPath normalizes the HTTP path the server is mounted on.
func EndpointPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return DefaultPath
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func (r *Runner) serveHTTP(ctx context.Context, srv *server.MCPServer) error {
	log := logging.OrNop(r.Logger)
	path := EndpointPath(r.Path)
	addr := r.Addr
	if addr == "" {
		addr = DefaultAddr
	}

	mux := http.NewServeMux()
	mux.Handle(path, server.NewStreamableHTTPServer(srv))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("mcp: listen %s: %w", addr, err)
	}
	url := "http://" + ln.Addr().String() + path
	log.Info("mcp server listening", zap.String("url", url))
	if r.OnListening != nil {
		r.OnListening(url)
	}

	httpSrv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	if err := httpSrv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
