// Package serve runs the in-memory journal API for local development.
package serve

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"tableflip.dev/moodlog/pkg/apitest"
	"tableflip.dev/moodlog/pkg/logging"
)

const defaultAddr = "127.0.0.1:8000"

// Serve runs the fake API until ctx is done.
type Serve struct {
	Addr    string
	Secret  string
	Origins []string
	Logger  *zap.Logger
	// OnListening is called with the bound address once the port is open.
	OnListening func(net.Addr)
}

func (s *Serve) Do(ctx context.Context) error {
	log := logging.OrNop(s.Logger)
	opts := []apitest.Option{apitest.WithLogger(log), apitest.WithAllowedOrigins(s.Origins...)}
	if s.Secret != "" {
		opts = append(opts, apitest.WithSecret(s.Secret))
	}
	fake := apitest.New(opts...)

	addr := s.Addr
	if addr == "" {
		addr = defaultAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if s.OnListening != nil {
		s.OnListening(ln.Addr())
	}
	log.Info("dev server listening", zap.String("addr", ln.Addr().String()))

	httpSrv := &http.Server{
		Handler:           fake.Handler(),
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
