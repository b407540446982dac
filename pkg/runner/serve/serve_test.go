package serve

import (
	"context"
	"net"
	"testing"
	"time"

	"tableflip.dev/moodlog/pkg/api"
)

func TestServeAnswersLogin(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	addrs := make(chan net.Addr, 1)
	done := make(chan error, 1)
	s := &Serve{Addr: "127.0.0.1:0", OnListening: func(a net.Addr) { addrs <- a }}
	go func() { done <- s.Do(ctx) }()

	var addr net.Addr
	select {
	case addr = <-addrs:
	case err := <-done:
		t.Fatalf("serve exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server never listened")
	}

	c := api.New("http://" + addr.String())
	res, err := c.Login(context.Background(), "demo")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.User.Username != "demo" || res.Token == "" {
		t.Fatalf("unexpected login %+v", res)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
