package livesplit

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/websocket"

	"sonicsplit/timer"
)

// fakeServer is a LiveSplit Server stand-in that records every command line.
type fakeServer struct {
	ln       net.Listener
	commands chan string
	phase    string
	// hangups is the number of phase queries answered by closing the connection.
	hangups int
}

func newFakeServer(t *testing.T, phase string, hangups int) *fakeServer {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &fakeServer{ln: ln, commands: make(chan string, 64), phase: phase, hangups: hangups}
	t.Cleanup(func() { ln.Close() })
	go s.serve()
	return s
}

func (s *fakeServer) serve() {
	for {
		c, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.handle(c)
	}
}

func (s *fakeServer) handle(c net.Conn) {
	defer c.Close()
	r := bufio.NewReader(c)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.TrimRight(line, "\r\n")
		s.commands <- cmd
		if cmd != cmdPhase {
			continue
		}
		if s.hangups > 0 {
			s.hangups--
			return
		}
		c.Write([]byte(s.phase + "\r\n"))
	}
}

func (s *fakeServer) expect(t *testing.T, want string) {
	t.Helper()
	select {
	case got := <-s.commands:
		if got != want {
			t.Fatalf("server got %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("server never got %q", want)
	}
}

func TestTCPCommands(t *testing.T) {
	srv := newFakeServer(t, "Running", 0)
	c := NewTCP(srv.ln.Addr().String())
	defer c.Close()
	ctx := context.Background()

	if err := c.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	srv.expect(t, "starttimer")

	if err := c.Split(ctx); err != nil {
		t.Fatalf("split: %v", err)
	}
	srv.expect(t, "split")

	if err := c.SetGameTime(ctx, time.Hour+2*time.Minute+3*time.Second+45*time.Millisecond); err != nil {
		t.Fatalf("setgametime: %v", err)
	}
	srv.expect(t, "setgametime 1:02:03.045")

	p, err := c.Phase(ctx)
	if err != nil || p != timer.Running {
		t.Fatalf("phase = %s, %v", p, err)
	}
	srv.expect(t, "getcurrenttimerphase")

	if err := c.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	srv.expect(t, "reset")
}

func TestTCPRedialsAfterFailure(t *testing.T) {
	srv := newFakeServer(t, "Paused", 1)
	c := NewTCP(srv.ln.Addr().String())
	defer c.Close()
	ctx := context.Background()

	if _, err := c.Phase(ctx); err == nil {
		t.Fatalf("expected the first phase query to fail")
	}
	srv.expect(t, "getcurrenttimerphase")

	p, err := c.Phase(ctx)
	if err != nil || p != timer.Paused {
		t.Fatalf("phase after redial = %s, %v", p, err)
	}
}

func TestTCPUnexpectedReply(t *testing.T) {
	srv := newFakeServer(t, "Sleeping", 0)
	c := NewTCP(srv.ln.Addr().String())
	defer c.Close()

	if _, err := c.Phase(context.Background()); !errors.Is(err, ErrUnexpectedReply) {
		t.Fatalf("expected ErrUnexpectedReply, got %v", err)
	}
}

func TestTCPDialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	c := NewTCP(addr)
	if err := c.Start(context.Background()); err == nil {
		t.Fatalf("expected a dial error")
	}
}

func TestClosedClient(t *testing.T) {
	srv := newFakeServer(t, "Running", 0)
	c := NewTCP(srv.ln.Addr().String())
	c.Close()
	if err := c.Split(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestWebsocketCommands(t *testing.T) {
	commands := make(chan string, 16)
	srv := httptest.NewServer(websocket.Handler(func(ws *websocket.Conn) {
		for {
			var msg string
			if err := websocket.Message.Receive(ws, &msg); err != nil {
				return
			}
			commands <- msg
			if msg == cmdPhase {
				websocket.Message.Send(ws, "Ended")
			}
		}
	}))
	defer srv.Close()

	c, err := NewWebsocket("ws" + strings.TrimPrefix(srv.URL, "http"))
	if err != nil {
		t.Fatalf("NewWebsocket: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	if err := c.Split(ctx); err != nil {
		t.Fatalf("split: %v", err)
	}
	p, err := c.Phase(ctx)
	if err != nil || p != timer.Ended {
		t.Fatalf("phase = %s, %v", p, err)
	}

	for _, want := range []string{"split", "getcurrenttimerphase"} {
		select {
		case got := <-commands:
			if got != want {
				t.Fatalf("server got %q, want %q", got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("server never got %q", want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[time.Duration]string{
		0:                       "0:00:00.000",
		1500 * time.Millisecond: "0:00:01.500",
		59*time.Minute + 59*time.Second + 999*time.Millisecond: "0:59:59.999",
		-time.Second: "0:00:00.000",
	}
	for d, want := range cases {
		if got := FormatDuration(d); got != want {
			t.Fatalf("FormatDuration(%s) = %q, want %q", d, got, want)
		}
	}
}
