package livesplit

import (
	"context"
	"net/url"
	"time"

	"golang.org/x/net/websocket"
)

type wsConn struct {
	c *websocket.Conn
}

// NewWebsocket returns a client for a LiveSplit websocket server, e.g.
// ws://localhost:16834/livesplit.
func NewWebsocket(rawURL string) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	origin := &url.URL{Scheme: "http", Host: u.Host}
	if u.Scheme == "wss" {
		origin.Scheme = "https"
	}

	config, err := websocket.NewConfig(u.String(), origin.String())
	if err != nil {
		return nil, err
	}

	return newClient(rawURL, "ws", func(ctx context.Context) (conn, error) {
		c, err := config.DialContext(ctx)
		if err != nil {
			return nil, err
		}
		return &wsConn{c: c}, nil
	}), nil
}

func (w *wsConn) send(cmd string, deadline time.Time) error {
	if err := w.c.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return websocket.Message.Send(w.c, cmd)
}

func (w *wsConn) receive(deadline time.Time) (string, error) {
	if err := w.c.SetReadDeadline(deadline); err != nil {
		return "", err
	}
	var reply string
	err := websocket.Message.Receive(w.c, &reply)
	return reply, err
}

func (w *wsConn) Close() error {
	return w.c.Close()
}
