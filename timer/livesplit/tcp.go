package livesplit

import (
	"bufio"
	"context"
	"net"
	"time"
)

type tcpConn struct {
	c net.Conn
	r *bufio.Reader
}

// NewTCP returns a client for the classic LiveSplit Server at addr (host:port).
func NewTCP(addr string) *Client {
	var d net.Dialer
	return newClient(addr, "tcp", func(ctx context.Context) (conn, error) {
		c, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, err
		}
		return &tcpConn{c: c, r: bufio.NewReader(c)}, nil
	})
}

func (t *tcpConn) send(cmd string, deadline time.Time) error {
	if err := t.c.SetWriteDeadline(deadline); err != nil {
		return err
	}
	_, err := t.c.Write([]byte(cmd + "\r\n"))
	return err
}

func (t *tcpConn) receive(deadline time.Time) (string, error) {
	if err := t.c.SetReadDeadline(deadline); err != nil {
		return "", err
	}
	return t.r.ReadString('\n')
}

func (t *tcpConn) Close() error {
	return t.c.Close()
}
