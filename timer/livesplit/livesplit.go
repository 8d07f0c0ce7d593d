// Package livesplit drives a LiveSplit timer through its server component.
//
// LiveSplit Server speaks a line protocol: one command per line, with a
// reply line only for queries. The same commands are accepted as text
// frames by the websocket flavour of the server.
package livesplit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"

	"sonicsplit/timer"
)

var (
	ErrUnexpectedReply = errors.New("unexpected reply from livesplit")
	ErrClosed          = errors.New("livesplit client closed")
)

const (
	cmdStart          = "starttimer"
	cmdSplit          = "split"
	cmdReset          = "reset"
	cmdPauseGameTime  = "pausegametime"
	cmdResumeGameTime = "unpausegametime"
	cmdSetGameTime    = "setgametime"
	cmdPhase          = "getcurrenttimerphase"
)

// DefaultTimeout bounds one command round trip when ctx has no deadline.
const DefaultTimeout = 2 * time.Second

// conn is one open session with the server.
type conn interface {
	send(cmd string, deadline time.Time) error
	receive(deadline time.Time) (string, error)
	Close() error
}

type dialFunc func(ctx context.Context) (conn, error)

// Client implements timer.Timer against a LiveSplit server. It dials lazily
// and drops the connection after any failure; the next command re-dials.
type Client struct {
	Timeout time.Duration

	addr string
	dial dialFunc
	log  *logger.Logger

	mu     sync.Mutex
	conn   conn
	closed bool
}

var _ timer.Timer = (*Client)(nil)

func newClient(addr, transport string, dial dialFunc) *Client {
	return &Client{
		Timeout: DefaultTimeout,
		addr:    addr,
		dial:    dial,
		log:     logger.NewLogger(coloransi.Color(coloransi.ColorLimeGreen, coloransi.ColorOrange, "livesplit-"+transport)),
	}
}

func (c *Client) Phase(ctx context.Context) (timer.Phase, error) {
	reply, err := c.roundTrip(ctx, cmdPhase, true)
	if err != nil {
		return timer.NotRunning, err
	}
	p, err := timer.ParsePhase(reply)
	if err != nil {
		return timer.NotRunning, fmt.Errorf("%w: %v", ErrUnexpectedReply, err)
	}
	return p, nil
}

func (c *Client) Start(ctx context.Context) error {
	return c.command(ctx, cmdStart)
}

func (c *Client) Split(ctx context.Context) error {
	return c.command(ctx, cmdSplit)
}

func (c *Client) Reset(ctx context.Context) error {
	return c.command(ctx, cmdReset)
}

func (c *Client) PauseGameTime(ctx context.Context) error {
	return c.command(ctx, cmdPauseGameTime)
}

func (c *Client) ResumeGameTime(ctx context.Context) error {
	return c.command(ctx, cmdResumeGameTime)
}

func (c *Client) SetGameTime(ctx context.Context, d time.Duration) error {
	return c.command(ctx, cmdSetGameTime+" "+FormatDuration(d))
}

// Close drops the connection. Later commands fail with ErrClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return c.dropLocked()
}

func (c *Client) command(ctx context.Context, cmd string) error {
	_, err := c.roundTrip(ctx, cmd, false)
	return err
}

func (c *Client) roundTrip(ctx context.Context, cmd string, wantReply bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return "", ErrClosed
	}

	if c.conn == nil {
		conn, err := c.dial(ctx)
		if err != nil {
			return "", fmt.Errorf("dial %s: %w", c.addr, err)
		}
		c.log.Infoln("Connected to", c.addr)
		c.conn = conn
	}

	deadline := c.deadline(ctx)
	if err := c.conn.send(cmd, deadline); err != nil {
		c.dropLocked()
		return "", fmt.Errorf("send %q: %w", cmd, err)
	}
	if !wantReply {
		c.log.Debugln("Sent", cmd)
		return "", nil
	}

	reply, err := c.conn.receive(deadline)
	if err != nil {
		c.dropLocked()
		return "", fmt.Errorf("receive reply to %q: %w", cmd, err)
	}
	return strings.TrimSpace(reply), nil
}

func (c *Client) dropLocked() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.log.Debugln("Connection to", c.addr, "dropped")
	return err
}

func (c *Client) deadline(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return time.Now().Add(timeout)
}

// FormatDuration renders d the way LiveSplit parses time spans: H:MM:SS.fff.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60
	return fmt.Sprintf("%d:%02d:%02d.%03d", h, m, s, ms%1000)
}
