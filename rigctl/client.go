// Package rigctl drives a receiver over its line-oriented remote-control port
// (the gqrx/rigctld dialect: "F <hz>", "M <mode> <passband>", "f").
package rigctl

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ziutek/telnet"

	"rigbook/modulation"
)

// DefaultTimeout bounds dialing and each request/response exchange.
const DefaultTimeout = 2 * time.Second

// ErrRejected is returned when the receiver answers a command with a
// non-zero RPRT code.
var ErrRejected = errors.New("rigctl: command rejected")

// Client is a remote-control connection. It dials lazily and redials after
// any I/O error. Methods are safe for concurrent use; requests are
// serialized on the single connection.
type Client struct {
	addr    string
	timeout time.Duration

	mu   sync.Mutex
	conn *telnet.Conn
}

// New returns a client for addr ("host:port"). Nothing is dialed until the
// first request.
func New(addr string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{addr: addr, timeout: timeout}
}

// Addr returns the remote-control address.
func (c *Client) Addr() string {
	return c.addr
}

// Close drops the connection. The client stays usable and redials on the
// next request.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropLocked()
}

func (c *Client) dropLocked() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// SetFrequency tunes the receiver to hz.
func (c *Client) SetFrequency(ctx context.Context, hz int64) error {
	reply, err := c.request(ctx, "F "+strconv.FormatInt(hz, 10))
	if err != nil {
		return err
	}
	return checkReport(reply)
}

// Frequency reads the receiver's current frequency in Hz.
func (c *Client) Frequency(ctx context.Context) (int64, error) {
	reply, err := c.request(ctx, "f")
	if err != nil {
		return 0, err
	}
	hz, err := strconv.ParseInt(reply, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("rigctl: unexpected frequency reply %q", reply)
	}
	return hz, nil
}

// SetMode selects a demodulator by bookmark modulation name. A passband of 0
// keeps the receiver's default for that mode.
func (c *Client) SetMode(ctx context.Context, mod string, passband int64) error {
	mode, ok := modulation.Lookup(mod)
	if !ok {
		return fmt.Errorf("rigctl: unsupported modulation %q", mod)
	}
	cmd := "M " + mode.Remote
	if passband > 0 {
		cmd += " " + strconv.FormatInt(passband, 10)
	}
	reply, err := c.request(ctx, cmd)
	if err != nil {
		return err
	}
	return checkReport(reply)
}

// Tune sets frequency and, when the modulation is known, mode and passband.
func (c *Client) Tune(ctx context.Context, hz int64, mod string, passband int64) error {
	if err := c.SetFrequency(ctx, hz); err != nil {
		return err
	}
	if !modulation.IsValid(mod) {
		return nil
	}
	return c.SetMode(ctx, mod, passband)
}

func (c *Client) request(ctx context.Context, line string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		conn, err := telnet.DialTimeout("tcp", c.addr, c.timeout)
		if err != nil {
			return "", fmt.Errorf("rigctl: dial %s: %w", c.addr, err)
		}
		conn.SetUnixWriteMode(true)
		c.conn = conn
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		c.dropLocked()
		return "", fmt.Errorf("rigctl: set deadline: %w", err)
	}
	if _, err := c.conn.Write([]byte(line + "\n")); err != nil {
		c.dropLocked()
		return "", fmt.Errorf("rigctl: send %q: %w", line, err)
	}
	reply, err := c.conn.ReadString('\n')
	if err != nil {
		c.dropLocked()
		return "", fmt.Errorf("rigctl: read reply to %q: %w", line, err)
	}
	return strings.TrimSpace(reply), nil
}

func checkReport(reply string) error {
	code, ok := strings.CutPrefix(reply, "RPRT")
	if !ok {
		return fmt.Errorf("rigctl: unexpected reply %q", reply)
	}
	if strings.TrimSpace(code) != "0" {
		return fmt.Errorf("%w: %s", ErrRejected, reply)
	}
	return nil
}
