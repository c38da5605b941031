// Package driver implements the host side of the table controller's
// READY/DONE wire protocol.
//
// The protocol is pull-based flow control: the controller prints READY when
// it has room for motion data and the host answers with exactly one batch;
// standalone commands are acknowledged with DONE. Any other inbound line is
// informational and ignored.
package driver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/sandline/sandline/internal/monitoring"
	"github.com/sandline/sandline/internal/pattern"
	"github.com/sandline/sandline/internal/serialport"
	"github.com/sandline/sandline/internal/timeutil"
)

const (
	tokenReady = "READY"
	tokenDone  = "DONE"
)

// DefaultAwaitTimeout bounds how long a single READY or DONE wait may block.
// Draining a full batch buffer or homing the gantry can take a while, so the
// bound is generous; it exists to turn a dead controller into an error
// instead of a hang.
const DefaultAwaitTimeout = 2 * time.Minute

var (
	// ErrClosed is returned when the connection is gone before or during a
	// handshake wait.
	ErrClosed = errors.New("driver: connection closed")

	// ErrStall is returned when the controller sends no matching token
	// within the await timeout.
	ErrStall = errors.New("driver: controller stalled")

	// ErrBadCommand is returned for command names that are not a single
	// bare token.
	ErrBadCommand = errors.New("driver: command must be a single bare token")

	// ErrWriteFailed is returned on a short write to the serial port.
	ErrWriteFailed = errors.New("driver: short write to serial port")
)

// Options tunes a Driver. The zero value selects the real clock and
// DefaultAwaitTimeout.
type Options struct {
	Clock        timeutil.Clock
	AwaitTimeout time.Duration
}

// Driver owns the serial connection to the table controller. Monitor must be
// running for the handshake waits to make progress.
type Driver struct {
	port         serialport.Port
	clock        timeutil.Clock
	awaitTimeout time.Duration

	writeMu sync.Mutex

	lines     chan string
	closed    chan struct{}
	closeOnce sync.Once
}

// New creates a Driver over port. The Driver takes ownership of the port and
// closes it on Close.
func New(port serialport.Port, opts Options) *Driver {
	if opts.Clock == nil {
		opts.Clock = timeutil.RealClock{}
	}
	if opts.AwaitTimeout <= 0 {
		opts.AwaitTimeout = DefaultAwaitTimeout
	}
	return &Driver{
		port:         port,
		clock:        opts.Clock,
		awaitTimeout: opts.AwaitTimeout,
		lines:        make(chan string, 16),
		closed:       make(chan struct{}),
	}
}

// Monitor reads controller lines and feeds the handshake waiters. It returns
// when ctx is cancelled, the port read side fails, or the port reaches EOF.
// Once Monitor returns, pending and future waits fail with ErrClosed.
func (d *Driver) Monitor(ctx context.Context) error {
	defer d.markClosed()

	scan := bufio.NewScanner(d.port)
	scanned := make(chan string)
	scanErr := make(chan error, 1)

	// The blocking scan.Scan lives in its own goroutine so the outer loop
	// can still observe context cancellation.
	go func() {
		defer close(scanned)
		for scan.Scan() {
			select {
			case scanned <- scan.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scan.Err(); err != nil {
			select {
			case scanErr <- err:
			case <-ctx.Done():
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-scanErr:
			return err
		case line, ok := <-scanned:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			select {
			case d.lines <- line:
			default:
				monitoring.Logf("driver: dropping unread line %q", line)
			}
		}
	}
}

// SendCommand writes the command token and blocks until the controller
// acknowledges it with DONE.
func (d *Driver) SendCommand(ctx context.Context, name string) error {
	if name == "" || strings.ContainsFunc(name, unicode.IsSpace) {
		return fmt.Errorf("%w: %q", ErrBadCommand, name)
	}

	if err := d.write([]byte(name + "\n")); err != nil {
		return err
	}
	monitoring.Logf("driver: sent command %s", name)

	if err := d.awaitToken(ctx, tokenDone); err != nil {
		return fmt.Errorf("command %s: %w", name, err)
	}
	return nil
}

// SendBatch blocks until the controller signals READY, then writes the batch
// as one wire message. An empty batch is a no-op.
func (d *Driver) SendBatch(ctx context.Context, batch []pattern.Coordinate) error {
	if len(batch) == 0 {
		return nil
	}

	if err := d.awaitToken(ctx, tokenReady); err != nil {
		return err
	}
	return d.write(EncodeBatch(batch))
}

// Close tears down the connection. Pending handshake waits fail with
// ErrClosed.
func (d *Driver) Close() error {
	d.markClosed()
	return d.port.Close()
}

func (d *Driver) markClosed() {
	d.closeOnce.Do(func() { close(d.closed) })
}

// awaitToken consumes controller lines until one equals want, logging and
// discarding everything else.
func (d *Driver) awaitToken(ctx context.Context, want string) error {
	timer := d.clock.NewTimer(d.awaitTimeout)
	defer timer.Stop()

	for {
		select {
		case line := <-d.lines:
			line = strings.TrimSpace(line)
			if line == want {
				return nil
			}
			monitoring.Logf("driver: controller says %q", line)
		case <-timer.C():
			return fmt.Errorf("%w: no %s within %s", ErrStall, want, d.awaitTimeout)
		case <-d.closed:
			return ErrClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (d *Driver) write(msg []byte) error {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	n, err := d.port.Write(msg)
	if err != nil {
		return fmt.Errorf("driver: write: %w", err)
	}
	if n != len(msg) {
		return ErrWriteFailed
	}
	return nil
}

// EncodeBatch renders a batch as its wire message: theta,rho pairs at three
// decimal places, semicolon-delimited with a trailing semicolon, newline
// terminated. Example: "0.500,1.250;2.000,3.000;\n".
func EncodeBatch(batch []pattern.Coordinate) []byte {
	var b strings.Builder
	for _, c := range batch {
		fmt.Fprintf(&b, "%.3f,%.3f;", c.Theta, c.Rho)
	}
	b.WriteByte('\n')
	return []byte(b.String())
}
