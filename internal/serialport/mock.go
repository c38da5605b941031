package serialport

import (
	"bytes"
	"io"
	"strings"
	"sync"
)

// MockPort implements Port in memory. Reads block until data is queued with
// PushLine or the port is closed, mirroring a real serial device with no
// pending bytes.
//
// With auto-reply enabled the mock behaves like an idle table controller:
// it announces READY on open, acknowledges every batch message with another
// READY, and every command with DONE followed by READY. Tests that need exact
// control over the handshake leave auto-reply off and push lines themselves.
type MockPort struct {
	mu        sync.Mutex
	readable  *sync.Cond
	readBuf   bytes.Buffer
	writes    []string
	closed    bool
	autoReply bool

	// WriteErr, when set, is returned by the next Write call.
	WriteErr error
}

// NewMockPort creates a quiet MockPort; nothing is readable until PushLine.
func NewMockPort() *MockPort {
	p := &MockPort{}
	p.readable = sync.NewCond(&p.mu)
	return p
}

// NewMockController creates a MockPort with auto-reply enabled and READY
// already announced. It stands in for the table firmware in dev mode and in
// end-to-end tests.
func NewMockController() *MockPort {
	p := NewMockPort()
	p.autoReply = true
	p.PushLine("READY")
	return p
}

// Read blocks until queued data is available or the port is closed.
func (p *MockPort) Read(buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for !p.closed && p.readBuf.Len() == 0 {
		p.readable.Wait()
	}
	if p.closed && p.readBuf.Len() == 0 {
		return 0, io.EOF
	}
	return p.readBuf.Read(buf)
}

// Write records the outbound message and, with auto-reply on, queues the
// controller's response.
func (p *MockPort) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, io.ErrClosedPipe
	}
	if p.WriteErr != nil {
		err := p.WriteErr
		p.WriteErr = nil
		return 0, err
	}

	msg := strings.TrimSuffix(string(data), "\n")
	p.writes = append(p.writes, msg)

	if p.autoReply {
		if strings.HasSuffix(msg, ";") {
			// batch consumed, room for the next one
			p.pushLineLocked("READY")
		} else {
			p.pushLineLocked("DONE")
			p.pushLineLocked("READY")
		}
	}
	return len(data), nil
}

// Close marks the port closed and wakes any blocked reader.
func (p *MockPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.readable.Broadcast()
	return nil
}

// PushLine queues a line (newline appended) for subsequent Read calls.
func (p *MockPort) PushLine(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushLineLocked(line)
}

func (p *MockPort) pushLineLocked(line string) {
	p.readBuf.WriteString(line + "\n")
	p.readable.Broadcast()
}

// Writes returns every message written to the port, newline-stripped, in
// order.
func (p *MockPort) Writes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.writes))
	copy(out, p.writes)
	return out
}
