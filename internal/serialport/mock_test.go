package serialport

import (
	"bufio"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestMockPortReadBlocksUntilPush(t *testing.T) {
	p := NewMockPort()
	defer p.Close()

	lines := make(chan string, 1)
	go func() {
		scan := bufio.NewScanner(p)
		if scan.Scan() {
			lines <- scan.Text()
		}
	}()

	select {
	case l := <-lines:
		t.Fatalf("read %q before any line was pushed", l)
	case <-time.After(20 * time.Millisecond):
	}

	p.PushLine("READY")
	select {
	case l := <-lines:
		if l != "READY" {
			t.Errorf("read %q, want READY", l)
		}
	case <-time.After(time.Second):
		t.Fatal("pushed line never became readable")
	}
}

func TestMockPortReadAfterClose(t *testing.T) {
	p := NewMockPort()
	p.Close()
	buf := make([]byte, 8)
	if _, err := p.Read(buf); err != io.EOF {
		t.Errorf("Read after Close = %v, want io.EOF", err)
	}
}

func TestMockPortRecordsWrites(t *testing.T) {
	p := NewMockPort()
	defer p.Close()

	p.Write([]byte("HOME\n"))
	p.Write([]byte("0.500,1.250;\n"))

	want := []string{"HOME", "0.500,1.250;"}
	if diff := cmp.Diff(want, p.Writes()); diff != "" {
		t.Errorf("recorded writes mismatch (-want +got):\n%s", diff)
	}
}

func TestMockControllerAutoReply(t *testing.T) {
	p := NewMockController()
	defer p.Close()

	// READY is announced on open
	scan := bufio.NewScanner(p)
	if !scan.Scan() || scan.Text() != "READY" {
		t.Fatalf("first line = %q, want READY", scan.Text())
	}

	// a batch write is acknowledged with another READY
	p.Write([]byte("0.000,0.000;1.000,1.000;\n"))
	if !scan.Scan() || scan.Text() != "READY" {
		t.Fatalf("after batch, line = %q, want READY", scan.Text())
	}

	// a command is acknowledged with DONE, then READY again
	p.Write([]byte("HOME\n"))
	if !scan.Scan() || scan.Text() != "DONE" {
		t.Fatalf("after command, line = %q, want DONE", scan.Text())
	}
	if !scan.Scan() || scan.Text() != "READY" {
		t.Fatalf("after DONE, line = %q, want READY", scan.Text())
	}
}

func TestMockPortWriteError(t *testing.T) {
	p := NewMockPort()
	defer p.Close()

	p.WriteErr = io.ErrShortWrite
	if _, err := p.Write([]byte("x\n")); err != io.ErrShortWrite {
		t.Errorf("Write = %v, want %v", err, io.ErrShortWrite)
	}
	// error is one-shot
	if _, err := p.Write([]byte("y\n")); err != nil {
		t.Errorf("second Write = %v, want nil", err)
	}
}
