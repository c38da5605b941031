package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})

	Logf("hello %s", "world")
	if got != "hello world" {
		t.Errorf("captured %q, want %q", got, "hello world")
	}
}

func TestSetLoggerNil(t *testing.T) {
	SetLogger(nil)
	// must not panic
	Logf("should go nowhere %d", 42)
}

func TestMute(t *testing.T) {
	var calls int
	SetLogger(func(string, ...interface{}) { calls++ })

	restore := Mute()
	Logf("during mute")
	restore()
	Logf("after restore")

	if calls != 1 {
		t.Errorf("logger called %d times, want 1 (only after restore)", calls)
	}
	SetLogger(nil)
}
