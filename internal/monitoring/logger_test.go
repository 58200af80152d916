package monitoring

import (
	"fmt"
	"strings"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")
	if !called {
		t.Error("Custom logger was not called")
	}

	// nil installs a no-op that must not reach the previous logger
	called = false
	SetLogger(nil)
	Logf("test message")
	if called {
		t.Error("No-op logger should not have triggered callback")
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Error("Logf should not be nil by default")
	}
}

func TestWithPrefix(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got []string
	SetLogger(func(format string, v ...interface{}) {
		got = append(got, fmt.Sprintf(format, v...))
	})

	logf := WithPrefix("[kde] ")
	logf("cells=%d", 64)

	if len(got) != 1 || got[0] != "[kde] cells=64" {
		t.Errorf("WithPrefix output = %q, want [\"[kde] cells=64\"]", got)
	}
}

func TestStage(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got []string
	SetLogger(func(format string, v ...interface{}) {
		got = append(got, fmt.Sprintf(format, v...))
	})

	done := Stage("render svg")
	done()

	if len(got) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %q", len(got), got)
	}
	if got[0] != "render svg: started" {
		t.Errorf("first line = %q", got[0])
	}
	if !strings.HasPrefix(got[1], "render svg: done in ") {
		t.Errorf("second line = %q", got[1])
	}
}
