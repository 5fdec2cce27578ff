package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestVerbosityFiltersMessages(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer SetVerbosity(int(Info))

	SetVerbosity(int(Info))
	Infof("run %s", "abc")
	Debugf("hidden %d", 1)

	out := buf.String()
	if !strings.Contains(out, "[INFO]  run abc") {
		t.Fatalf("expected info line, got %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line leaked at info verbosity: %q", out)
	}
	if !strings.Contains(out, "logger_test.go") {
		t.Fatalf("expected caller file in output, got %q", out)
	}
}

func TestSetVerbosityClamps(t *testing.T) {
	defer SetVerbosity(int(Info))

	SetVerbosity(-5)
	if Verbosity() != Error {
		t.Fatalf("expected Error, got %v", Verbosity())
	}
	SetVerbosity(42)
	if Verbosity() != Trace {
		t.Fatalf("expected Trace, got %v", Verbosity())
	}
	if !Enabled(Debug) {
		t.Fatal("expected Debug enabled at Trace verbosity")
	}
}
