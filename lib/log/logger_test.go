package log

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func captureOutput(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	outBuf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}

	prevOut, prevErr := stdout, stderr
	prevVerbose := verbose
	stdout, stderr = io.Writer(outBuf), io.Writer(errBuf)

	t.Cleanup(func() {
		stdout, stderr = prevOut, prevErr
		verbose = prevVerbose
	})

	return outBuf, errBuf
}

func TestInfoGoesToStdout(t *testing.T) {
	outBuf, errBuf := captureOutput(t)

	Infof("feed %q accepted %d prefixes", "sample", 3)

	if !strings.Contains(outBuf.String(), `feed "sample" accepted 3 prefixes`) {
		t.Errorf("Unexpected stdout: %q", outBuf.String())
	}
	if !strings.Contains(outBuf.String(), "[INF]") {
		t.Errorf("Expected level prefix in %q", outBuf.String())
	}
	if errBuf.Len() != 0 {
		t.Errorf("Info must not write to stderr, got %q", errBuf.String())
	}
}

func TestWarningsAndErrorsGoToStderr(t *testing.T) {
	outBuf, errBuf := captureOutput(t)

	Warnf("rejected token %q", "2.3.1.5/33")
	Errorf("download failed")

	if outBuf.Len() != 0 {
		t.Errorf("Warn/error must not write to stdout, got %q", outBuf.String())
	}
	if !strings.Contains(errBuf.String(), "[WRN]") || !strings.Contains(errBuf.String(), "[ERR]") {
		t.Errorf("Expected level prefixes in %q", errBuf.String())
	}
}

func TestDebugRespectsVerbose(t *testing.T) {
	outBuf, _ := captureOutput(t)

	SetVerbose(false)
	Debugf("hidden")
	if outBuf.Len() != 0 {
		t.Errorf("Debug must be silent without verbose, got %q", outBuf.String())
	}

	SetVerbose(true)
	Debugf("shown")
	if !strings.Contains(outBuf.String(), "shown") {
		t.Errorf("Debug must print with verbose, got %q", outBuf.String())
	}
}
