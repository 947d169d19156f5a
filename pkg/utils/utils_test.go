package utils

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunnerCapturesOutput(t *testing.T) {
	t.Parallel()

	var log bytes.Buffer
	r := NewRunner(&log)

	if err := r.Run(context.Background(), "echo", "hello capture"); err != nil {
		t.Fatalf("Run() err=%v", err)
	}

	got := log.String()
	if !strings.Contains(got, "+ echo hello capture") {
		t.Fatalf("command line not logged, got: %q", got)
	}
	if !strings.Contains(got, "hello capture") {
		t.Fatalf("command output not captured, got: %q", got)
	}
}

func TestRunnerOutputReturnsCombined(t *testing.T) {
	t.Parallel()

	var log bytes.Buffer
	r := NewRunner(&log)

	out, err := r.Output(context.Background(), "echo", "combined")
	if err != nil {
		t.Fatalf("Output() err=%v", err)
	}
	if strings.TrimSpace(out) != "combined" {
		t.Fatalf("Output()=%q, want %q", out, "combined")
	}
	if !strings.Contains(log.String(), "combined") {
		t.Fatalf("output not appended to log, got: %q", log.String())
	}
}

func TestRunnerSilent(t *testing.T) {
	t.Parallel()

	var log bytes.Buffer
	r := NewRunner(&log)

	if !r.Silent(context.Background(), "true") {
		t.Fatal("Silent(true) should succeed")
	}
	if r.Silent(context.Background(), "false") {
		t.Fatal("Silent(false) should fail")
	}
}

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if FileExists(filepath.Join(dir, "missing")) {
		t.Fatal("FileExists() true for missing file")
	}
	if !DirectoryExists(dir) {
		t.Fatal("DirectoryExists() false for temp dir")
	}
	if DirectoryExists(filepath.Join(dir, "missing")) {
		t.Fatal("DirectoryExists() true for missing dir")
	}
}
