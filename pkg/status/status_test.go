package status

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kubeprep/kubeprep/pkg/bootstrapper"
	"github.com/kubeprep/kubeprep/pkg/config"
)

func TestWriteRecordToFileAndLoadRecordFromFile_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "run-record.json")

	in := &RunRecord{
		Role:              string(config.RoleSingleNode),
		Success:           true,
		KubernetesVersion: "1.30.0",
		ContainerdVersion: "1.7.20-1",
		Steps: []StepRecord{
			{Name: "PreflightCheck", Status: "completed", Duration: "12ms"},
			{Name: "ContainerdInstaller", Status: "skipped", Duration: "0s"},
		},
		Warnings:    []string{"some pods did not settle"},
		CompletedAt: time.Now().UTC().Truncate(time.Second),
		ToolVersion: "dev",
	}

	if err := WriteRecordToFile(path, in); err != nil {
		t.Fatalf("WriteRecordToFile() err=%v", err)
	}

	out, err := LoadRecordFromFile(path)
	if err != nil {
		t.Fatalf("LoadRecordFromFile() err=%v", err)
	}
	if out == nil {
		t.Fatalf("LoadRecordFromFile() out=nil")
	}
	if out.Role != in.Role || !out.Success {
		t.Fatalf("roundtrip mismatch: got role=%q success=%v", out.Role, out.Success)
	}
	if len(out.Steps) != 2 || out.Steps[1].Status != "skipped" {
		t.Fatalf("steps mismatch: got %+v", out.Steps)
	}
	if len(out.Warnings) != 1 {
		t.Fatalf("warnings mismatch: got %+v", out.Warnings)
	}
}

func TestWriteRecordToFile_ValidationErrors(t *testing.T) {
	t.Parallel()

	if err := WriteRecordToFile("", &RunRecord{}); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if err := WriteRecordToFile("/tmp/does-not-matter.json", nil); err == nil {
		t.Fatalf("expected error for nil record")
	}
}

func TestLoadRecordFromFile_Errors(t *testing.T) {
	t.Parallel()

	if _, err := LoadRecordFromFile(""); err == nil {
		t.Fatalf("expected error for empty path")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "run-record.json")
	if err := os.WriteFile(path, []byte("not-json"), 0o600); err != nil {
		t.Fatalf("WriteFile() err=%v", err)
	}
	if _, err := LoadRecordFromFile(path); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}

func TestNewRunRecord(t *testing.T) {
	t.Parallel()

	cfg := config.New(config.RoleControlPlane, false)
	result := &bootstrapper.ExecutionResult{
		Operation: "bootstrap",
		Steps: []bootstrapper.StepResult{
			{Name: "PreflightCheck", Status: bootstrapper.StepCompleted, Duration: 10 * time.Millisecond},
			{Name: "ContainerdInstaller", Status: bootstrapper.StepFailed, Duration: time.Second, Err: errors.New("boom")},
		},
		SoftFailures: []error{errors.New("pods still pending")},
	}
	now := time.Now().UTC()

	rec := NewRunRecord(cfg, result, errors.New("step ContainerdInstaller failed"), "1.2.3", now)

	if rec.Success {
		t.Fatalf("expected Success=false for failed run")
	}
	if rec.Role != string(config.RoleControlPlane) {
		t.Fatalf("Role = %q", rec.Role)
	}
	if rec.KubernetesVersion != cfg.KubernetesVersion {
		t.Fatalf("KubernetesVersion = %q", rec.KubernetesVersion)
	}
	if len(rec.Steps) != 2 || rec.Steps[1].Error != "boom" {
		t.Fatalf("steps = %+v", rec.Steps)
	}
	if len(rec.Warnings) != 1 {
		t.Fatalf("warnings = %+v", rec.Warnings)
	}
	if rec.Error == "" || !rec.CompletedAt.Equal(now) {
		t.Fatalf("metadata mismatch: error=%q completedAt=%v", rec.Error, rec.CompletedAt)
	}

	okRec := NewRunRecord(cfg, &bootstrapper.ExecutionResult{}, nil, "dev", now)
	if !okRec.Success || okRec.Error != "" {
		t.Fatalf("expected clean success record, got %+v", okRec)
	}
}

func TestRemoveRecordBestEffort_RemovesFile(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	p := filepath.Join(tmpDir, "run-record.json")
	if err := os.WriteFile(p, []byte(`{"role":"worker"}`), 0o600); err != nil {
		t.Fatalf("write temp record: %v", err)
	}

	logger := logrus.New()
	RemoveRecordBestEffort(logger, p)

	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err=%v", err)
	}
}

func TestRemoveRecordBestEffort_MissingFileNoError(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	p := filepath.Join(tmpDir, "run-record.json")

	logger := logrus.New()
	RemoveRecordBestEffort(logger, p)

	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Fatalf("expected file still missing, stat err=%v", err)
	}
}
