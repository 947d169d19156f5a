package status

import (
	"time"

	"github.com/kubeprep/kubeprep/pkg/bootstrapper"
	"github.com/kubeprep/kubeprep/pkg/config"
)

// DefaultRecordPath is where the provisioning record is persisted.
const DefaultRecordPath = "/var/lib/kubeprep/run-record.json"

// RunRecord is a snapshot of the most recent provisioning run. It is
// informational: operators and follow-up tooling can inspect what was
// provisioned and when without rerunning anything.
type RunRecord struct {
	Role              string       `json:"role"`
	Success           bool         `json:"success"`
	KubernetesVersion string       `json:"kubernetesVersion"`
	ContainerdVersion string       `json:"containerdVersion"`
	Steps             []StepRecord `json:"steps,omitempty"`
	Warnings          []string     `json:"warnings,omitempty"`
	Error             string       `json:"error,omitempty"`
	CompletedAt       time.Time    `json:"completedAt"`
	ToolVersion       string       `json:"toolVersion"`
}

// StepRecord captures the outcome of a single provisioning step.
type StepRecord struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

// NewRunRecord builds a record from an execution result. result may describe
// either a successful or a failed run; execErr carries the terminal error for
// failed runs.
func NewRunRecord(cfg *config.Config, result *bootstrapper.ExecutionResult, execErr error, toolVersion string, now time.Time) *RunRecord {
	rec := &RunRecord{
		Role:              string(cfg.Role),
		Success:           execErr == nil,
		KubernetesVersion: cfg.KubernetesVersion,
		ContainerdVersion: cfg.ContainerdVersion,
		CompletedAt:       now,
		ToolVersion:       toolVersion,
	}
	if execErr != nil {
		rec.Error = execErr.Error()
	}
	if result == nil {
		return rec
	}
	for _, step := range result.Steps {
		sr := StepRecord{
			Name:     step.Name,
			Status:   string(step.Status),
			Duration: step.Duration.Round(time.Millisecond).String(),
		}
		if step.Err != nil {
			sr.Error = step.Err.Error()
		}
		rec.Steps = append(rec.Steps, sr)
	}
	for _, soft := range result.SoftFailures {
		rec.Warnings = append(rec.Warnings, soft.Error())
	}
	return rec
}
