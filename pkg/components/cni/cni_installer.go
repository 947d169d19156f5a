package cni

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/kubeprep/kubeprep/pkg/config"
	"github.com/kubeprep/kubeprep/pkg/utils"
)

// Installer applies the CNI plugin manifest so pod-to-pod networking works.
// Without a CNI plugin the nodes stay NotReady forever.
type Installer struct {
	config *config.Config
	logger *logrus.Logger
	runner *utils.Runner
}

// NewInstaller creates a new CNI Installer
func NewInstaller(cfg *config.Config, logger *logrus.Logger, runner *utils.Runner) *Installer {
	return &Installer{
		config: cfg,
		logger: logger,
		runner: runner,
	}
}

// GetName returns the step name
func (i *Installer) GetName() string {
	return "CNIInstaller"
}

// Execute applies the CNI manifest by URL.
func (i *Installer) Execute(ctx context.Context) error {
	i.logger.Infof("Applying CNI manifest from %s", i.config.CalicoManifestURL)

	if err := i.runner.Run(ctx,
		"kubectl", "--kubeconfig", i.config.AdminKubeconfigPath,
		"apply", "-f", i.config.CalicoManifestURL,
	); err != nil {
		return fmt.Errorf("failed to apply CNI manifest: %w", err)
	}

	i.logger.Info("CNI manifest applied successfully")
	return nil
}

// Validate validates preconditions before execution
func (i *Installer) Validate(ctx context.Context) error {
	if !utils.FileExists(i.config.AdminKubeconfigPath) {
		return fmt.Errorf("admin kubeconfig %s not found", i.config.AdminKubeconfigPath)
	}
	return nil
}

// IsCompleted always returns false: applying the manifest is idempotent and
// reconciles any drifted objects
func (i *Installer) IsCompleted(ctx context.Context) bool {
	return false
}
