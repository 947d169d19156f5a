package metrics_server

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kubeprep/kubeprep/pkg/config"
	"github.com/kubeprep/kubeprep/pkg/utils"
)

const (
	deploymentNamespace = "kube-system"
	deploymentName      = "metrics-server"
)

// DeploymentWaiter blocks until a deployment reports all replicas available.
type DeploymentWaiter interface {
	WaitForDeploymentReady(ctx context.Context, namespace, name string, timeout time.Duration) error
}

// Installer applies the metrics-server manifest and waits for its deployment
// to become available.
type Installer struct {
	config *config.Config
	logger *logrus.Logger
	runner *utils.Runner
	waiter DeploymentWaiter
}

// NewInstaller creates a new metrics-server Installer
func NewInstaller(cfg *config.Config, logger *logrus.Logger, runner *utils.Runner, waiter DeploymentWaiter) *Installer {
	return &Installer{
		config: cfg,
		logger: logger,
		runner: runner,
		waiter: waiter,
	}
}

// GetName returns the step name
func (i *Installer) GetName() string {
	return "MetricsServerInstaller"
}

// Execute applies the metrics-server manifest and waits for the rollout.
func (i *Installer) Execute(ctx context.Context) error {
	i.logger.Infof("Applying metrics-server manifest from %s", i.config.MetricsServerManifestURL)

	if err := i.runner.Run(ctx,
		"kubectl", "--kubeconfig", i.config.AdminKubeconfigPath,
		"apply", "-f", i.config.MetricsServerManifestURL,
	); err != nil {
		return fmt.Errorf("failed to apply metrics-server manifest: %w", err)
	}

	i.logger.Info("Waiting for the metrics-server deployment to become available")
	if err := i.waiter.WaitForDeploymentReady(ctx, deploymentNamespace, deploymentName, i.config.NodeReadyTimeout); err != nil {
		return fmt.Errorf("metrics-server did not become available: %w", err)
	}

	i.logger.Info("metrics-server is available")
	return nil
}

// IsCompleted always returns false: applying the manifest reconciles drift
func (i *Installer) IsCompleted(ctx context.Context) bool {
	return false
}
