package kubeadm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kubeprep/kubeprep/pkg/config"
	"github.com/kubeprep/kubeprep/pkg/utils"
)

const kubeadmBinary = "kubeadm"

// Initializer runs kubeadm init against a rendered bootstrap configuration.
type Initializer struct {
	config *config.Config
	logger *logrus.Logger
	runner *utils.Runner

	// detectIP allows overriding primary IP detection in unit tests.
	detectIP func() (string, error)
}

// NewInitializer creates a control-plane Initializer
func NewInitializer(cfg *config.Config, logger *logrus.Logger, runner *utils.Runner) *Initializer {
	return &Initializer{
		config:   cfg,
		logger:   logger,
		runner:   runner,
		detectIP: DetectPrimaryIPv4,
	}
}

// GetName returns the step name
func (i *Initializer) GetName() string {
	return "ControlPlaneInit"
}

// Execute detects the node's primary IP, renders the bootstrap configuration
// and invokes kubeadm init with it. IP detection failures abort before any
// kubeadm invocation.
func (i *Initializer) Execute(ctx context.Context) error {
	i.logger.Info("Step 1: Detecting primary node IP")
	nodeIP, err := i.detectIP()
	if err != nil {
		return err
	}
	i.logger.Infof("Detected primary node IP: %s", nodeIP)

	i.logger.Infof("Step 2: Rendering bootstrap configuration to %s", i.config.KubeadmConfigPath)
	content, err := renderBootstrapConfig(
		i.config.KubeadmConfigPath,
		nodeIP,
		i.config.KubernetesVersion,
		i.config.PodNetworkCIDR,
		i.config.APIServerBindPort,
	)
	if err != nil {
		return err
	}
	i.logger.Debugf("Bootstrap configuration:\n%s", content)

	i.logger.Info("Step 3: Initializing control plane")
	if err := i.runner.Run(ctx, kubeadmBinary, "init", "--config", i.config.KubeadmConfigPath); err != nil {
		return fmt.Errorf("kubeadm init failed: %w", err)
	}
	i.logger.Info("Control plane initialized successfully")

	return nil
}

// Validate ensures the bootstrap CLI is present before execution
func (i *Initializer) Validate(ctx context.Context) error {
	if !utils.BinaryExists(kubeadmBinary) {
		return fmt.Errorf("%s binary not found in PATH", kubeadmBinary)
	}
	return nil
}

// IsCompleted checks whether a control plane already runs on this host
func (i *Initializer) IsCompleted(ctx context.Context) bool {
	return utils.FileExists("/etc/kubernetes/manifests/kube-apiserver.yaml")
}

// JoinCommand generates the command a worker node runs to register with this
// control plane. The token never expires so the command stays valid.
func JoinCommand(ctx context.Context, runner *utils.Runner) (string, error) {
	output, err := runner.Output(ctx,
		kubeadmBinary, "token", "create", "--print-join-command", "--ttl", "0")
	if err != nil {
		if detail := strings.TrimSpace(output); detail != "" {
			return "", fmt.Errorf("failed to create join token: %w: %s", err, detail)
		}
		return "", fmt.Errorf("failed to create join token: %w", err)
	}

	joinCmd := strings.TrimSpace(output)
	if joinCmd == "" {
		return "", fmt.Errorf("kubeadm produced an empty join command")
	}

	return joinCmd, nil
}
