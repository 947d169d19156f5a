package kube_packages

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kubeprep/kubeprep/pkg/components/apt"
	"github.com/kubeprep/kubeprep/pkg/config"
	"github.com/kubeprep/kubeprep/pkg/utils"
)

// Installer handles installing the Kubernetes CLI, agent and bootstrap tools
type Installer struct {
	config *config.Config
	logger *logrus.Logger
	apt    *apt.Manager
}

// NewInstaller creates a new Kubernetes packages Installer
func NewInstaller(cfg *config.Config, logger *logrus.Logger, runner *utils.Runner) *Installer {
	return &Installer{
		config: cfg,
		logger: logger,
		apt:    apt.NewManager(runner),
	}
}

// GetName returns the step name
func (i *Installer) GetName() string {
	return "KubePackagesInstaller"
}

// Execute adds the Kubernetes package repository and installs pinned
// kubelet, kubeadm and kubectl packages.
func (i *Installer) Execute(ctx context.Context) error {
	releaseLine, err := minorReleaseLine(i.config.KubernetesVersion)
	if err != nil {
		return err
	}

	i.logger.Infof("Step 1: Adding Kubernetes package repository for %s", releaseLine)
	keyURL := fmt.Sprintf(kubernetesKeyURLFormat, releaseLine)
	if err := i.apt.AddSigningKey(ctx, keyURL, kubernetesKeyringPath); err != nil {
		return fmt.Errorf("failed to add Kubernetes signing key: %w", err)
	}

	sourceLine := fmt.Sprintf(
		"deb [signed-by=%s] %s /",
		kubernetesKeyringPath,
		fmt.Sprintf(kubernetesRepoURLFormat, releaseLine),
	)
	if err := i.apt.AddRepository(ctx, sourceLine, kubernetesRepoFile); err != nil {
		return fmt.Errorf("failed to add Kubernetes repository: %w", err)
	}
	i.logger.Info("Kubernetes repository added successfully")

	i.logger.Infof("Step 2: Installing Kubernetes packages at version %s", i.config.KubernetesPkgVersion)
	pinned := make(map[string]string, len(kubePackages))
	for _, pkg := range kubePackages {
		pinned[pkg] = i.config.KubernetesPkgVersion
	}
	if err := i.apt.InstallPinned(ctx, pinned); err != nil {
		return fmt.Errorf("failed to install Kubernetes packages: %w", err)
	}
	i.logger.Info("Kubernetes packages installed successfully")

	i.logger.Info("Step 3: Holding Kubernetes packages at the pinned version")
	if err := i.apt.Hold(ctx, kubePackages...); err != nil {
		return fmt.Errorf("failed to hold Kubernetes packages: %w", err)
	}

	return nil
}

// Validate validates preconditions before execution
func (i *Installer) Validate(ctx context.Context) error {
	if i.config.KubernetesPkgVersion == "" {
		return fmt.Errorf("kubernetes package version must be pinned")
	}
	if _, err := minorReleaseLine(i.config.KubernetesVersion); err != nil {
		return err
	}
	return nil
}

// IsCompleted checks whether all Kubernetes packages are already installed at
// the pinned version
func (i *Installer) IsCompleted(ctx context.Context) bool {
	for _, pkg := range kubePackages {
		if i.apt.InstalledVersion(ctx, pkg) != i.config.KubernetesPkgVersion {
			return false
		}
	}
	return true
}

// minorReleaseLine derives the pkgs.k8s.io repository line ("v1.30") from a
// full version string ("1.30.0").
func minorReleaseLine(version string) (string, error) {
	parts := strings.SplitN(strings.TrimPrefix(version, "v"), ".", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("cannot derive release line from version %q", version)
	}
	return fmt.Sprintf("v%s.%s", parts[0], parts[1]), nil
}
