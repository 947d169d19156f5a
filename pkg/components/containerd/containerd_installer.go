package containerd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kubeprep/kubeprep/pkg/components/apt"
	"github.com/kubeprep/kubeprep/pkg/config"
	"github.com/kubeprep/kubeprep/pkg/utils"
)

// ubuntuCodenames maps the supported release versions to their apt codenames.
var ubuntuCodenames = map[string]string{
	"20.04": "focal",
	"22.04": "jammy",
	"24.04": "noble",
}

// Installer handles container runtime installation operations
type Installer struct {
	config *config.Config
	logger *logrus.Logger
	runner *utils.Runner
	apt    *apt.Manager
}

// NewInstaller creates a new containerd Installer
func NewInstaller(cfg *config.Config, logger *logrus.Logger, runner *utils.Runner) *Installer {
	return &Installer{
		config: cfg,
		logger: logger,
		runner: runner,
		apt:    apt.NewManager(runner),
	}
}

// GetName returns the step name
func (i *Installer) GetName() string {
	return "ContainerdInstaller"
}

// Execute installs the pinned containerd runtime from the Docker repository
// and writes its configuration.
func (i *Installer) Execute(ctx context.Context) error {
	i.logger.Info("Step 1: Adding container runtime package repository")
	if err := i.addRepository(ctx); err != nil {
		return fmt.Errorf("failed to add containerd repository: %w", err)
	}
	i.logger.Info("Container runtime repository added successfully")

	i.logger.Infof("Step 2: Installing %s version %s", containerdPackage, i.config.ContainerdVersion)
	if err := i.apt.InstallPinned(ctx, map[string]string{
		containerdPackage: i.config.ContainerdVersion,
	}); err != nil {
		return fmt.Errorf("failed to install containerd: %w", err)
	}
	i.logger.Info("containerd installed successfully")

	i.logger.Info("Step 3: Configuring containerd")
	if err := i.configure(ctx); err != nil {
		return fmt.Errorf("containerd configuration failed: %w", err)
	}
	i.logger.Info("containerd configured successfully")

	return nil
}

func (i *Installer) addRepository(ctx context.Context) error {
	if err := i.apt.AddSigningKey(ctx, dockerKeyURL, dockerKeyringPath); err != nil {
		return err
	}

	codename, ok := ubuntuCodenames[i.config.UbuntuVersion]
	if !ok {
		return fmt.Errorf("no apt codename known for Ubuntu %s", i.config.UbuntuVersion)
	}

	arch, err := i.debArchitecture(ctx)
	if err != nil {
		return err
	}

	sourceLine := fmt.Sprintf(
		"deb [arch=%s signed-by=%s] https://download.docker.com/linux/ubuntu %s stable",
		arch, dockerKeyringPath, codename,
	)
	return i.apt.AddRepository(ctx, sourceLine, dockerRepoFile)
}

func (i *Installer) debArchitecture(ctx context.Context) (string, error) {
	output, err := i.runner.Output(ctx, "dpkg", "--print-architecture")
	if err != nil {
		return "", fmt.Errorf("failed to detect dpkg architecture: %w", err)
	}
	return strings.TrimSpace(output), nil
}

// configure regenerates the containerd config with the systemd cgroup driver,
// which kubeadm requires on systemd hosts.
func (i *Installer) configure(ctx context.Context) error {
	if err := os.MkdirAll(containerdConfigDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", containerdConfigDir, err)
	}

	defaultConfig, err := i.runner.Output(ctx, containerdBinary, "config", "default")
	if err != nil {
		return fmt.Errorf("failed to generate default containerd config: %w", err)
	}

	rendered := strings.ReplaceAll(defaultConfig, "SystemdCgroup = false", "SystemdCgroup = true")
	if err := os.WriteFile(containerdConfigFile, []byte(rendered), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", containerdConfigFile, err)
	}

	return nil
}

// Validate validates preconditions before execution
func (i *Installer) Validate(ctx context.Context) error {
	if i.config.ContainerdVersion == "" {
		return fmt.Errorf("containerd version must be pinned")
	}
	return nil
}

// IsCompleted checks if the pinned containerd version is installed and configured
func (i *Installer) IsCompleted(ctx context.Context) bool {
	installed := i.apt.InstalledVersion(ctx, containerdPackage)
	if installed != i.config.ContainerdVersion {
		return false
	}
	return utils.FileExists(containerdConfigFile)
}
