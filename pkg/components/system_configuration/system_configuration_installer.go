package system_configuration

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kubeprep/kubeprep/pkg/config"
	"github.com/kubeprep/kubeprep/pkg/utils"
)

// Installer prepares the host for Kubernetes: swap off, kernel modules and
// sysctls in place, conflicting packages removed.
type Installer struct {
	config *config.Config
	logger *logrus.Logger
	runner *utils.Runner
}

// NewInstaller creates a new system configuration Installer
func NewInstaller(cfg *config.Config, logger *logrus.Logger, runner *utils.Runner) *Installer {
	return &Installer{
		config: cfg,
		logger: logger,
		runner: runner,
	}
}

// GetName returns the step name
func (i *Installer) GetName() string {
	return "SystemConfiguration"
}

// Execute disables swap, loads the required kernel modules, applies sysctls,
// and removes competing runtime/Kubernetes packages.
func (i *Installer) Execute(ctx context.Context) error {
	i.logger.Info("Step 1: Disabling swap")
	if err := i.disableSwap(ctx); err != nil {
		return fmt.Errorf("failed to disable swap: %w", err)
	}
	i.logger.Info("Swap disabled successfully")

	i.logger.Info("Step 2: Configuring kernel modules and sysctls")
	if err := i.configureKernel(ctx); err != nil {
		return fmt.Errorf("failed to configure kernel: %w", err)
	}
	i.logger.Info("Kernel configured successfully")

	i.logger.Info("Step 3: Removing conflicting packages (best effort)")
	i.removeConflictingPackages(ctx)

	return nil
}

// disableSwap turns off all active swap and comments out swap entries in fstab
// so swap stays off after reboot. The kubelet refuses to run with swap on.
func (i *Installer) disableSwap(ctx context.Context) error {
	if err := i.runner.Run(ctx, "swapoff", "-a"); err != nil {
		return fmt.Errorf("swapoff failed: %w", err)
	}

	// Comment out swap lines instead of deleting them so the change is
	// reviewable and reversible by the operator.
	if err := i.runner.Run(ctx, "sed", "-ri", `/\sswap\s/s/^#?/#/`, fstabPath); err != nil {
		return fmt.Errorf("failed to comment swap entries in %s: %w", fstabPath, err)
	}

	return nil
}

func (i *Installer) configureKernel(ctx context.Context) error {
	for _, module := range kernelModules {
		if err := i.runner.Run(ctx, "modprobe", module); err != nil {
			return fmt.Errorf("failed to load kernel module %s: %w", module, err)
		}
	}

	modulesConf := strings.Join(kernelModules, "\n") + "\n"
	if err := os.WriteFile(kernelModulesFile, []byte(modulesConf), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", kernelModulesFile, err)
	}

	sysctlConf := "net.ipv4.ip_forward = 1\n" +
		"net.bridge.bridge-nf-call-iptables = 1\n" +
		"net.bridge.bridge-nf-call-ip6tables = 1\n"
	if err := os.WriteFile(sysctlConfigFile, []byte(sysctlConf), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", sysctlConfigFile, err)
	}

	if err := i.runner.Run(ctx, "sysctl", "--system"); err != nil {
		return fmt.Errorf("failed to apply sysctls: %w", err)
	}

	return nil
}

// removeConflictingPackages purges previously installed runtimes and
// Kubernetes tooling. Failures are intentionally swallowed: on a fresh host
// none of these packages exist and apt reports that as an error.
func (i *Installer) removeConflictingPackages(ctx context.Context) {
	for _, pkg := range conflictingPackages {
		// Silent keeps the expected "not installed" chatter out of the run log.
		if !i.runner.Silent(ctx, "apt-get", "remove", "-y", pkg) {
			i.logger.Debugf("Package %s not removed (likely not installed)", pkg)
			continue
		}
		i.logger.Infof("Removed conflicting package: %s", pkg)
	}
}

// Validate validates preconditions before execution
func (i *Installer) Validate(ctx context.Context) error {
	if !utils.FileExists(fstabPath) {
		return fmt.Errorf("%s not found", fstabPath)
	}
	return nil
}

// IsCompleted checks whether swap is already off and the kernel is configured
func (i *Installer) IsCompleted(ctx context.Context) bool {
	if !utils.FileExists(sysctlConfigFile) {
		return false
	}

	// /proc/swaps has only a header line when no swap device is active.
	data, err := os.ReadFile(procSwapsPath)
	if err != nil {
		return false
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	return len(lines) <= 1
}
