package cluster_credentials

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/sirupsen/logrus"

	"github.com/kubeprep/kubeprep/pkg/config"
	"github.com/kubeprep/kubeprep/pkg/utils"
)

// Installer copies the generated admin credentials into the invoking user's
// kubeconfig location so kubectl works without KUBECONFIG gymnastics.
//
// The whole step is best-effort: a missing target user must not abort the run,
// since the cluster itself is already functional at this point.
type Installer struct {
	config *config.Config
	logger *logrus.Logger
	runner *utils.Runner

	// lookupUser allows overriding user resolution in unit tests.
	lookupUser func() (*user.User, error)
}

// NewInstaller creates a new cluster credentials Installer
func NewInstaller(cfg *config.Config, logger *logrus.Logger, runner *utils.Runner) *Installer {
	return &Installer{
		config:     cfg,
		logger:     logger,
		runner:     runner,
		lookupUser: invokingUser,
	}
}

// GetName returns the step name
func (i *Installer) GetName() string {
	return "ClusterCredentials"
}

// Execute copies admin.conf into the invoking user's ~/.kube/config and fixes
// ownership. Failures are logged and swallowed.
func (i *Installer) Execute(ctx context.Context) error {
	target, err := i.lookupUser()
	if err != nil {
		i.logger.Warnf("Skipping kubeconfig setup, cannot resolve invoking user: %v", err)
		return nil
	}
	if target.HomeDir == "" {
		i.logger.Warnf("Skipping kubeconfig setup, user %s has no home directory", target.Username)
		return nil
	}

	if err := i.installKubeconfig(ctx, target); err != nil {
		i.logger.Warnf("Failed to install kubeconfig for %s: %v", target.Username, err)
		return nil
	}

	i.logger.Infof("Admin kubeconfig installed for user %s", target.Username)
	return nil
}

func (i *Installer) installKubeconfig(ctx context.Context, target *user.User) error {
	data, err := os.ReadFile(i.config.AdminKubeconfigPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", i.config.AdminKubeconfigPath, err)
	}

	kubeDir := filepath.Join(target.HomeDir, ".kube")
	if err := os.MkdirAll(kubeDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", kubeDir, err)
	}

	kubeconfigPath := filepath.Join(kubeDir, "config")
	if err := renameio.WriteFile(kubeconfigPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", kubeconfigPath, err)
	}

	owner := fmt.Sprintf("%s:%s", target.Uid, target.Gid)
	if err := i.runner.Run(ctx, "chown", "-R", owner, kubeDir); err != nil {
		return fmt.Errorf("failed to chown %s: %w", kubeDir, err)
	}

	return nil
}

// IsCompleted always returns false: re-copying the credentials is cheap and
// picks up a regenerated admin.conf
func (i *Installer) IsCompleted(ctx context.Context) bool {
	return false
}

// invokingUser resolves the user who ran the provisioner: the sudo caller when
// present, otherwise the current user.
func invokingUser() (*user.User, error) {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" && sudoUser != "root" {
		return user.Lookup(sudoUser)
	}
	return user.Current()
}
