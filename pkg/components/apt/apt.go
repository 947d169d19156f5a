package apt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kubeprep/kubeprep/pkg/utils"
)

// ErrPackageNotFound indicates that a pinned package version is not available
// in the configured repositories. Version pinning is exact-match, so this is a
// fatal condition rather than a reason to fall back to another version.
var ErrPackageNotFound = errors.New("pinned package version not found")

// notFoundPatterns are apt error fragments that mean the requested package or
// version does not exist upstream.
var notFoundPatterns = []string{
	"Unable to locate package",
	"has no installation candidate",
	"was not found",
	"E: Version",
}

// Manager wraps the system package manager for the provisioning steps.
type Manager struct {
	runner *utils.Runner
}

// NewManager creates an apt Manager that captures output via runner.
func NewManager(runner *utils.Runner) *Manager {
	return &Manager{runner: runner}
}

// AddSigningKey downloads a repository signing key and dearmors it into path.
func (m *Manager) AddSigningKey(ctx context.Context, keyURL, path string) error {
	if err := m.runner.Run(ctx, "install", "-m", "0755", "-d", "/etc/apt/keyrings"); err != nil {
		return fmt.Errorf("failed to create keyrings directory: %w", err)
	}

	script := fmt.Sprintf("curl -fsSL %s | gpg --batch --yes --dearmor -o %s", keyURL, path)
	if err := m.runner.RunShell(ctx, script); err != nil {
		return fmt.Errorf("failed to install signing key from %s: %w", keyURL, err)
	}

	return nil
}

// AddRepository writes an apt source entry and refreshes the package index.
func (m *Manager) AddRepository(ctx context.Context, sourceLine, sourceFile string) error {
	script := fmt.Sprintf("echo '%s' > %s", sourceLine, sourceFile)
	if err := m.runner.RunShell(ctx, script); err != nil {
		return fmt.Errorf("failed to write apt source %s: %w", sourceFile, err)
	}

	return m.Update(ctx)
}

// Update refreshes the package index.
func (m *Manager) Update(ctx context.Context) error {
	if err := m.runner.Run(ctx, "apt-get", "update"); err != nil {
		return fmt.Errorf("apt-get update failed: %w", err)
	}
	return nil
}

// InstallPinned installs an exact package version. The install fails with
// ErrPackageNotFound when the pinned version string is unavailable upstream.
func (m *Manager) InstallPinned(ctx context.Context, packages map[string]string) error {
	args := []string{"install", "-y", "--allow-downgrades"}
	for name, version := range packages {
		if version == "" {
			args = append(args, name)
			continue
		}
		args = append(args, fmt.Sprintf("%s=%s", name, version))
	}

	output, err := m.runner.Output(ctx, "apt-get", args...)
	if err != nil {
		if isNotFoundOutput(output) {
			return fmt.Errorf("%w: %v", ErrPackageNotFound, err)
		}
		return fmt.Errorf("apt-get install failed: %w", err)
	}

	return nil
}

// Hold marks packages as held so unattended upgrades cannot move them off the
// pinned versions.
func (m *Manager) Hold(ctx context.Context, packages ...string) error {
	args := append([]string{"hold"}, packages...)
	if err := m.runner.Run(ctx, "apt-mark", args...); err != nil {
		return fmt.Errorf("apt-mark hold failed: %w", err)
	}
	return nil
}

// InstalledVersion returns the installed version of a package, or empty when
// the package is not installed.
func (m *Manager) InstalledVersion(ctx context.Context, name string) string {
	output, err := m.runner.Output(ctx, "dpkg-query", "-W", "-f=${Version}", name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(output)
}

func isNotFoundOutput(output string) bool {
	for _, pattern := range notFoundPatterns {
		if strings.Contains(output, pattern) {
			return true
		}
	}
	return false
}
