package config

import (
	"fmt"
	"time"
)

// Role selects which provisioning path the run takes.
type Role string

const (
	// RoleWorker prepares the host to join an existing cluster.
	RoleWorker Role = "worker"
	// RoleControlPlane initializes a new control plane on the host.
	RoleControlPlane Role = "control-plane"
	// RoleSingleNode initializes a control plane and removes the scheduling
	// restrictions so workloads run on the same machine.
	RoleSingleNode Role = "single-node"
)

// Config holds the resolved configuration for a single provisioning run.
// It is constructed once at startup and never mutated afterwards.
type Config struct {
	Role    Role
	Verbose bool

	// Host compatibility
	UbuntuVersion string

	// Pinned component versions
	KubernetesVersion    string
	KubernetesPkgVersion string
	ContainerdVersion    string

	// Cluster bootstrap parameters
	PodNetworkCIDR    string
	APIServerBindPort int

	// Manifest sources
	CalicoManifestURL        string
	MetricsServerManifestURL string

	// Paths
	AdminKubeconfigPath string
	KubeadmConfigPath   string

	// Wait timeouts
	NodeReadyTimeout    time.Duration
	SmokeTestTimeout    time.Duration
	PodsSettleTimeout   time.Duration
	PollInterval        time.Duration
	TaintSettleDuration time.Duration
}

// New builds a Config for the given role with all pinned defaults applied.
func New(role Role, verbose bool) *Config {
	return &Config{
		Role:    role,
		Verbose: verbose,

		UbuntuVersion: DefaultUbuntuVersion,

		KubernetesVersion:    DefaultKubernetesVersion,
		KubernetesPkgVersion: DefaultKubernetesPkgVersion,
		ContainerdVersion:    DefaultContainerdVersion,

		PodNetworkCIDR:    DefaultPodNetworkCIDR,
		APIServerBindPort: DefaultAPIServerBindPort,

		CalicoManifestURL:        DefaultCalicoManifestURL,
		MetricsServerManifestURL: DefaultMetricsServerManifestURL,

		AdminKubeconfigPath: DefaultAdminKubeconfigPath,
		KubeadmConfigPath:   DefaultKubeadmConfigPath,

		NodeReadyTimeout:    DefaultNodeReadyTimeout,
		SmokeTestTimeout:    DefaultSmokeTestTimeout,
		PodsSettleTimeout:   DefaultPodsSettleTimeout,
		PollInterval:        DefaultPollInterval,
		TaintSettleDuration: DefaultTaintSettleDuration,
	}
}

// ResolveRole maps the CLI role flags to exactly one role. Single-node wins
// over control-plane when both are requested, since its path is a strict
// superset of the control-plane path.
func ResolveRole(controlPlane, singleNode bool) Role {
	switch {
	case singleNode:
		return RoleSingleNode
	case controlPlane:
		return RoleControlPlane
	default:
		return RoleWorker
	}
}

// IsControlPlane reports whether the run initializes a control plane.
func (cfg *Config) IsControlPlane() bool {
	return cfg.Role == RoleControlPlane || cfg.Role == RoleSingleNode
}

// Validate checks that the config is internally consistent.
func (cfg *Config) Validate() error {
	switch cfg.Role {
	case RoleWorker, RoleControlPlane, RoleSingleNode:
	default:
		return fmt.Errorf("unknown role %q", cfg.Role)
	}

	if cfg.KubernetesVersion == "" {
		return fmt.Errorf("kubernetes version must not be empty")
	}
	if cfg.APIServerBindPort <= 0 || cfg.APIServerBindPort > 65535 {
		return fmt.Errorf("invalid API server port %d", cfg.APIServerBindPort)
	}
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}

	return nil
}

// DeepCopy returns a copy of the config. Config has no mutable sub-objects
// today, but steps receive pointers and this keeps snapshots cheap to take.
func (cfg *Config) DeepCopy() *Config {
	if cfg == nil {
		return nil
	}

	out := *cfg
	return &out
}
