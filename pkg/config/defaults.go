package config

import "time"

const (
	DefaultUbuntuVersion = "22.04"

	DefaultKubernetesVersion = "1.30.0"
	// Debian package revision for the pinned Kubernetes version.
	DefaultKubernetesPkgVersion = "1.30.0-1.1"
	DefaultContainerdVersion    = "1.7.20-1"

	DefaultPodNetworkCIDR    = "192.168.0.0/16"
	DefaultAPIServerBindPort = 6443

	DefaultCalicoManifestURL        = "https://raw.githubusercontent.com/projectcalico/calico/v3.28.0/manifests/calico.yaml"
	DefaultMetricsServerManifestURL = "https://github.com/kubernetes-sigs/metrics-server/releases/latest/download/components.yaml"

	DefaultAdminKubeconfigPath = "/etc/kubernetes/admin.conf"
	DefaultKubeadmConfigPath   = "kubeadm-config.yaml"

	DefaultNodeReadyTimeout    = 180 * time.Second
	DefaultSmokeTestTimeout    = 180 * time.Second
	DefaultPodsSettleTimeout   = 300 * time.Second
	DefaultPollInterval        = 10 * time.Second
	DefaultTaintSettleDuration = 10 * time.Second
)
