package system_configuration

const (
	fstabPath         = "/etc/fstab"
	sysctlConfigFile  = "/etc/sysctl.d/99-kubernetes-cri.conf"
	kernelModulesFile = "/etc/modules-load.d/k8s.conf"
	procSwapsPath     = "/proc/swaps"
)

// kernelModules are required by the container runtime and pod networking.
var kernelModules = []string{"overlay", "br_netfilter"}

// conflictingPackages are runtimes and Kubernetes tooling from earlier or
// competing installs. Removal is best-effort: "not installed" counts as done.
var conflictingPackages = []string{
	"docker.io",
	"docker-doc",
	"docker-compose",
	"podman-docker",
	"containerd",
	"runc",
	"kubelet",
	"kubeadm",
	"kubectl",
	"kubernetes-cni",
}
