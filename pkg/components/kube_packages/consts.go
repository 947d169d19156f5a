package kube_packages

const (
	kubernetesKeyringPath = "/etc/apt/keyrings/kubernetes-apt-keyring.gpg"
	kubernetesRepoFile    = "/etc/apt/sources.list.d/kubernetes.list"

	// %s is the minor release line, e.g. "v1.30".
	kubernetesKeyURLFormat  = "https://pkgs.k8s.io/core:/stable:/%s/deb/Release.key"
	kubernetesRepoURLFormat = "https://pkgs.k8s.io/core:/stable:/%s/deb/"
)

// kubePackages are installed at the exact pinned version and held.
var kubePackages = []string{"kubelet", "kubeadm", "kubectl"}
