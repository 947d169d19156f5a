package containerd

const (
	dockerKeyringPath = "/etc/apt/keyrings/docker.gpg"
	dockerRepoFile    = "/etc/apt/sources.list.d/docker.list"
	dockerKeyURL      = "https://download.docker.com/linux/ubuntu/gpg"

	containerdConfigDir  = "/etc/containerd"
	containerdConfigFile = "/etc/containerd/config.toml"
	containerdBinary     = "containerd"

	containerdPackage = "containerd.io"
)
