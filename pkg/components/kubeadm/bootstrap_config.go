package kubeadm

import (
	"fmt"

	"github.com/google/renameio/v2"
	"sigs.k8s.io/yaml"
)

// initConfiguration is the minimal kubeadm InitConfiguration this provisioner
// renders. Only the advertise address needs to be explicit; everything else
// follows kubeadm defaults.
type initConfiguration struct {
	APIVersion       string      `json:"apiVersion"`
	Kind             string      `json:"kind"`
	LocalAPIEndpoint apiEndpoint `json:"localAPIEndpoint"`
}

type apiEndpoint struct {
	AdvertiseAddress string `json:"advertiseAddress"`
	BindPort         int    `json:"bindPort"`
}

// clusterConfiguration pins the cluster version, the pod subnet for the CNI
// plugin, and the control-plane endpoint.
type clusterConfiguration struct {
	APIVersion           string     `json:"apiVersion"`
	Kind                 string     `json:"kind"`
	KubernetesVersion    string     `json:"kubernetesVersion"`
	ControlPlaneEndpoint string     `json:"controlPlaneEndpoint"`
	Networking           networking `json:"networking"`
}

type networking struct {
	PodSubnet string `json:"podSubnet"`
}

const kubeadmAPIVersion = "kubeadm.k8s.io/v1beta3"

// renderBootstrapConfig writes the two-document kubeadm configuration to path
// and returns the rendered content.
func renderBootstrapConfig(path, advertiseIP, kubernetesVersion, podSubnet string, bindPort int) ([]byte, error) {
	initCfg := initConfiguration{
		APIVersion: kubeadmAPIVersion,
		Kind:       "InitConfiguration",
		LocalAPIEndpoint: apiEndpoint{
			AdvertiseAddress: advertiseIP,
			BindPort:         bindPort,
		},
	}

	clusterCfg := clusterConfiguration{
		APIVersion:           kubeadmAPIVersion,
		Kind:                 "ClusterConfiguration",
		KubernetesVersion:    "v" + kubernetesVersion,
		ControlPlaneEndpoint: fmt.Sprintf("%s:%d", advertiseIP, bindPort),
		Networking:           networking{PodSubnet: podSubnet},
	}

	initDoc, err := yaml.Marshal(initCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal InitConfiguration: %w", err)
	}
	clusterDoc, err := yaml.Marshal(clusterCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ClusterConfiguration: %w", err)
	}

	content := append(initDoc, []byte("---\n")...)
	content = append(content, clusterDoc...)

	if err := renameio.WriteFile(path, content, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write kubeadm config %s: %w", path, err)
	}

	return content, nil
}
