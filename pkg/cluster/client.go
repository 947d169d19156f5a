package cluster

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/kubeprep/kubeprep/pkg/config"
	"github.com/kubeprep/kubeprep/pkg/utils"
)

// Client wraps the cluster API operations the provisioner performs after the
// control plane is up: readiness waits, version validation, taint handling and
// the smoke test.
type Client struct {
	config    *config.Config
	logger    *logrus.Logger
	clientset kubernetes.Interface

	// clientVersionFn reports the installed kubectl client version. It shells
	// out by default and is overridden in unit tests.
	clientVersionFn func(ctx context.Context) (string, error)
}

// NewClient builds a cluster Client from the admin kubeconfig.
func NewClient(cfg *config.Config, logger *logrus.Logger, runner *utils.Runner) (*Client, error) {
	restConfig, err := clientcmd.BuildConfigFromFlags("", cfg.AdminKubeconfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig %s: %w", cfg.AdminKubeconfigPath, err)
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
	}

	c := NewClientWithClientset(cfg, logger, clientset)
	c.clientVersionFn = func(ctx context.Context) (string, error) {
		return kubectlClientGitVersion(ctx, runner)
	}
	return c, nil
}

// NewClientWithClientset creates a Client around an existing clientset. Used
// by unit tests with a fake clientset.
func NewClientWithClientset(cfg *config.Config, logger *logrus.Logger, clientset kubernetes.Interface) *Client {
	return &Client{
		config:    cfg,
		logger:    logger,
		clientset: clientset,
	}
}
