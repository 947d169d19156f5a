package bootstrapper

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kubeprep/kubeprep/pkg/cluster"
	"github.com/kubeprep/kubeprep/pkg/components/cluster_credentials"
	"github.com/kubeprep/kubeprep/pkg/components/cni"
	"github.com/kubeprep/kubeprep/pkg/components/containerd"
	"github.com/kubeprep/kubeprep/pkg/components/kube_packages"
	"github.com/kubeprep/kubeprep/pkg/components/kubeadm"
	"github.com/kubeprep/kubeprep/pkg/components/metrics_server"
	"github.com/kubeprep/kubeprep/pkg/components/services"
	"github.com/kubeprep/kubeprep/pkg/components/system_configuration"
	"github.com/kubeprep/kubeprep/pkg/config"
	"github.com/kubeprep/kubeprep/pkg/preflight"
	"github.com/kubeprep/kubeprep/pkg/systemd"
	"github.com/kubeprep/kubeprep/pkg/utils"
)

// Bootstrapper executes provisioning steps sequentially for the configured
// role.
type Bootstrapper struct {
	*BaseExecutor

	runner  *utils.Runner
	systemd systemd.Manager
	cluster *clusterProvider
}

// New creates a new bootstrapper
func New(cfg *config.Config, logger *logrus.Logger, runner *utils.Runner, manager systemd.Manager) *Bootstrapper {
	return &Bootstrapper{
		BaseExecutor: NewBaseExecutor(cfg, logger),
		runner:       runner,
		systemd:      manager,
		cluster:      newClusterProvider(cfg, logger, runner),
	}
}

// Bootstrap executes all provisioning steps for the configured role.
func (b *Bootstrapper) Bootstrap(ctx context.Context) (*ExecutionResult, error) {
	steps := b.installSteps()

	switch b.config.Role {
	case config.RoleWorker:
		steps = append(steps, services.NewVerifier(b.logger, b.systemd))
	default:
		steps = append(steps, b.controlPlaneSteps()...)
		if b.config.Role == config.RoleSingleNode {
			steps = append(steps, b.singleNodeSteps()...)
		}
	}

	result, err := b.ExecuteSteps(ctx, steps, "bootstrap")
	if err != nil {
		return result, err
	}

	// Pod convergence is a verification pass, not a provisioning step: a
	// cluster whose addon pods are still settling is degraded, not broken.
	if b.config.Role == config.RoleSingleNode {
		if soft := b.waitForPodsSettled(ctx); soft != nil {
			result.SoftFailures = append(result.SoftFailures, soft)
		}
	}

	return result, nil
}

// JoinCommand returns the command worker nodes run to register with the
// control plane initialized by this run.
func (b *Bootstrapper) JoinCommand(ctx context.Context) (string, error) {
	return kubeadm.JoinCommand(ctx, b.runner)
}

// installSteps are shared by every role: host preparation plus runtime and
// Kubernetes tooling installation.
func (b *Bootstrapper) installSteps() []Executor {
	return []Executor{
		newFuncStep("PreflightCheck", func(ctx context.Context) error {
			return preflight.NewChecker(b.config, b.logger).Check()
		}),
		system_configuration.NewInstaller(b.config, b.logger, b.runner),
		containerd.NewInstaller(b.config, b.logger, b.runner),
		kube_packages.NewInstaller(b.config, b.logger, b.runner),
		services.NewInstaller(b.config, b.logger, b.systemd),
	}
}

func (b *Bootstrapper) controlPlaneSteps() []Executor {
	return []Executor{
		kubeadm.NewInitializer(b.config, b.logger, b.runner),
		cluster_credentials.NewInstaller(b.config, b.logger, b.runner),
		cni.NewInstaller(b.config, b.logger, b.runner),
		newFuncStep("WaitNodesReady", func(ctx context.Context) error {
			client, err := b.cluster.get()
			if err != nil {
				return err
			}
			return client.WaitForNodesReady(ctx, b.config.NodeReadyTimeout)
		}),
		newFuncStep("ValidateVersion", func(ctx context.Context) error {
			client, err := b.cluster.get()
			if err != nil {
				return err
			}
			return client.ValidateVersion(ctx)
		}),
		metrics_server.NewInstaller(b.config, b.logger, b.runner, b.cluster),
	}
}

func (b *Bootstrapper) singleNodeSteps() []Executor {
	return []Executor{
		newFuncStep("RemoveControlPlaneTaints", func(ctx context.Context) error {
			client, err := b.cluster.get()
			if err != nil {
				return err
			}
			return client.RemoveControlPlaneTaints(ctx)
		}),
		newFuncStep("SmokeTest", func(ctx context.Context) error {
			client, err := b.cluster.get()
			if err != nil {
				return err
			}
			return client.RunSmokeTest(ctx, b.config.SmokeTestTimeout)
		}),
	}
}

func (b *Bootstrapper) waitForPodsSettled(ctx context.Context) error {
	client, err := b.cluster.get()
	if err != nil {
		return err
	}
	return client.WaitForAllPodsRunning(ctx, b.config.PodsSettleTimeout)
}

// clusterProvider lazily builds the cluster client. The admin kubeconfig only
// exists after the control plane is initialized, so construction has to wait
// until the first cluster-facing step runs.
type clusterProvider struct {
	config *config.Config
	logger *logrus.Logger
	runner *utils.Runner

	once   sync.Once
	client *cluster.Client
	err    error
}

func newClusterProvider(cfg *config.Config, logger *logrus.Logger, runner *utils.Runner) *clusterProvider {
	return &clusterProvider{
		config: cfg,
		logger: logger,
		runner: runner,
	}
}

func (p *clusterProvider) get() (*cluster.Client, error) {
	p.once.Do(func() {
		p.client, p.err = cluster.NewClient(p.config, p.logger, p.runner)
	})
	return p.client, p.err
}

// WaitForDeploymentReady implements metrics_server.DeploymentWaiter.
func (p *clusterProvider) WaitForDeploymentReady(ctx context.Context, namespace, name string, timeout time.Duration) error {
	client, err := p.get()
	if err != nil {
		return err
	}
	return client.WaitForDeploymentReady(ctx, namespace, name, timeout)
}

// funcStep adapts a plain function into an Executor.
type funcStep struct {
	name string
	fn   func(ctx context.Context) error
}

func newFuncStep(name string, fn func(ctx context.Context) error) *funcStep {
	return &funcStep{name: name, fn: fn}
}

func (s *funcStep) Execute(ctx context.Context) error { return s.fn(ctx) }
func (s *funcStep) GetName() string                   { return s.name }
func (s *funcStep) IsCompleted(context.Context) bool  { return false }
