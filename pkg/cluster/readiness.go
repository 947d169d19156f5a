package cluster

import (
	"context"
	"errors"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
)

// ErrReadinessTimeout indicates nodes did not all become Ready within the
// configured deadline.
var ErrReadinessTimeout = errors.New("timed out waiting for nodes to become ready")

// WaitForNodesReady polls until every node in the cluster reports Ready=True.
// Transient list errors keep the poll going; the deadline is the only way out.
func (c *Client) WaitForNodesReady(ctx context.Context, timeout time.Duration) error {
	c.logger.Infof("Waiting up to %v for all nodes to become Ready", timeout)

	err := wait.PollUntilContextTimeout(ctx, c.config.PollInterval, timeout, true,
		func(ctx context.Context) (bool, error) {
			nodes, err := c.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
			if err != nil {
				c.logger.Debugf("Node list failed, retrying: %v", err)
				return false, nil
			}
			if len(nodes.Items) == 0 {
				return false, nil
			}

			for i := range nodes.Items {
				if !isNodeReady(&nodes.Items[i]) {
					c.logger.Debugf("Node %s is not Ready yet", nodes.Items[i].Name)
					return false, nil
				}
			}
			return true, nil
		})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadinessTimeout, err)
	}

	c.logger.Info("All nodes are Ready")
	return nil
}

// WaitForDeploymentReady polls until the named deployment has all desired
// replicas available.
func (c *Client) WaitForDeploymentReady(ctx context.Context, namespace, name string, timeout time.Duration) error {
	c.logger.Infof("Waiting up to %v for deployment %s/%s", timeout, namespace, name)

	err := wait.PollUntilContextTimeout(ctx, c.config.PollInterval, timeout, true,
		func(ctx context.Context) (bool, error) {
			deploy, err := c.clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
			if err != nil {
				c.logger.Debugf("Deployment get failed, retrying: %v", err)
				return false, nil
			}

			desired := int32(1)
			if deploy.Spec.Replicas != nil {
				desired = *deploy.Spec.Replicas
			}
			return deploy.Status.AvailableReplicas >= desired, nil
		})
	if err != nil {
		return fmt.Errorf("%w: deployment %s/%s", ErrReadinessTimeout, namespace, name)
	}

	return nil
}

// isNodeReady returns true if the node has condition Ready=True.
func isNodeReady(node *corev1.Node) bool {
	for _, cond := range node.Status.Conditions {
		if cond.Type == corev1.NodeReady {
			return cond.Status == corev1.ConditionTrue
		}
	}
	return false
}
