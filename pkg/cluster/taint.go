package cluster

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// controlPlaneTaintKeys repel workloads from control-plane nodes. Both the
// current key and the deprecated master key are handled.
var controlPlaneTaintKeys = []string{
	"node-role.kubernetes.io/control-plane",
	"node-role.kubernetes.io/master",
}

// RemoveControlPlaneTaints strips the control-plane scheduling taints from all
// nodes so workloads can run on a single-node cluster, then sleeps a fixed
// grace period for the scheduler to notice.
func (c *Client) RemoveControlPlaneTaints(ctx context.Context) error {
	nodes, err := c.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return fmt.Errorf("failed to list nodes: %w", err)
	}

	for i := range nodes.Items {
		node := &nodes.Items[i]

		kept := keptTaints(node.Spec.Taints)
		if len(kept) == len(node.Spec.Taints) {
			c.logger.Debugf("Node %s has no control-plane taints", node.Name)
			continue
		}

		node.Spec.Taints = kept
		if _, err := c.clientset.CoreV1().Nodes().Update(ctx, node, metav1.UpdateOptions{}); err != nil {
			return fmt.Errorf("failed to remove taints from node %s: %w", node.Name, err)
		}
		c.logger.Infof("Removed control-plane taints from node %s", node.Name)
	}

	c.logger.Infof("Sleeping %v for taint removal to propagate", c.config.TaintSettleDuration)
	select {
	case <-time.After(c.config.TaintSettleDuration):
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

// keptTaints returns the taints that are not control-plane scheduling taints.
func keptTaints(taints []corev1.Taint) []corev1.Taint {
	kept := make([]corev1.Taint, 0, len(taints))
	for _, taint := range taints {
		if isControlPlaneTaint(taint) {
			continue
		}
		kept = append(kept, taint)
	}
	return kept
}

func isControlPlaneTaint(taint corev1.Taint) bool {
	for _, key := range controlPlaneTaintKeys {
		if taint.Key == key {
			return true
		}
	}
	return false
}
