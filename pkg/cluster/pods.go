package cluster

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
)

// ErrPodsNotSettled is the soft failure returned when pods are still not
// Running when the convergence timeout expires. Callers report it without
// aborting the overall run.
var ErrPodsNotSettled = errors.New("pods did not settle into Running state")

// WaitForAllPodsRunning polls until no pod across all namespaces is in a
// non-Running, non-Succeeded phase. On timeout it logs the offending pods and
// returns ErrPodsNotSettled.
func (c *Client) WaitForAllPodsRunning(ctx context.Context, timeout time.Duration) error {
	c.logger.Infof("Waiting up to %v for all pods to be Running", timeout)

	var lastPending []string

	err := wait.PollUntilContextTimeout(ctx, c.config.PollInterval, timeout, true,
		func(ctx context.Context) (bool, error) {
			pods, err := c.clientset.CoreV1().Pods(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
			if err != nil {
				c.logger.Debugf("Pod list failed, retrying: %v", err)
				return false, nil
			}

			lastPending = pendingPods(pods.Items)
			if len(lastPending) > 0 {
				c.logger.Debugf("%d pods still pending: %s", len(lastPending), strings.Join(lastPending, ", "))
				return false, nil
			}
			return true, nil
		})
	if err != nil {
		c.logger.Warnf("Pods still not Running after %v: %s", timeout, strings.Join(lastPending, ", "))
		return fmt.Errorf("%w: %s", ErrPodsNotSettled, strings.Join(lastPending, ", "))
	}

	c.logger.Info("All pods are Running")
	return nil
}

// pendingPods returns namespace/name(phase) for every pod not yet Running.
// Succeeded pods are terminal and do not count as pending.
func pendingPods(pods []corev1.Pod) []string {
	var pending []string
	for i := range pods {
		pod := &pods[i]
		if pod.Status.Phase == corev1.PodRunning || pod.Status.Phase == corev1.PodSucceeded {
			continue
		}
		pending = append(pending,
			fmt.Sprintf("%s/%s(%s)", pod.Namespace, pod.Name, pod.Status.Phase))
	}
	return pending
}
