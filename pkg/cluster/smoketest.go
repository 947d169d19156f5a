package cluster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/utils/ptr"
)

// ErrSmokeTestTimeout indicates the throwaway test pod did not become Ready
// within the deadline.
var ErrSmokeTestTimeout = errors.New("smoke test pod did not become ready")

const (
	smokeTestNamespace = "default"
	smokeTestImage     = "registry.k8s.io/pause:3.9"
)

// RunSmokeTest deploys a throwaway pod, waits for it to become Ready, and
// deletes it again. The pod is removed on every path, including timeout.
func (c *Client) RunSmokeTest(ctx context.Context, timeout time.Duration) error {
	podName := "kubeprep-smoke-" + uuid.NewString()[:8]

	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      podName,
			Namespace: smokeTestNamespace,
			Labels:    map[string]string{"app.kubernetes.io/managed-by": "kubeprep"},
		},
		Spec: corev1.PodSpec{
			RestartPolicy:                 corev1.RestartPolicyNever,
			TerminationGracePeriodSeconds: ptr.To(int64(0)),
			Containers: []corev1.Container{{
				Name:  "smoke",
				Image: smokeTestImage,
			}},
		},
	}

	c.logger.Infof("Deploying smoke test pod %s/%s", smokeTestNamespace, podName)
	if _, err := c.clientset.CoreV1().Pods(smokeTestNamespace).Create(ctx, pod, metav1.CreateOptions{}); err != nil {
		return fmt.Errorf("failed to create smoke test pod: %w", err)
	}

	defer func() {
		// Cleanup must not inherit a cancelled step context.
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := c.clientset.CoreV1().Pods(smokeTestNamespace).Delete(cleanupCtx, podName, metav1.DeleteOptions{}); err != nil {
			c.logger.Warnf("Failed to delete smoke test pod %s: %v", podName, err)
		}
	}()

	err := wait.PollUntilContextTimeout(ctx, c.config.PollInterval, timeout, true,
		func(ctx context.Context) (bool, error) {
			current, err := c.clientset.CoreV1().Pods(smokeTestNamespace).Get(ctx, podName, metav1.GetOptions{})
			if err != nil {
				c.logger.Debugf("Smoke test pod get failed, retrying: %v", err)
				return false, nil
			}
			return isPodReady(current), nil
		})
	if err != nil {
		return fmt.Errorf("%w: %s", ErrSmokeTestTimeout, podName)
	}

	c.logger.Info("Smoke test pod became Ready")
	return nil
}

// isPodReady returns true when the pod reports condition Ready=True, or is
// Running for pods whose conditions have not been populated yet.
func isPodReady(pod *corev1.Pod) bool {
	for _, cond := range pod.Status.Conditions {
		if cond.Type == corev1.PodReady {
			return cond.Status == corev1.ConditionTrue
		}
	}
	return pod.Status.Phase == corev1.PodRunning
}
