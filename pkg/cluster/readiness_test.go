package cluster

import (
	"context"
	"errors"
	"testing"
	"time"

	corev1 "k8s.io/api/core/v1"
)

func TestWaitForNodesReadySucceeds(t *testing.T) {
	t.Parallel()

	c := newTestClient(t,
		node("cp-0", corev1.ConditionTrue),
		node("worker-0", corev1.ConditionTrue),
	)

	if err := c.WaitForNodesReady(context.Background(), time.Second); err != nil {
		t.Fatalf("WaitForNodesReady() err=%v", err)
	}
}

func TestWaitForNodesReadyTimesOut(t *testing.T) {
	t.Parallel()

	c := newTestClient(t,
		node("cp-0", corev1.ConditionTrue),
		node("worker-0", corev1.ConditionFalse),
	)

	start := time.Now()
	err := c.WaitForNodesReady(context.Background(), 50*time.Millisecond)
	elapsed := time.Since(start)

	if !errors.Is(err, ErrReadinessTimeout) {
		t.Fatalf("WaitForNodesReady() err=%v, want ErrReadinessTimeout", err)
	}
	// Must return within timeout + poll interval, never hang.
	if elapsed > time.Second {
		t.Fatalf("WaitForNodesReady() took %v, expected a bounded wait", elapsed)
	}
}

func TestWaitForNodesReadyRequiresNodes(t *testing.T) {
	t.Parallel()

	c := newTestClient(t)

	err := c.WaitForNodesReady(context.Background(), 50*time.Millisecond)
	if !errors.Is(err, ErrReadinessTimeout) {
		t.Fatalf("WaitForNodesReady() with no nodes err=%v, want ErrReadinessTimeout", err)
	}
}
