package cluster

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/kubeprep/kubeprep/pkg/config"
)

// newTestClient builds a Client with a fake clientset and aggressive poll
// timeouts so wait loops finish in milliseconds.
func newTestClient(t *testing.T, objects ...runtime.Object) *Client {
	t.Helper()

	cfg := config.New(config.RoleSingleNode, false)
	cfg.PollInterval = 5 * time.Millisecond
	cfg.TaintSettleDuration = time.Millisecond

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return NewClientWithClientset(cfg, logger, fake.NewClientset(objects...))
}

func clientsetOf(t *testing.T, c *Client) *fake.Clientset {
	t.Helper()

	fakeClientset, ok := c.clientset.(*fake.Clientset)
	if !ok {
		t.Fatalf("clientset is %T, want *fake.Clientset", c.clientset)
	}
	return fakeClientset
}

func node(name string, ready corev1.ConditionStatus, taints ...corev1.Taint) *corev1.Node {
	return &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: name},
		Spec:       corev1.NodeSpec{Taints: taints},
		Status: corev1.NodeStatus{
			Conditions: []corev1.NodeCondition{
				{Type: corev1.NodeReady, Status: ready},
			},
		},
	}
}

func pod(namespace, name string, phase corev1.PodPhase) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Namespace: namespace, Name: name},
		Status:     corev1.PodStatus{Phase: phase},
	}
}
