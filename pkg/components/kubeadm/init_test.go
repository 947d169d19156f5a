package kubeadm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/kubeprep/kubeprep/pkg/config"
	"github.com/kubeprep/kubeprep/pkg/utils"
)

func TestRenderBootstrapConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "kubeadm-config.yaml")
	content, err := renderBootstrapConfig(path, "10.0.12.4", "1.30.0", "192.168.0.0/16", 6443)
	if err != nil {
		t.Fatalf("renderBootstrapConfig() err=%v", err)
	}

	rendered := string(content)
	for _, want := range []string{
		"kind: InitConfiguration",
		"kind: ClusterConfiguration",
		"advertiseAddress: 10.0.12.4",
		"controlPlaneEndpoint: 10.0.12.4:6443",
		"kubernetesVersion: v1.30.0",
		"podSubnet: 192.168.0.0/16",
		"---",
	} {
		if !strings.Contains(rendered, want) {
			t.Fatalf("rendered config missing %q:\n%s", want, rendered)
		}
	}

	if !utils.FileExists(path) {
		t.Fatalf("config file not written to %s", path)
	}
}

func TestJoinCommandErrorIncludesCommandOutput(t *testing.T) {
	// Fake kubeadm on PATH so the failure detail is deterministic.
	dir := t.TempDir()
	script := "#!/bin/sh\necho 'token create refused' >&2\nexit 1\n"
	if err := os.WriteFile(filepath.Join(dir, "kubeadm"), []byte(script), 0o755); err != nil {
		t.Fatalf("write fake kubeadm: %v", err)
	}
	t.Setenv("PATH", dir)

	var log bytes.Buffer
	_, err := JoinCommand(context.Background(), utils.NewRunner(&log))
	if err == nil {
		t.Fatal("JoinCommand() expected error")
	}
	if !strings.Contains(err.Error(), "token create refused") {
		t.Fatalf("JoinCommand() err=%q, want the command output included", err)
	}
}

func TestExecuteAbortsOnNetworkDetectionFailure(t *testing.T) {
	t.Parallel()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := config.New(config.RoleControlPlane, false)
	cfg.KubeadmConfigPath = filepath.Join(t.TempDir(), "kubeadm-config.yaml")

	var log bytes.Buffer
	init := NewInitializer(cfg, logger, utils.NewRunner(&log))
	init.detectIP = func() (string, error) {
		return "", fmt.Errorf("%w: no default route", ErrNetworkDetection)
	}

	err := init.Execute(context.Background())
	if !errors.Is(err, ErrNetworkDetection) {
		t.Fatalf("Execute() err=%v, want ErrNetworkDetection", err)
	}

	// No bootstrap CLI invocation may happen after a detection failure.
	if strings.Contains(log.String(), "kubeadm") {
		t.Fatalf("kubeadm was invoked despite detection failure:\n%s", log.String())
	}
	if utils.FileExists(cfg.KubeadmConfigPath) {
		t.Fatal("bootstrap config was rendered despite detection failure")
	}
}
