package cluster_credentials

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/kubeprep/kubeprep/pkg/config"
	"github.com/kubeprep/kubeprep/pkg/utils"
)

func newTestInstaller(t *testing.T) (*Installer, string) {
	t.Helper()

	adminConf := filepath.Join(t.TempDir(), "admin.conf")
	if err := os.WriteFile(adminConf, []byte("apiVersion: v1\nkind: Config\n"), 0o600); err != nil {
		t.Fatalf("writing admin.conf fixture: %v", err)
	}

	cfg := config.New(config.RoleSingleNode, false)
	cfg.AdminKubeconfigPath = adminConf

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	var log bytes.Buffer
	return NewInstaller(cfg, logger, utils.NewRunner(&log)), adminConf
}

func TestExecuteCopiesKubeconfig(t *testing.T) {
	t.Parallel()

	i, _ := newTestInstaller(t)

	home := t.TempDir()
	current, err := user.Current()
	if err != nil {
		t.Fatalf("user.Current() err=%v", err)
	}
	i.lookupUser = func() (*user.User, error) {
		u := *current
		u.HomeDir = home
		return &u, nil
	}

	if err := i.Execute(context.Background()); err != nil {
		t.Fatalf("Execute() err=%v", err)
	}

	data, err := os.ReadFile(filepath.Join(home, ".kube", "config"))
	if err != nil {
		t.Fatalf("kubeconfig not installed: %v", err)
	}
	if string(data) != "apiVersion: v1\nkind: Config\n" {
		t.Fatalf("kubeconfig content=%q, want admin.conf content", data)
	}
}

func TestExecuteIsBestEffortOnMissingUser(t *testing.T) {
	t.Parallel()

	i, _ := newTestInstaller(t)
	i.lookupUser = func() (*user.User, error) {
		return nil, fmt.Errorf("unknown user")
	}

	if err := i.Execute(context.Background()); err != nil {
		t.Fatalf("Execute() should swallow missing-user failures, got err=%v", err)
	}
}

func TestExecuteIsBestEffortOnMissingHome(t *testing.T) {
	t.Parallel()

	i, _ := newTestInstaller(t)
	i.lookupUser = func() (*user.User, error) {
		return &user.User{Username: "ghost", HomeDir: ""}, nil
	}

	if err := i.Execute(context.Background()); err != nil {
		t.Fatalf("Execute() should swallow missing-home failures, got err=%v", err)
	}
}
