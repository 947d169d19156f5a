package config

import "testing"

func TestResolveRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		controlPlane bool
		singleNode   bool
		want         Role
	}{
		{"no flags selects worker", false, false, RoleWorker},
		{"control-plane flag", true, false, RoleControlPlane},
		{"single-node flag", false, true, RoleSingleNode},
		{"single-node wins over control-plane", true, true, RoleSingleNode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ResolveRole(tt.controlPlane, tt.singleNode); got != tt.want {
				t.Fatalf("ResolveRole(%v, %v)=%q, want %q", tt.controlPlane, tt.singleNode, got, tt.want)
			}
		})
	}
}

func TestIsControlPlane(t *testing.T) {
	t.Parallel()

	if New(RoleWorker, false).IsControlPlane() {
		t.Fatal("worker role should not be control plane")
	}
	if !New(RoleControlPlane, false).IsControlPlane() {
		t.Fatal("control-plane role should be control plane")
	}
	if !New(RoleSingleNode, false).IsControlPlane() {
		t.Fatal("single-node role should be control plane")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := New(RoleSingleNode, true)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() on defaults: %v", err)
	}

	bad := New(RoleWorker, false)
	bad.Role = Role("observer")
	if err := bad.Validate(); err == nil {
		t.Fatal("Validate() accepted unknown role")
	}

	bad = New(RoleWorker, false)
	bad.APIServerBindPort = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("Validate() accepted zero API server port")
	}
}

func TestDeepCopy(t *testing.T) {
	t.Parallel()

	cfg := New(RoleControlPlane, true)
	cp := cfg.DeepCopy()

	cp.KubernetesVersion = "1.29.0"
	if cfg.KubernetesVersion == cp.KubernetesVersion {
		t.Fatal("DeepCopy() shares state with the original")
	}

	var nilCfg *Config
	if nilCfg.DeepCopy() != nil {
		t.Fatal("DeepCopy() of nil should be nil")
	}
}
