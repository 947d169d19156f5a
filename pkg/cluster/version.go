package cluster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blang/semver/v4"

	"github.com/kubeprep/kubeprep/pkg/utils"
)

// ErrVersionMismatch indicates the installed client and server versions do not
// both match the requested pinned version.
var ErrVersionMismatch = errors.New("kubernetes version mismatch")

// kubectlClientVersion mirrors the relevant part of
// `kubectl version --client -o json`.
type kubectlClientVersion struct {
	ClientVersion struct {
		GitVersion string `json:"gitVersion"`
	} `json:"clientVersion"`
}

// ValidateVersion queries the installed client and server versions and fails
// unless client == server == the requested pinned version.
func (c *Client) ValidateVersion(ctx context.Context) error {
	if c.clientVersionFn == nil {
		return fmt.Errorf("client version lookup is not configured")
	}

	requested, err := semver.ParseTolerant(c.config.KubernetesVersion)
	if err != nil {
		return fmt.Errorf("requested version %q is not parseable: %w", c.config.KubernetesVersion, err)
	}

	serverInfo, err := c.clientset.Discovery().ServerVersion()
	if err != nil {
		return fmt.Errorf("failed to query server version: %w", err)
	}
	server, err := semver.ParseTolerant(serverInfo.GitVersion)
	if err != nil {
		return fmt.Errorf("server version %q is not parseable: %w", serverInfo.GitVersion, err)
	}

	clientRaw, err := c.clientVersionFn(ctx)
	if err != nil {
		return err
	}
	client, err := semver.ParseTolerant(clientRaw)
	if err != nil {
		return fmt.Errorf("client version %q is not parseable: %w", clientRaw, err)
	}

	c.logger.Infof("Versions: requested=%s server=%s client=%s", requested, server, client)

	if !client.Equals(server) {
		return fmt.Errorf("%w: client %s != server %s", ErrVersionMismatch, client, server)
	}
	if !server.Equals(requested) {
		return fmt.Errorf("%w: server %s != requested %s", ErrVersionMismatch, server, requested)
	}

	return nil
}

// kubectlClientGitVersion queries the installed kubectl binary for its version.
func kubectlClientGitVersion(ctx context.Context, runner *utils.Runner) (string, error) {
	output, err := runner.Output(ctx, "kubectl", "version", "--client", "-o", "json")
	if err != nil {
		return "", fmt.Errorf("failed to query kubectl client version: %w", err)
	}

	var parsed kubectlClientVersion
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		return "", fmt.Errorf("failed to parse kubectl version output: %w", err)
	}
	if parsed.ClientVersion.GitVersion == "" {
		return "", fmt.Errorf("kubectl version output has no client gitVersion")
	}

	return parsed.ClientVersion.GitVersion, nil
}
