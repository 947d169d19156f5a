package preflight

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kubeprep/kubeprep/pkg/config"
)

// ErrUnsupportedPlatform indicates that the host OS does not match the release
// this provisioner is pinned to.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

const defaultOSReleasePath = "/etc/os-release"

// Checker verifies host compatibility before any state is mutated.
type Checker struct {
	config *config.Config
	logger *logrus.Logger

	// osReleasePath allows overriding /etc/os-release in unit tests.
	osReleasePath string
}

// NewChecker creates a preflight Checker.
func NewChecker(cfg *config.Config, logger *logrus.Logger) *Checker {
	return &Checker{
		config:        cfg,
		logger:        logger,
		osReleasePath: defaultOSReleasePath,
	}
}

// Check reads the host OS identification and compares the release against the
// expected version. It has no side effects beyond the read.
func (c *Checker) Check() error {
	id, versionID, err := c.readOSRelease()
	if err != nil {
		return fmt.Errorf("failed to read OS identification: %w", err)
	}

	c.logger.Infof("Detected host OS: %s %s", id, versionID)

	if id != "ubuntu" {
		return fmt.Errorf("%w: expected ubuntu, found %q", ErrUnsupportedPlatform, id)
	}
	if versionID != c.config.UbuntuVersion {
		return fmt.Errorf("%w: expected Ubuntu %s, found %s",
			ErrUnsupportedPlatform, c.config.UbuntuVersion, versionID)
	}

	return nil
}

func (c *Checker) readOSRelease() (id, versionID string, err error) {
	data, err := os.ReadFile(c.osReleasePath)
	if err != nil {
		return "", "", err
	}

	for _, line := range strings.Split(string(data), "\n") {
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), `"`)

		switch strings.TrimSpace(key) {
		case "ID":
			id = value
		case "VERSION_ID":
			versionID = value
		}
	}

	if id == "" || versionID == "" {
		return "", "", fmt.Errorf("os-release at %s has no ID/VERSION_ID fields", c.osReleasePath)
	}

	return id, versionID, nil
}
