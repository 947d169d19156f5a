package status

import (
	"errors"
	"os"

	"github.com/sirupsen/logrus"
)

// RemoveRecordBestEffort removes a stale provisioning record before a new run
// starts, so a crash mid-run cannot leave an outdated success record behind.
//
// It is intentionally best-effort: failure to remove the file should not
// abort provisioning.
func RemoveRecordBestEffort(logger *logrus.Logger, path string) {
	if logger == nil {
		return
	}
	if path == "" {
		logger.Debug("Failed to remove run record: empty path")
		return
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("Run record already removed")
			return
		}
		logger.Debugf("Failed to remove run record: %v", err)
		return
	}

	logger.Debug("Removed stale run record")
}
