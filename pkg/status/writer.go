package status

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// WriteRecordToFile persists the provisioning record as JSON. The write is
// atomic so a crash never leaves a truncated record behind.
func WriteRecordToFile(path string, record *RunRecord) error {
	if path == "" {
		return fmt.Errorf("record path is empty")
	}
	if record == nil {
		return fmt.Errorf("run record is nil")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create record directory: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run record to JSON: %w", err)
	}

	if err := renameio.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write run record: %w", err)
	}
	return nil
}
