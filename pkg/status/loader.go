package status

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadRecord loads the provisioning record from the default path.
func LoadRecord() (*RunRecord, error) {
	return LoadRecordFromFile(DefaultRecordPath)
}

// LoadRecordFromFile loads a provisioning record from a JSON file.
func LoadRecordFromFile(path string) (*RunRecord, error) {
	if path == "" {
		return nil, fmt.Errorf("record path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rec RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run record: %w", err)
	}

	return &rec, nil
}
