// Package settings persists the operator's saved calculations in a single
// flat JSON file, the same file layout the bench tooling already reads.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
)

// Setting is one saved calculation snapshot. The JSON keys are fixed: the
// file is shared with other tooling and predates this program.
type Setting struct {
	Substraat      string  `json:"substraat"`
	Inktsoort      string  `json:"inktsoort"`
	RasterwalsType string  `json:"rasterwals_type"`
	Volume         string  `json:"volume"`
	BCM            float64 `json:"bcm"`
	Vermogen       float64 `json:"vermogen"`
	Transfer       string  `json:"transfer"`
}

// Store reads and appends saved settings. It assumes a single interactive
// session: every append rewrites the whole file, with no locking and no
// rename dance.
type Store struct {
	path string
}

// NewStore returns a Store over the settings file at path. The file does not
// need to exist yet.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns all saved settings in insertion order. A missing, unreadable
// or malformed file yields an empty list; the operator can always keep
// calculating.
func (s *Store) Load() []Setting {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return []Setting{}
	}

	var saved []Setting
	if err := json.Unmarshal(data, &saved); err != nil {
		return []Setting{}
	}
	if saved == nil {
		return []Setting{}
	}
	return saved
}

// Append adds one setting to the end of the list and rewrites the file.
// Callers log failures and move on; a broken settings file never blocks the
// calculator.
func (s *Store) Append(setting Setting) error {
	saved := append(s.Load(), setting)

	data, err := json.Marshal(saved)
	if err != nil {
		return fmt.Errorf("encode saved settings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}
