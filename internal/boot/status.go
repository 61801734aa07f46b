package boot

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/urbit-tools/shipmate/internal/config"
	"github.com/urbit-tools/shipmate/internal/pier"
)

// Status records one boot run next to the pier. Diagnostics only: the
// orchestrator never reads it back, `shipmate status` does.
type Status struct {
	RunID         string    `json:"run_id"`
	Ship          string    `json:"ship"`
	Mode          string    `json:"mode"`
	Session       string    `json:"session"`
	Log           string    `json:"log"`
	StartedAt     time.Time `json:"started_at"`
	ReadyAt       time.Time `json:"ready_at,omitempty"`
	Endpoint      string    `json:"endpoint,omitempty"`
	CodeRetrieved bool      `json:"code_retrieved"`
}

// newStatus builds the initial status record for a run.
func newStatus(cfg config.Config, target pier.Target) *Status {
	return &Status{
		RunID:     uuid.NewString(),
		Ship:      cfg.Ship,
		Mode:      string(target.Mode),
		Session:   cfg.SessionName,
		Log:       cfg.LogPath,
		StartedAt: time.Now(),
	}
}

// save writes the status file. Best-effort: a failed write never blocks
// the boot.
func (s *Status) save(path string) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(path, append(data, '\n'), 0644)
}

// LoadStatus reads a run status file. Returns (nil, nil) when absent.
func LoadStatus(path string) (*Status, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var s Status
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
