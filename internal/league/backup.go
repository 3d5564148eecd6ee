package league

import (
	"encoding/json"
	"fmt"
	"time"
)

// Export serialises the state into an indented backup document
func Export(s State, now time.Time) ([]byte, error) {
	backup := Backup{
		Players:     s.Players,
		Picks:       s.Picks,
		GameResults: s.Results,
		CurrentWeek: s.CurrentWeek,
		ExportDate:  now.UTC(),
	}

	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal backup: %w", err)
	}
	return data, nil
}

// Import parses a backup and returns the state it describes. The current state
// is never modified; on error the caller keeps what it had.
func Import(current State, data []byte) (State, error) {
	var backup Backup
	if err := json.Unmarshal(data, &backup); err != nil {
		return current, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}

	next := current.Clone()
	if backup.Players != nil {
		if len(backup.Players) == 0 {
			return current, fmt.Errorf("%w: players list is empty", ErrInvalidBackup)
		}
		next.Players = backup.Players
	}
	next.Picks = backup.Picks
	if next.Picks == nil {
		next.Picks = []Pick{}
	}
	next.Results = backup.GameResults
	if next.Results == nil {
		next.Results = []GameResult{}
	}
	next.CurrentWeek = backup.CurrentWeek
	if next.CurrentWeek <= 0 {
		next.CurrentWeek = 1
	}

	return next, nil
}
