package league

import (
	"encoding/json"
	"fmt"
	"time"
)

// DefaultRoster is the fixed group of players seeded on first run
var DefaultRoster = []string{"Corey", "Jerry", "Larry", "Ramiz", "Bruno"}

// Player represents one member of the league and their season record
type Player struct {
	Name   string `json:"name"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
}

// GamesPlayed returns the number of settled picks for the player
func (p Player) GamesPlayed() int {
	return p.Wins + p.Losses
}

// Result is the outcome of a pick. The zero value means the game has not been settled.
type Result string

const (
	ResultPending Result = ""
	ResultWin     Result = "win"
	ResultLoss    Result = "loss"
)

// IsSettled reports whether the result is a win or a loss
func (r Result) IsSettled() bool {
	return r == ResultWin || r == ResultLoss
}

// MarshalJSON writes pending results as null
func (r Result) MarshalJSON() ([]byte, error) {
	if r == ResultPending {
		return []byte("null"), nil
	}
	return json.Marshal(string(r))
}

// UnmarshalJSON accepts null, "pending", "win" and "loss"
func (r *Result) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = ResultPending
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid result: %w", err)
	}

	switch s {
	case "", "pending":
		*r = ResultPending
	case string(ResultWin), string(ResultLoss):
		*r = Result(s)
	default:
		return fmt.Errorf("invalid result %q", s)
	}
	return nil
}

// Pick represents a player's weekly underdog selection
type Pick struct {
	ID         string     `json:"id"`
	Player     string     `json:"player"`
	Week       int        `json:"week"`
	Team       string     `json:"team"`
	Opponent   string     `json:"opponent"`
	IsUnderdog bool       `json:"isUnderdog"`
	Result     Result     `json:"result"`
	Timestamp  time.Time  `json:"timestamp"`
	GameTime   *time.Time `json:"gameTime,omitempty"`
	FinalScore string     `json:"finalScore,omitempty"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// GameResult is an entry in the log of settled games
type GameResult struct {
	PickID     string    `json:"pick_id"`
	Player     string    `json:"player"`
	Week       int       `json:"week"`
	Team       string    `json:"team"`
	Outcome    Result    `json:"outcome"`
	FinalScore string    `json:"final_score,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// State is the complete persisted league state for one season
type State struct {
	Players     []Player     `json:"players"`
	Picks       []Pick       `json:"picks"`
	Results     []GameResult `json:"game_results"`
	CurrentWeek int          `json:"current_week"`

	// MaxWeeks is the last week a pick can be made for. Zero means DefaultMaxWeeks.
	MaxWeeks int `json:"-"`
}

// Backup is the export format for a season
type Backup struct {
	Players     []Player     `json:"players"`
	Picks       []Pick       `json:"picks"`
	GameResults []GameResult `json:"gameResults"`
	CurrentWeek int          `json:"currentWeek"`
	ExportDate  time.Time    `json:"exportDate"`
}

// PickStats summarises a set of picks
type PickStats struct {
	TotalPicks int      `json:"total_picks"`
	Wins       int      `json:"wins"`
	Losses     int      `json:"losses"`
	Pending    int      `json:"pending"`
	WinRate    float64  `json:"win_rate"`
	Players    []string `json:"players,omitempty"`
}
