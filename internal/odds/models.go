package odds

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Event represents an upcoming game with bookmaker odds
type Event struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title"`
	CommenceTime time.Time   `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// Bookmaker holds one bookmaker's markets for an event
type Bookmaker struct {
	Key        string    `json:"key"`
	Title      string    `json:"title"`
	LastUpdate time.Time `json:"last_update"`
	Markets    []Market  `json:"markets"`
}

// Market is a betting market such as "spreads" or "h2h"
type Market struct {
	Key      string    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// Outcome is a team's line within a market. Point is only set for spreads.
type Outcome struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Point float64 `json:"point,omitempty"`
}

// ScoreEvent represents a game from the scores endpoint
type ScoreEvent struct {
	ID           string     `json:"id"`
	SportKey     string     `json:"sport_key"`
	CommenceTime time.Time  `json:"commence_time"`
	Completed    bool       `json:"completed"`
	HomeTeam     string     `json:"home_team"`
	AwayTeam     string     `json:"away_team"`
	Scores       []Score    `json:"scores"`
	LastUpdate   *time.Time `json:"last_update,omitempty"`
}

// Score is one team's points in a game
type Score struct {
	Name  string     `json:"name"`
	Score ScoreValue `json:"score"`
}

// ScoreValue is a score as sent by the provider, which may be a string or a number
type ScoreValue string

// UnmarshalJSON accepts "24", 24 and null
func (v *ScoreValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = ScoreValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid score: %w", err)
	}
	*v = ScoreValue(n.String())
	return nil
}

// Int parses the score as a whole number of points
func (v ScoreValue) Int() (int, error) {
	n, err := strconv.Atoi(string(v))
	if err != nil {
		return 0, fmt.Errorf("invalid score %q", string(v))
	}
	return n, nil
}

// ScoreFor returns the score recorded for a team name
func (e ScoreEvent) ScoreFor(team string) (ScoreValue, bool) {
	for _, s := range e.Scores {
		if s.Name == team {
			return s.Score, true
		}
	}
	return "", false
}

// Line holds a home/away pair of numbers
type Line struct {
	Home float64 `json:"home"`
	Away float64 `json:"away"`
}

// Game is a processed event with the first bookmaker's spread and moneyline
type Game struct {
	ID             string    `json:"id"`
	HomeTeam       string    `json:"home_team"`
	AwayTeam       string    `json:"away_team"`
	GameTime       time.Time `json:"game_time"`
	Week           int       `json:"week"`
	Spread         Line      `json:"spread"`
	Moneyline      Line      `json:"moneyline"`
	IsHomeUnderdog bool      `json:"is_home_underdog"`
	IsAwayUnderdog bool      `json:"is_away_underdog"`
}

// Underdog is a team eligible to be picked
type Underdog struct {
	Team      string    `json:"team"`
	Opponent  string    `json:"opponent"`
	Home      bool      `json:"home"`
	Spread    float64   `json:"spread"`
	Moneyline float64   `json:"moneyline"`
	GameTime  time.Time `json:"game_time"`
	Week      int       `json:"week"`
}

// APIError represents a non-200 response from the odds gateway
type APIError struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}
