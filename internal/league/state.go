package league

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxWeeks is the number of weeks a pick can be made for, including the final week
const DefaultMaxWeeks = 18

var (
	ErrUnknownPlayer = errors.New("unknown player")
	ErrPickNotFound  = errors.New("pick not found")
	ErrPickSettled   = errors.New("pick already settled")
	ErrDuplicatePick = errors.New("player already has a pick for this week")
	ErrInvalidWeek   = errors.New("invalid week")
	ErrInvalidRecord = errors.New("invalid win/loss record")
	ErrInvalidBackup = errors.New("invalid backup data")
)

// NewState seeds a season with every roster member at 0-0
func NewState(roster []string) State {
	players := make([]Player, 0, len(roster))
	for _, name := range roster {
		players = append(players, Player{Name: name})
	}

	return State{
		Players:     players,
		Picks:       []Pick{},
		Results:     []GameResult{},
		CurrentWeek: 1,
	}
}

// WeekLimit returns the last pickable week
func (s State) WeekLimit() int {
	if s.MaxWeeks <= 0 {
		return DefaultMaxWeeks
	}
	return s.MaxWeeks
}

// Clone returns a deep copy so callers can mutate without touching the original
func (s State) Clone() State {
	out := State{
		Players:     append([]Player(nil), s.Players...),
		Picks:       append([]Pick(nil), s.Picks...),
		Results:     append([]GameResult(nil), s.Results...),
		CurrentWeek: s.CurrentWeek,
		MaxWeeks:    s.MaxWeeks,
	}
	if out.Players == nil {
		out.Players = []Player{}
	}
	if out.Picks == nil {
		out.Picks = []Pick{}
	}
	if out.Results == nil {
		out.Results = []GameResult{}
	}
	return out
}

// PlayerIndex returns the roster position of a player or -1
func (s State) PlayerIndex(name string) int {
	for i, p := range s.Players {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// PickInput holds the fields supplied when a player makes a selection
type PickInput struct {
	Player     string
	Week       int
	Team       string
	Opponent   string
	IsUnderdog bool
	GameTime   *time.Time
}

// AddPick appends a pending pick for a roster player
func (s *State) AddPick(in PickInput, now time.Time) (Pick, error) {
	if s.PlayerIndex(in.Player) < 0 {
		return Pick{}, fmt.Errorf("%w: %s", ErrUnknownPlayer, in.Player)
	}
	if in.Week < 1 || in.Week > s.WeekLimit() {
		return Pick{}, fmt.Errorf("%w: %d", ErrInvalidWeek, in.Week)
	}
	team := strings.TrimSpace(in.Team)
	if team == "" {
		return Pick{}, errors.New("team is required")
	}
	for _, p := range s.Picks {
		if p.Player == in.Player && p.Week == in.Week {
			return Pick{}, fmt.Errorf("%w: %s week %d", ErrDuplicatePick, in.Player, in.Week)
		}
	}

	pick := Pick{
		ID:         uuid.New().String(),
		Player:     in.Player,
		Week:       in.Week,
		Team:       team,
		Opponent:   strings.TrimSpace(in.Opponent),
		IsUnderdog: in.IsUnderdog,
		Result:     ResultPending,
		Timestamp:  now.UTC(),
		GameTime:   in.GameTime,
	}
	s.Picks = append(s.Picks, pick)
	return pick, nil
}

// ResultInput identifies the pick being settled and its outcome.
// Player is optional and only narrows the match when two players took the same team.
type ResultInput struct {
	Player     string
	Week       int
	Team       string
	Won        bool
	FinalScore string
}

// RecordResult settles a pending pick and credits the player's record
func (s *State) RecordResult(in ResultInput, now time.Time) (Pick, error) {
	idx := -1
	for i, p := range s.Picks {
		if p.Week != in.Week || !strings.EqualFold(p.Team, strings.TrimSpace(in.Team)) {
			continue
		}
		if in.Player != "" && p.Player != in.Player {
			continue
		}
		// Prefer a pending pick when the same team was picked more than once
		if idx < 0 || (s.Picks[idx].Result.IsSettled() && !p.Result.IsSettled()) {
			idx = i
		}
	}
	if idx < 0 {
		return Pick{}, fmt.Errorf("%w: week %d team %s", ErrPickNotFound, in.Week, in.Team)
	}

	pick := &s.Picks[idx]
	if pick.Result.IsSettled() {
		return *pick, fmt.Errorf("%w: %s week %d", ErrPickSettled, pick.Player, pick.Week)
	}

	pi := s.PlayerIndex(pick.Player)
	if pi < 0 {
		return Pick{}, fmt.Errorf("%w: %s", ErrUnknownPlayer, pick.Player)
	}

	ts := now.UTC()
	if in.Won {
		pick.Result = ResultWin
		s.Players[pi].Wins++
	} else {
		pick.Result = ResultLoss
		s.Players[pi].Losses++
	}
	pick.FinalScore = in.FinalScore
	pick.UpdatedAt = &ts

	s.Results = append(s.Results, GameResult{
		PickID:     pick.ID,
		Player:     pick.Player,
		Week:       pick.Week,
		Team:       pick.Team,
		Outcome:    pick.Result,
		FinalScore: pick.FinalScore,
		RecordedAt: ts,
	})
	s.CurrentWeek = CurrentWeek(s.Players)

	return *pick, nil
}

// UpdatePlayerStats overrides a player's record, used for manual corrections
func (s *State) UpdatePlayerStats(name string, wins, losses int) error {
	idx := s.PlayerIndex(name)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, name)
	}
	if wins < 0 || losses < 0 || wins+losses > s.WeekLimit() {
		return fmt.Errorf("%w: %d-%d", ErrInvalidRecord, wins, losses)
	}

	s.Players[idx].Wins = wins
	s.Players[idx].Losses = losses
	s.CurrentWeek = CurrentWeek(s.Players)
	return nil
}

// RecomputeRecords rebuilds every player's wins and losses from settled picks
func (s *State) RecomputeRecords() {
	for i := range s.Players {
		s.Players[i].Wins = 0
		s.Players[i].Losses = 0
	}
	for _, p := range s.Picks {
		idx := s.PlayerIndex(p.Player)
		if idx < 0 {
			continue
		}
		switch p.Result {
		case ResultWin:
			s.Players[idx].Wins++
		case ResultLoss:
			s.Players[idx].Losses++
		}
	}
	s.CurrentWeek = CurrentWeek(s.Players)
}

// PendingPicks returns unsettled picks whose game has kicked off before now
func (s State) PendingPicks(now time.Time) []Pick {
	var pending []Pick
	for _, p := range s.Picks {
		if p.Result.IsSettled() || p.GameTime == nil {
			continue
		}
		if p.GameTime.Before(now) {
			pending = append(pending, p)
		}
	}
	return pending
}

// CurrentWeek derives the week in progress from the average games played
func CurrentWeek(players []Player) int {
	if len(players) == 0 {
		return 1
	}
	total := 0
	for _, p := range players {
		total += p.GamesPlayed()
	}
	return total/len(players) + 1
}

func winRate(wins, losses int) float64 {
	if wins+losses == 0 {
		return 0
	}
	rate := float64(wins) / float64(wins+losses) * 100
	return math.Round(rate*10) / 10
}
