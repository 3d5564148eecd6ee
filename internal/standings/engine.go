// Package standings derives league standings, settlements and season status
// from player win/loss records. Every function is pure: callers own the state
// and its persistence.
package standings

import (
	"math"
	"sort"

	"github.com/sam-maryland/around-the-table/internal/league"
)

// Rules configures the money and season model
type Rules struct {
	// League names the league in the champion headline
	League string `json:"league"`
	// Stake is paid by each other player per win, and to each other player per loss
	Stake int `json:"stake"`
	// SeasonLength is the number of games every player must reach for the season to end
	SeasonLength int `json:"season_length"`
}

// DefaultRules is a $5 stake over a 17 game regular season
var DefaultRules = Rules{League: "Around the Table", Stake: 5, SeasonLength: 17}

// Engine computes derived league state under a fixed set of rules
type Engine struct {
	rules Rules
}

// NewEngine creates an engine, falling back to defaults for unset rules
func NewEngine(rules Rules) *Engine {
	if rules.League == "" {
		rules.League = DefaultRules.League
	}
	if rules.Stake <= 0 {
		rules.Stake = DefaultRules.Stake
	}
	if rules.SeasonLength <= 0 {
		rules.SeasonLength = DefaultRules.SeasonLength
	}
	return &Engine{rules: rules}
}

// Rules returns the rules the engine was built with
func (e *Engine) Rules() Rules {
	return e.rules
}

// NetBalance is stake * (totalPlayers - 1) * (wins - losses).
// A single-player league always balances to zero.
func (e *Engine) NetBalance(p league.Player, totalPlayers int) int {
	if totalPlayers <= 1 {
		return 0
	}
	opponents := totalPlayers - 1
	winAmount := p.Wins * e.rules.Stake * opponents
	lossAmount := p.Losses * e.rules.Stake * opponents
	return winAmount - lossAmount
}

// RankPlayers orders players by net balance, highest first. Equal balances
// keep their roster order. The input slice is not modified.
func (e *Engine) RankPlayers(players []league.Player) []league.Player {
	ranked := append([]league.Player(nil), players...)
	n := len(players)
	sort.SliceStable(ranked, func(i, j int) bool {
		return e.NetBalance(ranked[i], n) > e.NetBalance(ranked[j], n)
	})
	return ranked
}

// StandingRow is one line of the standings table
type StandingRow struct {
	Rank          int     `json:"rank"`
	Name          string  `json:"name"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	GamesPlayed   int     `json:"games_played"`
	WinPercentage float64 `json:"win_percentage"`
	NetBalance    int     `json:"net_balance"`
	Leader        bool    `json:"leader"`
}

// Summary holds the league-wide figures shown above the standings
type Summary struct {
	TotalPlayers int    `json:"total_players"`
	TotalWeeks   int    `json:"total_weeks"`
	TotalMoney   int    `json:"total_money"`
	Leader       string `json:"leader,omitempty"`
	CurrentWeek  int    `json:"current_week"`
}

// StandingsView is the ranked table plus its summary
type StandingsView struct {
	Rows    []StandingRow `json:"rows"`
	Summary Summary       `json:"summary"`
}

// ComputeStandings ranks the players and derives the summary figures
func (e *Engine) ComputeStandings(players []league.Player) StandingsView {
	n := len(players)
	ranked := e.RankPlayers(players)

	view := StandingsView{
		Rows: make([]StandingRow, 0, n),
		Summary: Summary{
			TotalPlayers: n,
			CurrentWeek:  league.CurrentWeek(players),
		},
	}

	for i, p := range ranked {
		balance := e.NetBalance(p, n)
		view.Rows = append(view.Rows, StandingRow{
			Rank:          i + 1,
			Name:          p.Name,
			Wins:          p.Wins,
			Losses:        p.Losses,
			GamesPlayed:   p.GamesPlayed(),
			WinPercentage: winPercentage(p),
			NetBalance:    balance,
			Leader:        i == 0 && balance > 0,
		})

		if p.GamesPlayed() > view.Summary.TotalWeeks {
			view.Summary.TotalWeeks = p.GamesPlayed()
		}
		view.Summary.TotalMoney += absInt(balance)
	}

	if len(view.Rows) > 0 && view.Rows[0].Leader {
		view.Summary.Leader = view.Rows[0].Name
	}

	return view
}

func winPercentage(p league.Player) float64 {
	games := p.GamesPlayed()
	if games == 0 {
		return 0
	}
	return math.Round(float64(p.Wins)/float64(games)*1000) / 10
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
