// Package results settles pending picks against completed games.
package results

import (
	"fmt"
	"strings"
	"time"

	"github.com/sam-maryland/around-the-table/internal/league"
	"github.com/sam-maryland/around-the-table/internal/odds"
)

// NormalizeTeamName lower-cases a team name and drops everything outside a-z,
// so "N.Y. Jets" and "ny jets" compare equal
func NormalizeTeamName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// sameDay compares calendar dates as seen in loc
func sameDay(a, b time.Time, loc *time.Location) bool {
	a, b = a.In(loc), b.In(loc)
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// FindGameResult returns the completed game the pick's team played on the
// pick's game date. Dates are compared in the league's local time; a nil loc
// means UTC.
func FindGameResult(pick league.Pick, games []odds.ScoreEvent, loc *time.Location) (odds.ScoreEvent, bool) {
	if pick.GameTime == nil {
		return odds.ScoreEvent{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	team := NormalizeTeamName(pick.Team)

	for _, g := range games {
		if !g.Completed {
			continue
		}
		if NormalizeTeamName(g.HomeTeam) != team && NormalizeTeamName(g.AwayTeam) != team {
			continue
		}
		if sameDay(g.CommenceTime, *pick.GameTime, loc) {
			return g, true
		}
	}
	return odds.ScoreEvent{}, false
}

// Outcome is the decided result of a pick
type Outcome struct {
	Won        bool   `json:"won"`
	FinalScore string `json:"final_score"`
}

// Decide works out whether the pick's team won. A tie is a loss for the pick.
func Decide(pick league.Pick, game odds.ScoreEvent) (Outcome, error) {
	home, away, err := gameScores(game)
	if err != nil {
		return Outcome{}, err
	}

	team := NormalizeTeamName(pick.Team)
	var won bool
	switch team {
	case NormalizeTeamName(game.HomeTeam):
		won = home > away
	case NormalizeTeamName(game.AwayTeam):
		won = away > home
	default:
		return Outcome{}, fmt.Errorf("%s did not play in %s at %s", pick.Team, game.AwayTeam, game.HomeTeam)
	}

	return Outcome{Won: won, FinalScore: FormatScore(game, home, away)}, nil
}

// FormatScore renders "away X - home Y"
func FormatScore(game odds.ScoreEvent, home, away int) string {
	return fmt.Sprintf("%s %d - %s %d", game.AwayTeam, away, game.HomeTeam, home)
}

func gameScores(game odds.ScoreEvent) (home, away int, err error) {
	hv, ok := game.ScoreFor(game.HomeTeam)
	if !ok {
		return 0, 0, fmt.Errorf("no score for %s", game.HomeTeam)
	}
	av, ok := game.ScoreFor(game.AwayTeam)
	if !ok {
		return 0, 0, fmt.Errorf("no score for %s", game.AwayTeam)
	}
	if home, err = hv.Int(); err != nil {
		return 0, 0, err
	}
	if away, err = av.Int(); err != nil {
		return 0, 0, err
	}
	return home, away, nil
}
