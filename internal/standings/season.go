package standings

import (
	"fmt"

	"github.com/sam-maryland/around-the-table/internal/league"
)

// SeasonState is the phase of the season
type SeasonState string

const (
	SeasonInProgress SeasonState = "IN_PROGRESS"
	SeasonComplete   SeasonState = "COMPLETE"
)

// SeasonStatus reports whether the season is over and who won it
type SeasonStatus struct {
	State       SeasonState `json:"state"`
	Complete    bool        `json:"complete"`
	GamesPlayed int         `json:"games_played"`
	Champion    string      `json:"champion,omitempty"`
}

// HasChampion reports whether a champion was declared
func (s SeasonStatus) HasChampion() bool {
	return s.Champion != ""
}

// Headline renders the champion banner for a league season, or "" without a champion
func (s SeasonStatus) Headline(league, season string) string {
	if !s.HasChampion() {
		return ""
	}
	return fmt.Sprintf("%s is the %s %s World Champion!", s.Champion, season, league)
}

// EvaluateSeason marks the season complete once every player has played the
// same number of games and that number reaches the season length. The top
// ranked player is champion only with a positive balance.
func (e *Engine) EvaluateSeason(players []league.Player) SeasonStatus {
	status := SeasonStatus{State: SeasonInProgress}
	if len(players) == 0 {
		return status
	}

	games := players[0].GamesPlayed()
	even := true
	status.GamesPlayed = games
	for _, p := range players[1:] {
		if p.GamesPlayed() != games {
			even = false
		}
		// fewest games played when uneven
		if p.GamesPlayed() < status.GamesPlayed {
			status.GamesPlayed = p.GamesPlayed()
		}
	}

	if !even || games < e.rules.SeasonLength {
		return status
	}

	status.State = SeasonComplete
	status.Complete = true

	top := e.RankPlayers(players)[0]
	if e.NetBalance(top, len(players)) > 0 {
		status.Champion = top.Name
	}

	return status
}
