package league

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func samplePicks() []Pick {
	return []Pick{
		{Player: "Corey", Week: 1, Team: "New York Jets", Result: ResultWin},
		{Player: "Jerry", Week: 1, Team: "Tennessee Titans", Result: ResultLoss},
		{Player: "Corey", Week: 2, Team: "Chicago Bears", Result: ResultLoss},
		{Player: "Jerry", Week: 2, Team: "New York Giants"},
		{Player: "Larry", Week: 3, Team: "Cleveland Browns", Result: ResultWin},
	}
}

func TestFilterPicks(t *testing.T) {
	tests := []struct {
		name      string
		filter    PickFilter
		wantTeams []string
	}{
		{
			name:      "no filter",
			filter:    PickFilter{},
			wantTeams: []string{"New York Jets", "Tennessee Titans", "Chicago Bears", "New York Giants", "Cleveland Browns"},
		},
		{
			name:      "explicit all",
			filter:    PickFilter{Player: FilterAll, Week: FilterAll, Result: FilterAll},
			wantTeams: []string{"New York Jets", "Tennessee Titans", "Chicago Bears", "New York Giants", "Cleveland Browns"},
		},
		{
			name:      "by player",
			filter:    PickFilter{Player: "Corey"},
			wantTeams: []string{"New York Jets", "Chicago Bears"},
		},
		{
			name:      "by week",
			filter:    PickFilter{Week: "2"},
			wantTeams: []string{"Chicago Bears", "New York Giants"},
		},
		{
			name:      "pending only",
			filter:    PickFilter{Result: "pending"},
			wantTeams: []string{"New York Giants"},
		},
		{
			name:      "wins for a player",
			filter:    PickFilter{Player: "Corey", Result: "win"},
			wantTeams: []string{"New York Jets"},
		},
		{
			name:      "unparseable week",
			filter:    PickFilter{Week: "two"},
			wantTeams: []string{},
		},
		{
			name:      "week zero matches nothing",
			filter:    PickFilter{Week: "0"},
			wantTeams: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterPicks(samplePicks(), tt.filter)
			teams := make([]string, 0, len(got))
			for _, p := range got {
				teams = append(teams, p.Team)
			}
			if !reflect.DeepEqual(teams, tt.wantTeams) {
				t.Errorf("Expected %v, got %v", tt.wantTeams, teams)
			}
		})
	}
}

func TestPlayerStats(t *testing.T) {
	stats := PlayerStats(samplePicks(), "Corey")

	if stats.TotalPicks != 2 || stats.Wins != 1 || stats.Losses != 1 || stats.Pending != 0 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if stats.WinRate != 50 {
		t.Errorf("Expected 50%% win rate, got %v", stats.WinRate)
	}

	empty := PlayerStats(samplePicks(), "Bruno")
	if empty.TotalPicks != 0 || empty.WinRate != 0 {
		t.Errorf("Expected empty stats for Bruno, got %+v", empty)
	}
}

func TestWeekStats(t *testing.T) {
	stats := WeekStats(samplePicks(), 2)

	if stats.TotalPicks != 2 || stats.Losses != 1 || stats.Pending != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if !reflect.DeepEqual(stats.Players, []string{"Corey", "Jerry"}) {
		t.Errorf("Expected Corey and Jerry, got %v", stats.Players)
	}
}

func TestSummarizeWinRateRounding(t *testing.T) {
	picks := []Pick{{Result: ResultWin}, {Result: ResultLoss}, {Result: ResultLoss}}
	if got := Summarize(picks).WinRate; got != 33.3 {
		t.Errorf("Expected 33.3, got %v", got)
	}
}

func TestWeeks(t *testing.T) {
	picks := []Pick{{Week: 3}, {Week: 1}, {Week: 3}, {Week: 2}}
	if got := Weeks(picks); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("Expected [1 2 3], got %v", got)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	s := NewState(DefaultRoster)
	mustAdd(t, &s, PickInput{Player: "Corey", Week: 1, Team: "New York Jets"})
	if _, err := s.RecordResult(ResultInput{Week: 1, Team: "New York Jets", Won: true}, testNow); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	data, err := Export(s, testNow)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(string(data), `"exportDate"`) {
		t.Error("Expected export date in backup")
	}

	restored, err := Import(NewState(DefaultRoster), data)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if restored.Players[0].Wins != 1 {
		t.Errorf("Expected Corey's win to survive, got %+v", restored.Players[0])
	}
	if len(restored.Picks) != 1 || restored.Picks[0].Result != ResultWin {
		t.Errorf("Expected the settled pick to survive, got %+v", restored.Picks)
	}
	if len(restored.Results) != 1 {
		t.Errorf("Expected 1 game result, got %d", len(restored.Results))
	}
}

func TestImport_Defaults(t *testing.T) {
	current := NewState(DefaultRoster)
	current.Players[0].Wins = 3
	current.Picks = []Pick{{Player: "Corey", Week: 1}}

	next, err := Import(current, []byte(`{}`))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if next.Players[0].Wins != 3 {
		t.Error("Expected missing players to keep the current roster")
	}
	if len(next.Picks) != 0 {
		t.Error("Expected missing picks to reset to empty")
	}
	if next.CurrentWeek != 1 {
		t.Errorf("Expected week 1, got %d", next.CurrentWeek)
	}
	if len(current.Picks) != 1 {
		t.Error("Expected the current state to be untouched")
	}
}

func TestImport_RejectsEmptyRoster(t *testing.T) {
	current := NewState(DefaultRoster)

	next, err := Import(current, []byte(`{"players": [], "picks": [{"player": "Corey", "week": 1}]}`))
	if !errors.Is(err, ErrInvalidBackup) {
		t.Fatalf("Expected ErrInvalidBackup, got %v", err)
	}
	if !reflect.DeepEqual(next, current) {
		t.Error("Expected the current state back on failure")
	}
}

func TestImport_InvalidData(t *testing.T) {
	current := NewState(DefaultRoster)

	next, err := Import(current, []byte(`{"players": [`))
	if !errors.Is(err, ErrInvalidBackup) {
		t.Fatalf("Expected ErrInvalidBackup, got %v", err)
	}
	if !reflect.DeepEqual(next, current) {
		t.Error("Expected the current state back on failure")
	}
}
