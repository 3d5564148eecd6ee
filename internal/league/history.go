package league

import (
	"sort"
	"strconv"
)

// FilterAll matches every value for a filter field
const FilterAll = "all"

// PickFilter narrows pick history. Empty fields behave like "all".
// Result accepts "win", "loss" or "pending".
type PickFilter struct {
	Player string
	Week   string
	Result string
}

func isAll(v string) bool {
	return v == "" || v == FilterAll
}

// FilterPicks returns the picks matching every set field, in stored order
func FilterPicks(picks []Pick, f PickFilter) []Pick {
	week, byWeek := 0, !isAll(f.Week)
	if byWeek {
		w, err := strconv.Atoi(f.Week)
		if err != nil || w < 1 {
			return []Pick{}
		}
		week = w
	}

	out := []Pick{}
	for _, p := range picks {
		if !isAll(f.Player) && p.Player != f.Player {
			continue
		}
		if byWeek && p.Week != week {
			continue
		}
		if !isAll(f.Result) {
			if f.Result == "pending" {
				if p.Result.IsSettled() {
					continue
				}
			} else if string(p.Result) != f.Result {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// PlayerHistory returns every pick made by a player
func PlayerHistory(picks []Pick, player string) []Pick {
	return FilterPicks(picks, PickFilter{Player: player})
}

// WeekPicks returns every pick made for a week
func WeekPicks(picks []Pick, week int) []Pick {
	out := []Pick{}
	for _, p := range picks {
		if p.Week == week {
			out = append(out, p)
		}
	}
	return out
}

// Weeks lists the distinct weeks that have picks, ascending
func Weeks(picks []Pick) []int {
	seen := make(map[int]bool)
	var weeks []int
	for _, p := range picks {
		if !seen[p.Week] {
			seen[p.Week] = true
			weeks = append(weeks, p.Week)
		}
	}
	sort.Ints(weeks)
	return weeks
}

// Summarize counts wins, losses and pending picks
func Summarize(picks []Pick) PickStats {
	stats := PickStats{TotalPicks: len(picks)}
	for _, p := range picks {
		switch p.Result {
		case ResultWin:
			stats.Wins++
		case ResultLoss:
			stats.Losses++
		default:
			stats.Pending++
		}
	}
	stats.WinRate = winRate(stats.Wins, stats.Losses)
	return stats
}

// PlayerStats summarises a single player's picks
func PlayerStats(picks []Pick, player string) PickStats {
	return Summarize(PlayerHistory(picks, player))
}

// WeekStats summarises a week's picks and lists who picked
func WeekStats(picks []Pick, week int) PickStats {
	weekPicks := WeekPicks(picks, week)
	stats := Summarize(weekPicks)
	stats.Players = make([]string, 0, len(weekPicks))
	for _, p := range weekPicks {
		stats.Players = append(stats.Players, p.Player)
	}
	return stats
}
