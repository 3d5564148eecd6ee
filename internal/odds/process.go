package odds

import (
	"sort"
	"time"
)

// MaxWeek is the last week of the regular season schedule
const MaxWeek = 18

const week = 7 * 24 * time.Hour

// WeekFromDate buckets a kick-off into a season week counted from seasonStart,
// clamped to [1, MaxWeek]
func WeekFromDate(t, seasonStart time.Time) int {
	w := int(t.Sub(seasonStart)/week) + 1
	if w < 1 {
		return 1
	}
	if w > MaxWeek {
		return MaxWeek
	}
	return w
}

// CurrentWeek is the season week containing now. Before the season starts it is week 1.
func CurrentWeek(now, seasonStart time.Time) int {
	return WeekFromDate(now, seasonStart)
}

// ProcessEvents converts provider events into games using the first
// bookmaker's spreads and moneylines. A team is an underdog when its spread
// or its moneyline is positive.
func ProcessEvents(events []Event, seasonStart time.Time) []Game {
	games := make([]Game, 0, len(events))
	for _, e := range events {
		spread, moneyline := bestLines(e)
		games = append(games, Game{
			ID:             e.ID,
			HomeTeam:       e.HomeTeam,
			AwayTeam:       e.AwayTeam,
			GameTime:       e.CommenceTime,
			Week:           WeekFromDate(e.CommenceTime, seasonStart),
			Spread:         spread,
			Moneyline:      moneyline,
			IsHomeUnderdog: spread.Home > 0 || moneyline.Home > 0,
			IsAwayUnderdog: spread.Away > 0 || moneyline.Away > 0,
		})
	}
	return games
}

// bestLines reads the first bookmaker only; comparing books is not needed to
// decide who the underdog is
func bestLines(e Event) (spread, moneyline Line) {
	if len(e.Bookmakers) == 0 {
		return
	}
	for _, m := range e.Bookmakers[0].Markets {
		for _, o := range m.Outcomes {
			switch m.Key {
			case "spreads":
				if o.Name == e.HomeTeam {
					spread.Home = o.Point
				} else if o.Name == e.AwayTeam {
					spread.Away = o.Point
				}
			case "h2h":
				if o.Name == e.HomeTeam {
					moneyline.Home = o.Price
				} else if o.Name == e.AwayTeam {
					moneyline.Away = o.Price
				}
			}
		}
	}
	return
}

// FilterWeek returns the games in a week sorted by kick-off. Week 0 keeps every week.
func FilterWeek(games []Game, wk int) []Game {
	out := []Game{}
	for _, g := range games {
		if wk == 0 || g.Week == wk {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].GameTime.Before(out[j].GameTime)
	})
	return out
}

// Underdogs lists every team eligible to be picked in a week
func Underdogs(games []Game, wk int) []Underdog {
	dogs := []Underdog{}
	for _, g := range games {
		if g.Week != wk {
			continue
		}
		if g.IsHomeUnderdog {
			dogs = append(dogs, Underdog{
				Team:      g.HomeTeam,
				Opponent:  g.AwayTeam,
				Home:      true,
				Spread:    g.Spread.Home,
				Moneyline: g.Moneyline.Home,
				GameTime:  g.GameTime,
				Week:      g.Week,
			})
		}
		if g.IsAwayUnderdog {
			dogs = append(dogs, Underdog{
				Team:      g.AwayTeam,
				Opponent:  g.HomeTeam,
				Spread:    g.Spread.Away,
				Moneyline: g.Moneyline.Away,
				GameTime:  g.GameTime,
				Week:      g.Week,
			})
		}
	}
	return dogs
}
