package results

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sam-maryland/around-the-table/internal/league"
	"github.com/sam-maryland/around-the-table/internal/odds"
	"github.com/sam-maryland/around-the-table/internal/store"
)

// StateStore is the slice of the league store the checker needs
type StateStore interface {
	Load(ctx context.Context) (league.State, error)
	Update(ctx context.Context, fn func(*league.State) error) (league.State, error)
	GetJSON(ctx context.Context, key string, out interface{}) error
	PutJSON(ctx context.Context, key string, v interface{}) error
}

// Report describes one result check
type Report struct {
	CheckedAt time.Time     `json:"checked_at"`
	Pending   int           `json:"pending"`
	Settled   []league.Pick `json:"settled"`
	Message   string        `json:"message"`
}

// Checker settles pending picks from completed game scores
type Checker struct {
	store    StateStore
	client   odds.Client
	daysFrom int
	loc      *time.Location
	logger   *logrus.Logger
}

// NewChecker creates a result checker that looks back daysFrom days for scores.
// Game dates are matched in loc, the league's local time zone; nil means UTC.
func NewChecker(st StateStore, client odds.Client, daysFrom int, loc *time.Location, logger *logrus.Logger) *Checker {
	if daysFrom <= 0 {
		daysFrom = 3
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Checker{
		store:    st,
		client:   client,
		daysFrom: daysFrom,
		loc:      loc,
		logger:   logger,
	}
}

// Check settles every pending pick whose game has finished. Picks without a
// matching completed game stay pending for the next check. A failed fetch
// leaves the state untouched.
func (c *Checker) Check(ctx context.Context, now time.Time) (Report, error) {
	report := Report{CheckedAt: now.UTC(), Settled: []league.Pick{}}

	state, err := c.store.Load(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to load league state: %w", err)
	}

	pending := state.PendingPicks(now)
	report.Pending = len(pending)
	if len(pending) == 0 {
		report.Message = "No pending picks found for result checking"
		c.logger.Info(report.Message)
		return report, nil
	}

	scores, err := c.client.GetScores(ctx, c.daysFrom)
	if err != nil {
		c.logger.WithError(err).Error("Error checking results")
		return report, fmt.Errorf("failed to fetch completed games: %w", err)
	}
	completed := odds.Completed(scores)

	_, err = c.store.Update(ctx, func(s *league.State) error {
		// re-read pending picks from the state being written
		for _, pick := range s.PendingPicks(now) {
			game, ok := FindGameResult(pick, completed, c.loc)
			if !ok {
				continue
			}
			outcome, err := Decide(pick, game)
			if err != nil {
				c.logger.WithError(err).WithField("pick_id", pick.ID).Warn("Skipping game with unusable scores")
				continue
			}

			settled, err := s.RecordResult(league.ResultInput{
				Player:     pick.Player,
				Week:       pick.Week,
				Team:       pick.Team,
				Won:        outcome.Won,
				FinalScore: outcome.FinalScore,
			}, now)
			if err != nil {
				c.logger.WithError(err).WithField("pick_id", pick.ID).Warn("Could not settle pick")
				continue
			}

			c.logger.WithFields(logrus.Fields{
				"player": settled.Player,
				"team":   settled.Team,
				"week":   settled.Week,
				"result": settled.Result,
			}).Info("Pick settled")
			report.Settled = append(report.Settled, settled)
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("failed to save results: %w", err)
	}

	if len(report.Settled) > 0 {
		report.Message = fmt.Sprintf("Updated %d pick results", len(report.Settled))
	} else {
		report.Message = "No new results to update"
	}
	c.logger.Info(report.Message)

	if err := c.store.PutJSON(ctx, store.KeyLastResultCheck, report.CheckedAt); err != nil {
		c.logger.WithError(err).Warn("Failed to record last result check")
	}

	return report, nil
}

// LastChecked returns when results were last checked
func (c *Checker) LastChecked(ctx context.Context) (time.Time, bool) {
	var t time.Time
	if err := c.store.GetJSON(ctx, store.KeyLastResultCheck, &t); err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Run checks results every interval until ctx is cancelled. Failed checks are
// logged and retried on the next tick.
func (c *Checker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.logger.WithField("interval", interval.String()).Info("Automatic result checking started")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Automatic result checking stopped")
			return nil
		case t := <-ticker.C:
			if _, err := c.Check(ctx, t); err != nil {
				c.logger.WithError(err).Warn("Automatic result check failed")
			}
		}
	}
}
