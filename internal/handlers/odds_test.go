package handlers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/sam-maryland/around-the-table/internal/league"
	"github.com/sam-maryland/around-the-table/internal/odds"
	"github.com/sam-maryland/around-the-table/internal/results"
)

// MockOddsService is a mock implementation of OddsService for testing
type MockOddsService struct {
	GamesFunc            func(ctx context.Context, force bool) (odds.Snapshot, error)
	UnderdogsForWeekFunc func(ctx context.Context, wk int) ([]odds.Underdog, int, error)
}

func (m *MockOddsService) Games(ctx context.Context, force bool) (odds.Snapshot, error) {
	if m.GamesFunc != nil {
		return m.GamesFunc(ctx, force)
	}
	return odds.Snapshot{}, errors.New("not implemented")
}

func (m *MockOddsService) UnderdogsForWeek(ctx context.Context, wk int) ([]odds.Underdog, int, error) {
	if m.UnderdogsForWeekFunc != nil {
		return m.UnderdogsForWeekFunc(ctx, wk)
	}
	return nil, wk, errors.New("not implemented")
}

// MockResultChecker is a mock implementation of ResultChecker for testing
type MockResultChecker struct {
	CheckFunc func(ctx context.Context, now time.Time) (results.Report, error)
}

func (m *MockResultChecker) Check(ctx context.Context, now time.Time) (results.Report, error) {
	if m.CheckFunc != nil {
		return m.CheckFunc(ctx, now)
	}
	return results.Report{}, errors.New("not implemented")
}

func newOddsHandler(svc OddsService, checker ResultChecker) *OddsHandler {
	logger, _ := test.NewNullLogger()
	h := NewOddsHandler(svc, checker, "2025", logger)
	h.now = func() time.Time { return testNow }
	return h
}

func sampleGames() []odds.Game {
	kick := time.Date(2025, 9, 7, 17, 0, 0, 0, time.UTC)
	return []odds.Game{
		{ID: "evt1", HomeTeam: "Pittsburgh Steelers", AwayTeam: "New York Jets", Week: 1, GameTime: kick, IsAwayUnderdog: true},
		{ID: "evt2", HomeTeam: "Chicago Bears", AwayTeam: "Minnesota Vikings", Week: 2, GameTime: kick.AddDate(0, 0, 7), IsHomeUnderdog: true},
	}
}

func TestOddsHandler_HandleGetOdds(t *testing.T) {
	tests := []struct {
		name        string
		args        map[string]interface{}
		snapshot    odds.Snapshot
		serviceErr  error
		wantError   bool
		wantIsError bool
		wantGames   int
		wantForce   bool
		wantCached  bool
		wantWarning bool
	}{
		{
			name:      "all weeks",
			args:      map[string]interface{}{},
			snapshot:  odds.Snapshot{Games: sampleGames(), LastUpdated: testNow},
			wantGames: 2,
		},
		{
			name:       "one week from cache",
			args:       map[string]interface{}{"week": float64(2)},
			snapshot:   odds.Snapshot{Games: sampleGames(), LastUpdated: testNow, Cached: true},
			wantGames:  1,
			wantCached: true,
		},
		{
			name:      "force refresh",
			args:      map[string]interface{}{"force": true},
			snapshot:  odds.Snapshot{Games: sampleGames(), LastUpdated: testNow},
			wantGames: 2,
			wantForce: true,
		},
		{
			name:        "stale games on failure",
			args:        map[string]interface{}{},
			snapshot:    odds.Snapshot{Games: sampleGames(), LastUpdated: testNow.Add(-time.Hour), Stale: true},
			serviceErr:  errors.New("gateway down"),
			wantGames:   2,
			wantWarning: true,
		},
		{
			name:        "failure without games",
			args:        map[string]interface{}{},
			snapshot:    odds.Snapshot{Games: []odds.Game{}, Stale: true},
			serviceErr:  errors.New("gateway down"),
			wantIsError: true,
		},
		{
			name:      "week out of range",
			args:      map[string]interface{}{"week": float64(25)},
			wantError: true,
		},
		{
			name:      "force not a bool",
			args:      map[string]interface{}{"force": "yes"},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotForce bool
			h := newOddsHandler(&MockOddsService{
				GamesFunc: func(ctx context.Context, force bool) (odds.Snapshot, error) {
					gotForce = force
					return tt.snapshot, tt.serviceErr
				},
			}, &MockResultChecker{})

			result, err := h.HandleGetOdds(context.Background(), tt.args)
			if tt.wantError {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if result.IsError != tt.wantIsError {
				t.Fatalf("Expected IsError=%v, got %v", tt.wantIsError, result.IsError)
			}
			if tt.wantIsError {
				return
			}

			var data struct {
				Games []odds.Game `json:"games"`
				Stale bool        `json:"stale"`
			}
			resp := decodeResponse(t, result, &data)

			if len(data.Games) != tt.wantGames {
				t.Errorf("Expected %d games, got %d", tt.wantGames, len(data.Games))
			}
			if gotForce != tt.wantForce {
				t.Errorf("Expected force=%v, got %v", tt.wantForce, gotForce)
			}
			if resp.Metadata.CacheHit != tt.wantCached {
				t.Errorf("Expected cache_hit=%v, got %v", tt.wantCached, resp.Metadata.CacheHit)
			}
			if (resp.Error != "") != tt.wantWarning {
				t.Errorf("Expected warning=%v, got %q", tt.wantWarning, resp.Error)
			}
			if data.Stale != tt.wantWarning {
				t.Errorf("Expected stale=%v, got %v", tt.wantWarning, data.Stale)
			}
		})
	}
}

func TestOddsHandler_HandleGetUnderdogs(t *testing.T) {
	dogs := []odds.Underdog{{Team: "New York Jets", Opponent: "Pittsburgh Steelers", Spread: 2.5, Moneyline: 120, Week: 1}}

	t.Run("current week", func(t *testing.T) {
		var gotWeek int
		h := newOddsHandler(&MockOddsService{
			UnderdogsForWeekFunc: func(ctx context.Context, wk int) ([]odds.Underdog, int, error) {
				gotWeek = wk
				return dogs, 1, nil
			},
		}, &MockResultChecker{})

		result, err := h.HandleGetUnderdogs(context.Background(), map[string]interface{}{})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		var data struct {
			Week      int             `json:"week"`
			Underdogs []odds.Underdog `json:"underdogs"`
		}
		resp := decodeResponse(t, result, &data)

		if gotWeek != 0 {
			t.Errorf("Expected week 0 to ask for the current week, got %d", gotWeek)
		}
		if data.Week != 1 || len(data.Underdogs) != 1 {
			t.Errorf("Unexpected underdogs: %+v", data)
		}
		if resp.Summary != "1 underdogs available in week 1" {
			t.Errorf("Unexpected summary: %q", resp.Summary)
		}
	})

	t.Run("no odds available", func(t *testing.T) {
		h := newOddsHandler(&MockOddsService{
			UnderdogsForWeekFunc: func(ctx context.Context, wk int) ([]odds.Underdog, int, error) {
				return nil, wk, errors.New("no odds available: gateway down")
			},
		}, &MockResultChecker{})

		result, err := h.HandleGetUnderdogs(context.Background(), map[string]interface{}{"week": float64(3)})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("Expected IsError result")
		}
	})

	t.Run("invalid week", func(t *testing.T) {
		h := newOddsHandler(&MockOddsService{}, &MockResultChecker{})
		if _, err := h.HandleGetUnderdogs(context.Background(), map[string]interface{}{"week": "week one"}); err == nil {
			t.Error("Expected error for non-numeric week")
		}
	})
}

func TestOddsHandler_HandleCheckResults(t *testing.T) {
	t.Run("settled picks", func(t *testing.T) {
		h := newOddsHandler(&MockOddsService{}, &MockResultChecker{
			CheckFunc: func(ctx context.Context, now time.Time) (results.Report, error) {
				if !now.Equal(testNow) {
					t.Errorf("Expected check at %v, got %v", testNow, now)
				}
				return results.Report{
					CheckedAt: now,
					Pending:   2,
					Settled:   []league.Pick{{Player: "Corey", Week: 1, Team: "New York Jets", Result: league.ResultWin}},
					Message:   "Updated 1 pick results",
				}, nil
			},
		})

		result, err := h.HandleCheckResults(context.Background(), map[string]interface{}{})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		var report results.Report
		resp := decodeResponse(t, result, &report)

		if resp.Summary != "Updated 1 pick results" {
			t.Errorf("Unexpected summary: %q", resp.Summary)
		}
		if len(report.Settled) != 1 || report.Settled[0].Result != league.ResultWin {
			t.Errorf("Unexpected report: %+v", report)
		}
		if resp.Metadata.APICallsUsed != 1 {
			t.Errorf("Expected 1 API call, got %d", resp.Metadata.APICallsUsed)
		}
	})

	t.Run("gateway failure", func(t *testing.T) {
		h := newOddsHandler(&MockOddsService{}, &MockResultChecker{
			CheckFunc: func(ctx context.Context, now time.Time) (results.Report, error) {
				return results.Report{}, errors.New("failed to fetch completed games: gateway down")
			},
		})

		result, err := h.HandleCheckResults(context.Background(), map[string]interface{}{})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !result.IsError || !strings.Contains(resultText(t, result), "gateway down") {
			t.Errorf("Expected gateway failure to be reported, got %q", resultText(t, result))
		}
	})
}
