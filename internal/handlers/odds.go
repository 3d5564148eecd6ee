package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/sam-maryland/around-the-table/internal/odds"
	"github.com/sam-maryland/around-the-table/internal/results"
)

// OddsService serves processed betting lines
type OddsService interface {
	Games(ctx context.Context, force bool) (odds.Snapshot, error)
	UnderdogsForWeek(ctx context.Context, wk int) ([]odds.Underdog, int, error)
}

// ResultChecker settles pending picks from completed games
type ResultChecker interface {
	Check(ctx context.Context, now time.Time) (results.Report, error)
}

// OddsHandler serves odds, underdogs and result checks
type OddsHandler struct {
	service OddsService
	checker ResultChecker
	season  string
	logger  *logrus.Logger
	now     func() time.Time
}

// NewOddsHandler creates a new odds handler
func NewOddsHandler(service OddsService, checker ResultChecker, season string, logger *logrus.Logger) *OddsHandler {
	return &OddsHandler{
		service: service,
		checker: checker,
		season:  season,
		logger:  logger,
		now:     time.Now,
	}
}

// GetOddsTool returns the MCP tool definition for get_odds
func (h *OddsHandler) GetOddsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_odds",
		Description: "Get NFL games with point spreads and moneylines, bucketed into season weeks",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"week": map[string]interface{}{
					"type":        "number",
					"description": "Week to show (1-18); omit for every week",
					"required":    false,
				},
				"force": map[string]interface{}{
					"type":        "boolean",
					"description": "Bypass the cache and fetch fresh odds (default: false)",
					"required":    false,
				},
			},
		},
	}
}

// HandleGetOdds handles the get_odds tool call
func (h *OddsHandler) HandleGetOdds(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling get_odds")

	week, _, err := intArg(args, "week")
	if err != nil {
		return nil, err
	}
	if week < 0 || week > odds.MaxWeek {
		return nil, fmt.Errorf("week must be between 1 and %d", odds.MaxWeek)
	}
	force, err := boolArg(args, "force", false)
	if err != nil {
		return nil, err
	}

	snap, err := h.service.Games(ctx, force)
	if err != nil && len(snap.Games) == 0 {
		h.logger.WithError(err).Error("Failed to get odds")
		return errorResult("Failed to get odds: %s", err.Error()), nil
	}

	games := odds.FilterWeek(snap.Games, week)
	summary := fmt.Sprintf("%d games", len(games))
	if week > 0 {
		summary = fmt.Sprintf("%d games in week %d", len(games), week)
	}
	resp := APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"games":        games,
			"last_updated": snap.LastUpdated,
			"stale":        snap.Stale,
		},
		Summary: summary,
		Metadata: Metadata{
			Timestamp: h.now(),
			Source:    SourceOddsGateway,
			CacheHit:  snap.Cached,
			Season:    h.season,
		},
	}
	if !snap.Cached && !snap.Stale {
		resp.Metadata.APICallsUsed = 1
	}
	if err != nil {
		resp.Error = fmt.Sprintf("showing cached odds from %s: %s", snap.LastUpdated.Format(time.RFC3339), err.Error())
	}
	return jsonResult(resp), nil
}

// GetUnderdogsTool returns the MCP tool definition for get_underdogs
func (h *OddsHandler) GetUnderdogsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_underdogs",
		Description: "List the teams eligible to be picked in a week: the underdog of each game by spread, or by moneyline when there is no spread",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"week": map[string]interface{}{
					"type":        "number",
					"description": "Week (1-18); defaults to the current week",
					"required":    false,
				},
			},
		},
	}
}

// HandleGetUnderdogs handles the get_underdogs tool call
func (h *OddsHandler) HandleGetUnderdogs(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling get_underdogs")

	week, _, err := intArg(args, "week")
	if err != nil {
		return nil, err
	}
	if week < 0 || week > odds.MaxWeek {
		return nil, fmt.Errorf("week must be between 1 and %d", odds.MaxWeek)
	}

	dogs, week, err := h.service.UnderdogsForWeek(ctx, week)
	if err != nil && dogs == nil {
		h.logger.WithError(err).Error("Failed to get underdogs")
		return errorResult("Failed to get underdogs: %s", err.Error()), nil
	}

	resp := APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"week":      week,
			"underdogs": dogs,
		},
		Summary: fmt.Sprintf("%d underdogs available in week %d", len(dogs), week),
		Metadata: Metadata{
			Timestamp: h.now(),
			Source:    SourceOddsGateway,
			Season:    h.season,
		},
	}
	if err != nil {
		resp.Error = "odds could not be refreshed, showing cached lines: " + err.Error()
	}
	return jsonResult(resp), nil
}

// CheckResultsTool returns the MCP tool definition for check_results
func (h *OddsHandler) CheckResultsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "check_results",
		Description: "Settle pending picks whose games have finished using recent final scores",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// HandleCheckResults handles the check_results tool call
func (h *OddsHandler) HandleCheckResults(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.Info("Handling check_results")

	report, err := h.checker.Check(ctx, h.now())
	if err != nil {
		h.logger.WithError(err).Error("Failed to check results")
		return errorResult("Failed to check results: %s", err.Error()), nil
	}

	calls := 0
	if report.Pending > 0 {
		calls = 1
	}
	return jsonResult(APIResponse{
		Success: true,
		Data:    report,
		Summary: report.Message,
		Metadata: Metadata{
			Timestamp:    report.CheckedAt,
			Source:       SourceOddsGateway,
			APICallsUsed: calls,
			Season:       h.season,
		},
	}), nil
}
