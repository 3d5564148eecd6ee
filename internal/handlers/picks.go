package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/sam-maryland/around-the-table/internal/league"
)

// PicksHandler records picks and results and reports pick history
type PicksHandler struct {
	store  LeagueStore
	season string
	logger *logrus.Logger
	now    func() time.Time
}

// NewPicksHandler creates a new picks handler
func NewPicksHandler(store LeagueStore, season string, logger *logrus.Logger) *PicksHandler {
	return &PicksHandler{
		store:  store,
		season: season,
		logger: logger,
		now:    time.Now,
	}
}

func (h *PicksHandler) metadata() Metadata {
	return Metadata{
		Timestamp: h.now(),
		Source:    SourceLeagueStore,
		Season:    h.season,
	}
}

// domainError reports league validation failures as tool errors rather than
// protocol errors
func (h *PicksHandler) domainError(op string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, league.ErrUnknownPlayer),
		errors.Is(err, league.ErrPickNotFound),
		errors.Is(err, league.ErrPickSettled),
		errors.Is(err, league.ErrDuplicatePick),
		errors.Is(err, league.ErrInvalidWeek),
		errors.Is(err, league.ErrInvalidRecord),
		errors.Is(err, league.ErrInvalidBackup):
		h.logger.WithError(err).Warn(op + " rejected")
	default:
		h.logger.WithError(err).Error(op + " failed")
	}
	return errorResult("Failed to %s: %s", op, err.Error())
}

// AddPickTool returns the MCP tool definition for add_pick
func (h *PicksHandler) AddPickTool() mcp.Tool {
	return mcp.Tool{
		Name:        "add_pick",
		Description: "Record a player's underdog pick for a week. Each player makes one pick per week.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player": map[string]interface{}{
					"type":        "string",
					"description": "Roster player making the pick",
					"required":    true,
				},
				"week": map[string]interface{}{
					"type":        "number",
					"description": "NFL week, from 1 up to the league's max_weeks (18 by default)",
					"required":    true,
				},
				"team": map[string]interface{}{
					"type":        "string",
					"description": "Team picked to win outright",
					"required":    true,
				},
				"opponent": map[string]interface{}{
					"type":        "string",
					"description": "The favourite the team is playing",
					"required":    false,
				},
				"is_underdog": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether the team is the underdog (default: true)",
					"required":    false,
				},
				"game_time": map[string]interface{}{
					"type":        "string",
					"description": "Kick-off time in RFC 3339 format. Result checking matches it to a game by calendar date in the league time zone",
					"required":    false,
				},
			},
		},
	}
}

// HandleAddPick handles the add_pick tool call
func (h *PicksHandler) HandleAddPick(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling add_pick")

	player, ok := stringArg(args, "player")
	if !ok {
		return nil, fmt.Errorf("player is required and must be a string")
	}
	team, ok := stringArg(args, "team")
	if !ok {
		return nil, fmt.Errorf("team is required and must be a string")
	}
	week, present, err := intArg(args, "week")
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, fmt.Errorf("week is required")
	}
	isUnderdog, err := boolArg(args, "is_underdog", true)
	if err != nil {
		return nil, err
	}
	opponent, _ := stringArg(args, "opponent")

	input := league.PickInput{
		Player:     player,
		Week:       week,
		Team:       team,
		Opponent:   opponent,
		IsUnderdog: isUnderdog,
	}
	if raw, ok := stringArg(args, "game_time"); ok {
		gt, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("game_time must be an RFC 3339 timestamp: %w", err)
		}
		gt = gt.UTC()
		input.GameTime = &gt
	}

	var pick league.Pick
	_, err = h.store.Update(ctx, func(s *league.State) error {
		var err error
		pick, err = s.AddPick(input, h.now())
		return err
	})
	if err != nil {
		return h.domainError("add pick", err), nil
	}

	return jsonResult(APIResponse{
		Success:  true,
		Data:     pick,
		Summary:  fmt.Sprintf("%s picked %s in week %d", pick.Player, pick.Team, pick.Week),
		Metadata: h.metadata(),
	}), nil
}

// RecordResultTool returns the MCP tool definition for record_result
func (h *PicksHandler) RecordResultTool() mcp.Tool {
	return mcp.Tool{
		Name:        "record_result",
		Description: "Settle a pending pick as a win or a loss and update the player's record",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"week": map[string]interface{}{
					"type":        "number",
					"description": "Week of the pick",
					"required":    true,
				},
				"team": map[string]interface{}{
					"type":        "string",
					"description": "Team that was picked",
					"required":    true,
				},
				"won": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether the picked team won outright",
					"required":    true,
				},
				"player": map[string]interface{}{
					"type":        "string",
					"description": "Player who made the pick, when several players took the same team",
					"required":    false,
				},
				"final_score": map[string]interface{}{
					"type":        "string",
					"description": "Final score, e.g. 'New York Jets 27 - Pittsburgh Steelers 20'",
					"required":    false,
				},
			},
		},
	}
}

// HandleRecordResult handles the record_result tool call
func (h *PicksHandler) HandleRecordResult(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling record_result")

	team, ok := stringArg(args, "team")
	if !ok {
		return nil, fmt.Errorf("team is required and must be a string")
	}
	week, present, err := intArg(args, "week")
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, fmt.Errorf("week is required")
	}
	if _, present := args["won"]; !present {
		return nil, fmt.Errorf("won is required")
	}
	won, err := boolArg(args, "won", false)
	if err != nil {
		return nil, err
	}
	player, _ := stringArg(args, "player")
	finalScore, _ := stringArg(args, "final_score")

	var pick league.Pick
	state, err := h.store.Update(ctx, func(s *league.State) error {
		var err error
		pick, err = s.RecordResult(league.ResultInput{
			Player:     player,
			Week:       week,
			Team:       team,
			Won:        won,
			FinalScore: finalScore,
		}, h.now())
		return err
	})
	if err != nil {
		return h.domainError("record result", err), nil
	}

	p := state.Players[state.PlayerIndex(pick.Player)]
	return jsonResult(APIResponse{
		Success: true,
		Data:    pick,
		Summary: fmt.Sprintf("%s's week %d pick %s: %s (now %d-%d)",
			pick.Player, pick.Week, pick.Team, pick.Result, p.Wins, p.Losses),
		Metadata: h.metadata(),
	}), nil
}

// UpdatePlayerStatsTool returns the MCP tool definition for update_player_stats
func (h *PicksHandler) UpdatePlayerStatsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "update_player_stats",
		Description: "Manually set a player's win/loss record",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player": map[string]interface{}{
					"type":        "string",
					"description": "Roster player",
					"required":    true,
				},
				"wins": map[string]interface{}{
					"type":        "number",
					"description": "Total wins",
					"required":    true,
				},
				"losses": map[string]interface{}{
					"type":        "number",
					"description": "Total losses",
					"required":    true,
				},
			},
		},
	}
}

// HandleUpdatePlayerStats handles the update_player_stats tool call
func (h *PicksHandler) HandleUpdatePlayerStats(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling update_player_stats")

	player, ok := stringArg(args, "player")
	if !ok {
		return nil, fmt.Errorf("player is required and must be a string")
	}
	wins, present, err := intArg(args, "wins")
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, fmt.Errorf("wins is required")
	}
	losses, present, err := intArg(args, "losses")
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, fmt.Errorf("losses is required")
	}

	state, err := h.store.Update(ctx, func(s *league.State) error {
		return s.UpdatePlayerStats(player, wins, losses)
	})
	if err != nil {
		return h.domainError("update player stats", err), nil
	}

	return jsonResult(APIResponse{
		Success:  true,
		Data:     state.Players[state.PlayerIndex(player)],
		Summary:  fmt.Sprintf("%s is now %d-%d", player, wins, losses),
		Metadata: h.metadata(),
	}), nil
}

// GetPickHistoryTool returns the MCP tool definition for get_pick_history
func (h *PicksHandler) GetPickHistoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_pick_history",
		Description: "List picks, optionally filtered by player, week and result",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player": map[string]interface{}{
					"type":        "string",
					"description": "Player name or 'all' (default: all)",
					"required":    false,
				},
				"week": map[string]interface{}{
					"type":        "string",
					"description": "Week number or 'all' (default: all)",
					"required":    false,
				},
				"result": map[string]interface{}{
					"type":        "string",
					"description": "win, loss, pending or all (default: all)",
					"required":    false,
				},
			},
		},
	}
}

// PickHistoryData is the get_pick_history payload
type PickHistoryData struct {
	Picks []league.Pick    `json:"picks"`
	Stats league.PickStats `json:"stats"`
	Weeks []int            `json:"weeks"`
}

// HandleGetPickHistory handles the get_pick_history tool call
func (h *PicksHandler) HandleGetPickHistory(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling get_pick_history")

	filter := league.PickFilter{}
	filter.Player, _ = stringArg(args, "player")
	filter.Result, _ = stringArg(args, "result")
	switch w := args["week"].(type) {
	case string:
		filter.Week = w
	case float64:
		filter.Week = strconv.Itoa(int(w))
	}

	switch filter.Result {
	case "", league.FilterAll, "pending", string(league.ResultWin), string(league.ResultLoss):
	default:
		return nil, fmt.Errorf("result must be one of win, loss, pending or all")
	}

	state, err := h.store.Load(ctx)
	if err != nil {
		return h.domainError("load pick history", err), nil
	}

	picks := league.FilterPicks(state.Picks, filter)
	data := PickHistoryData{
		Picks: picks,
		Stats: league.Summarize(picks),
		Weeks: league.Weeks(state.Picks),
	}

	return jsonResult(APIResponse{
		Success: true,
		Data:    data,
		Summary: fmt.Sprintf("%d picks: %d wins, %d losses, %d pending",
			data.Stats.TotalPicks, data.Stats.Wins, data.Stats.Losses, data.Stats.Pending),
		Metadata: h.metadata(),
	}), nil
}

// GetPlayerStatsTool returns the MCP tool definition for get_player_stats
func (h *PicksHandler) GetPlayerStatsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_player_stats",
		Description: "Summarise one player's picks with win rate",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player": map[string]interface{}{
					"type":        "string",
					"description": "Roster player",
					"required":    true,
				},
			},
		},
	}
}

// HandleGetPlayerStats handles the get_player_stats tool call
func (h *PicksHandler) HandleGetPlayerStats(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling get_player_stats")

	player, ok := stringArg(args, "player")
	if !ok {
		return nil, fmt.Errorf("player is required and must be a string")
	}

	state, err := h.store.Load(ctx)
	if err != nil {
		return h.domainError("load player stats", err), nil
	}
	if state.PlayerIndex(player) < 0 {
		return h.domainError("load player stats", fmt.Errorf("%w: %s", league.ErrUnknownPlayer, player)), nil
	}

	stats := league.PlayerStats(state.Picks, player)
	return jsonResult(APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"player": player,
			"stats":  stats,
			"picks":  league.PlayerHistory(state.Picks, player),
		},
		Summary:  fmt.Sprintf("%s: %d picks, %.1f%% win rate", player, stats.TotalPicks, stats.WinRate),
		Metadata: h.metadata(),
	}), nil
}

// GetWeekStatsTool returns the MCP tool definition for get_week_stats
func (h *PicksHandler) GetWeekStatsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_week_stats",
		Description: "Summarise every pick made in a week",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"week": map[string]interface{}{
					"type":        "number",
					"description": "NFL week, from 1 up to the league's max_weeks (18 by default)",
					"required":    true,
				},
			},
		},
	}
}

// HandleGetWeekStats handles the get_week_stats tool call
func (h *PicksHandler) HandleGetWeekStats(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling get_week_stats")

	week, present, err := intArg(args, "week")
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, fmt.Errorf("week is required")
	}

	state, err := h.store.Load(ctx)
	if err != nil {
		return h.domainError("load week stats", err), nil
	}

	stats := league.WeekStats(state.Picks, week)
	return jsonResult(APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"week":  week,
			"stats": stats,
			"picks": league.WeekPicks(state.Picks, week),
		},
		Summary:  fmt.Sprintf("Week %d: %d picks, %d wins, %d losses", week, stats.TotalPicks, stats.Wins, stats.Losses),
		Metadata: h.metadata(),
	}), nil
}

// ExportDataTool returns the MCP tool definition for export_data
func (h *PicksHandler) ExportDataTool() mcp.Tool {
	return mcp.Tool{
		Name:        "export_data",
		Description: "Export the season (players, picks, results and current week) as a JSON backup",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// HandleExportData handles the export_data tool call. The backup document is
// returned verbatim so it can be fed back to import_data.
func (h *PicksHandler) HandleExportData(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.Info("Handling export_data")

	state, err := h.store.Load(ctx)
	if err != nil {
		return h.domainError("export data", err), nil
	}
	data, err := league.Export(state, h.now())
	if err != nil {
		return h.domainError("export data", err), nil
	}
	return textResult(string(data), false), nil
}

// ImportDataTool returns the MCP tool definition for import_data
func (h *PicksHandler) ImportDataTool() mcp.Tool {
	return mcp.Tool{
		Name:        "import_data",
		Description: "Replace the season with a JSON backup produced by export_data",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"data": map[string]interface{}{
					"type":        "string",
					"description": "Backup JSON document",
					"required":    true,
				},
			},
		},
	}
}

// HandleImportData handles the import_data tool call
func (h *PicksHandler) HandleImportData(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.Info("Handling import_data")

	raw, ok := stringArg(args, "data")
	if !ok {
		return nil, fmt.Errorf("data is required and must be a string")
	}

	state, err := h.store.Update(ctx, func(s *league.State) error {
		next, err := league.Import(*s, []byte(raw))
		if err != nil {
			return err
		}
		*s = next
		return nil
	})
	if err != nil {
		return h.domainError("import data", err), nil
	}

	return jsonResult(APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"players":      len(state.Players),
			"picks":        len(state.Picks),
			"game_results": len(state.Results),
			"current_week": state.CurrentWeek,
		},
		Summary:  fmt.Sprintf("Imported %d players and %d picks", len(state.Players), len(state.Picks)),
		Metadata: h.metadata(),
	}), nil
}
