package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/sam-maryland/around-the-table/internal/league"
	"github.com/sam-maryland/around-the-table/internal/standings"
)

// LeagueStore loads and updates the persisted season
type LeagueStore interface {
	Load(ctx context.Context) (league.State, error)
	Update(ctx context.Context, fn func(*league.State) error) (league.State, error)
}

// StandingsHandler serves standings, payouts and season status
type StandingsHandler struct {
	store  LeagueStore
	engine *standings.Engine
	season string
	logger *logrus.Logger
}

// NewStandingsHandler creates a new standings handler
func NewStandingsHandler(store LeagueStore, engine *standings.Engine, season string, logger *logrus.Logger) *StandingsHandler {
	return &StandingsHandler{
		store:  store,
		engine: engine,
		season: season,
		logger: logger,
	}
}

func (h *StandingsHandler) metadata() Metadata {
	return Metadata{
		Timestamp: time.Now(),
		Source:    SourceLeagueStore,
		Season:    h.season,
	}
}

// GetStandingsTool returns the MCP tool definition for get_standings
func (h *StandingsHandler) GetStandingsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_standings",
		Description: "Get the league table: players ranked by net balance in dollars, with wins, losses, games played and win percentage",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// HandleGetStandings handles the get_standings tool call
func (h *StandingsHandler) HandleGetStandings(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.Info("Handling get_standings")

	state, err := h.store.Load(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load league state")
		return errorResult("Failed to load standings: %s", err.Error()), nil
	}

	view := h.engine.ComputeStandings(state.Players)

	summary := fmt.Sprintf("Week %d standings for %d players, $%d in play", view.Summary.CurrentWeek, view.Summary.TotalPlayers, view.Summary.TotalMoney)
	if view.Summary.Leader != "" {
		summary += fmt.Sprintf(", %s leads at +$%d", view.Summary.Leader, view.Rows[0].NetBalance)
	}

	return jsonResult(APIResponse{
		Success:  true,
		Data:     view,
		Summary:  summary,
		Metadata: h.metadata(),
	}), nil
}

// GetPayoutMatrixTool returns the MCP tool definition for get_payout_matrix
func (h *StandingsHandler) GetPayoutMatrixTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_payout_matrix",
		Description: "Get who owes whom: for each debtor and creditor pair, the amount the debtor pays if the season ended now",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// PayoutData is the get_payout_matrix payload
type PayoutData struct {
	Matrix   standings.Matrix `json:"matrix"`
	Table    [][]string       `json:"table"`
	Payments []PaymentEntry   `json:"payments"`
}

// PaymentEntry is one outstanding debtor to creditor payment
type PaymentEntry struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

// HandleGetPayoutMatrix handles the get_payout_matrix tool call
func (h *StandingsHandler) HandleGetPayoutMatrix(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.Info("Handling get_payout_matrix")

	state, err := h.store.Load(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load league state")
		return errorResult("Failed to load payouts: %s", err.Error()), nil
	}

	matrix := h.engine.ComputePayouts(state.Players)
	data := PayoutData{
		Matrix:   matrix,
		Table:    matrix.Rows(),
		Payments: []PaymentEntry{},
	}
	for _, row := range matrix.Cells {
		for _, cell := range row {
			if cell.Owes() {
				data.Payments = append(data.Payments, PaymentEntry{
					From:   cell.Debtor,
					To:     cell.Creditor,
					Amount: cell.String(),
				})
			}
		}
	}

	return jsonResult(APIResponse{
		Success:  true,
		Data:     data,
		Summary:  fmt.Sprintf("%d payments outstanding between %d players", len(data.Payments), len(matrix.Players)),
		Metadata: h.metadata(),
	}), nil
}

// GetSeasonStatusTool returns the MCP tool definition for get_season_status
func (h *StandingsHandler) GetSeasonStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_season_status",
		Description: "Get whether the season is complete and, if so, the champion",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// SeasonData is the get_season_status payload
type SeasonData struct {
	standings.SeasonStatus
	SeasonLength int    `json:"season_length"`
	Headline     string `json:"headline,omitempty"`
}

// HandleGetSeasonStatus handles the get_season_status tool call
func (h *StandingsHandler) HandleGetSeasonStatus(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.Info("Handling get_season_status")

	state, err := h.store.Load(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load league state")
		return errorResult("Failed to load season status: %s", err.Error()), nil
	}

	status := h.engine.EvaluateSeason(state.Players)
	data := SeasonData{
		SeasonStatus: status,
		SeasonLength: h.engine.Rules().SeasonLength,
		Headline:     status.Headline(h.engine.Rules().League, h.season),
	}

	var summary string
	switch {
	case data.Headline != "":
		summary = data.Headline
	case status.Complete:
		summary = "Season complete with no champion"
	default:
		summary = fmt.Sprintf("Season in progress, %d of %d games played", status.GamesPlayed, data.SeasonLength)
	}

	return jsonResult(APIResponse{
		Success:  true,
		Data:     data,
		Summary:  summary,
		Metadata: h.metadata(),
	}), nil
}
