package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/sam-maryland/around-the-table/internal/handlers"
)

// ServerName is reported to MCP clients
const ServerName = "Around the Table"

// Handlers groups the tool handlers served over MCP
type Handlers struct {
	Standings *handlers.StandingsHandler
	Picks     *handlers.PicksHandler
	Odds      *handlers.OddsHandler
}

type toolFunc func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error)

type route struct {
	tool   mcp.Tool
	handle toolFunc
}

func (h Handlers) routes() []route {
	return []route{
		{h.Standings.GetStandingsTool(), h.Standings.HandleGetStandings},
		{h.Standings.GetPayoutMatrixTool(), h.Standings.HandleGetPayoutMatrix},
		{h.Standings.GetSeasonStatusTool(), h.Standings.HandleGetSeasonStatus},
		{h.Picks.AddPickTool(), h.Picks.HandleAddPick},
		{h.Picks.RecordResultTool(), h.Picks.HandleRecordResult},
		{h.Picks.UpdatePlayerStatsTool(), h.Picks.HandleUpdatePlayerStats},
		{h.Picks.GetPickHistoryTool(), h.Picks.HandleGetPickHistory},
		{h.Picks.GetPlayerStatsTool(), h.Picks.HandleGetPlayerStats},
		{h.Picks.GetWeekStatsTool(), h.Picks.HandleGetWeekStats},
		{h.Picks.ExportDataTool(), h.Picks.HandleExportData},
		{h.Picks.ImportDataTool(), h.Picks.HandleImportData},
		{h.Odds.GetOddsTool(), h.Odds.HandleGetOdds},
		{h.Odds.GetUnderdogsTool(), h.Odds.HandleGetUnderdogs},
		{h.Odds.CheckResultsTool(), h.Odds.HandleCheckResults},
	}
}

// NewLeagueMCPServer registers every league tool on a new MCP server
func NewLeagueMCPServer(h Handlers, version string, logger *logrus.Logger) *server.DefaultServer {
	s := server.NewDefaultServer(ServerName, version)

	if s == nil {
		logger.Error("Failed to create MCP server instance")
		return nil
	}

	logger.Info("MCP server instance created successfully")

	routes := h.routes()
	tools := make([]mcp.Tool, 0, len(routes))
	byName := make(map[string]toolFunc, len(routes))
	for _, r := range routes {
		tools = append(tools, r.tool)
		byName[r.tool.Name] = r.handle
	}

	s.HandleListTools(func(ctx context.Context, cursor *string) (*mcp.ListToolsResult, error) {
		logger.WithField("tools_count", len(tools)).Info("Listing available tools")

		return &mcp.ListToolsResult{
			Tools: tools,
		}, nil
	})

	s.HandleCallTool(func(ctx context.Context, name string, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
		logger.WithFields(logrus.Fields{
			"tool": name,
			"args": arguments,
		}).Info("Tool called")

		handle, ok := byName[name]
		if !ok {
			logger.WithField("tool", name).Warn("Unknown tool called")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					&mcp.TextContent{
						Type: "text",
						Text: "Unknown tool: " + name,
					},
				},
				IsError: true,
			}, nil
		}
		if arguments == nil {
			arguments = map[string]interface{}{}
		}
		return handle(ctx, arguments)
	})

	logger.WithField("tools_count", len(tools)).Info("All tools registered successfully")
	return s
}
