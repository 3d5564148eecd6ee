package handlers

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// APIResponse represents the standard response format for our tools
type APIResponse struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data,omitempty"`
	Summary  string      `json:"summary"`
	Error    string      `json:"error,omitempty"`
	Metadata Metadata    `json:"metadata"`
}

// Metadata contains response metadata
type Metadata struct {
	Timestamp    time.Time `json:"timestamp"`
	Source       string    `json:"source"`
	CacheHit     bool      `json:"cache_hit"`
	APICallsUsed int       `json:"api_calls_used"`
	Season       string    `json:"season,omitempty"`
}

// Response sources
const (
	SourceLeagueStore = "league_store"
	SourceOddsGateway = "odds_gateway"
)

// formatJSONResponse converts a response struct to a formatted JSON string
func formatJSONResponse(response interface{}) (string, error) {
	jsonBytes, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal response: %w", err)
	}

	return string(jsonBytes), nil
}

// textResult wraps text as a tool result
func textResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Type: "text",
				Text: text,
			},
		},
		IsError: isError,
	}
}

// errorResult reports a failed operation to the caller
func errorResult(format string, a ...interface{}) *mcp.CallToolResult {
	return textResult(fmt.Sprintf(format, a...), true)
}

// jsonResult renders a response envelope
func jsonResult(response APIResponse) *mcp.CallToolResult {
	jsonResponse, err := formatJSONResponse(response)
	if err != nil {
		return errorResult("Error formatting response: %s", err.Error())
	}
	return textResult(jsonResponse, false)
}

// stringArg returns a trimmed string argument
func stringArg(args map[string]interface{}, key string) (string, bool) {
	v, ok := args[key].(string)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// intArg accepts numbers (which arrive as float64) and numeric strings
func intArg(args map[string]interface{}, key string) (int, bool, error) {
	raw, present := args[key]
	if !present || raw == nil {
		return 0, false, nil
	}
	switch v := raw.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, true, fmt.Errorf("%s must be a whole number", key)
		}
		return int(v), true, nil
	case int:
		return v, true, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, true, fmt.Errorf("%s must be a number", key)
		}
		return n, true, nil
	default:
		return 0, true, fmt.Errorf("%s must be a number", key)
	}
}

// boolArg returns a boolean argument or def when absent
func boolArg(args map[string]interface{}, key string, def bool) (bool, error) {
	raw, present := args[key]
	if !present || raw == nil {
		return def, nil
	}
	v, ok := raw.(bool)
	if !ok {
		return def, fmt.Errorf("%s must be a boolean", key)
	}
	return v, nil
}
