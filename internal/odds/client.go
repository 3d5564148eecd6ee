package odds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultGatewayURL = "http://localhost:8080"
	DefaultTimeout    = 10 * time.Second
)

// Gateway endpoint names
const (
	EndpointOdds   = "odds"
	EndpointScores = "scores"
)

// Client defines the interface for reading odds and scores through the gateway
type Client interface {
	GetOdds(ctx context.Context, params OddsParams) ([]Event, error)
	GetScores(ctx context.Context, daysFrom int) ([]ScoreEvent, error)
}

// OddsParams are passed through to the provider's odds endpoint
type OddsParams struct {
	Regions    string
	Markets    string
	OddsFormat string
	DateFormat string
}

func (p OddsParams) values() url.Values {
	v := url.Values{}
	if p.Regions != "" {
		v.Set("regions", p.Regions)
	}
	if p.Markets != "" {
		v.Set("markets", p.Markets)
	}
	if p.OddsFormat != "" {
		v.Set("oddsFormat", p.OddsFormat)
	}
	if p.DateFormat != "" {
		v.Set("dateFormat", p.DateFormat)
	}
	return v
}

// HTTPClient implements the Client interface using HTTP requests
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewHTTPClient creates a new HTTP client for the odds gateway
func NewHTTPClient(baseURL string, timeout time.Duration, logger *logrus.Logger) Client {
	if baseURL == "" {
		baseURL = DefaultGatewayURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// makeRequest performs a GET against the gateway for the given endpoint
func (c *HTTPClient) makeRequest(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("endpoint", endpoint)
	reqURL := fmt.Sprintf("%s/odds?%s", c.baseURL, params.Encode())

	c.logger.WithField("url", reqURL).Debug("Making gateway request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).Error("HTTP request failed")
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.WithError(err).Error("Failed to read response body")
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"response":    string(body),
		}).Error("Gateway request failed")

		return &APIError{
			Type:       "api_error",
			Message:    fmt.Sprintf("API request failed with status %d: %s", resp.StatusCode, gatewayMessage(body)),
			StatusCode: resp.StatusCode,
		}
	}

	if err := json.Unmarshal(body, result); err != nil {
		c.logger.WithError(err).WithField("body", string(body)).Error("Failed to unmarshal response")
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	c.logger.Debug("Gateway request completed successfully")
	return nil
}

// gatewayMessage extracts {"error": "..."} from a gateway error body
func gatewayMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return string(body)
}

// GetOdds retrieves upcoming games with bookmaker lines
func (c *HTTPClient) GetOdds(ctx context.Context, params OddsParams) ([]Event, error) {
	var events []Event

	if err := c.makeRequest(ctx, EndpointOdds, params.values(), &events); err != nil {
		return nil, fmt.Errorf("failed to get odds: %w", err)
	}

	return events, nil
}

// GetScores retrieves live and completed games from the last daysFrom days
func (c *HTTPClient) GetScores(ctx context.Context, daysFrom int) ([]ScoreEvent, error) {
	params := url.Values{}
	if daysFrom > 0 {
		params.Set("daysFrom", strconv.Itoa(daysFrom))
	}

	var scores []ScoreEvent
	if err := c.makeRequest(ctx, EndpointScores, params, &scores); err != nil {
		return nil, fmt.Errorf("failed to get scores for the last %d days: %w", daysFrom, err)
	}

	return scores, nil
}

// Completed filters score events down to finished games
func Completed(events []ScoreEvent) []ScoreEvent {
	var done []ScoreEvent
	for _, e := range events {
		if e.Completed {
			done = append(done, e)
		}
	}
	return done
}
