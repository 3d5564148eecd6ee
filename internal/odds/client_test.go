package odds

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
)

const sampleOdds = `[
	{
		"id": "evt1",
		"sport_key": "americanfootball_nfl",
		"commence_time": "2025-09-07T17:00:00Z",
		"home_team": "Pittsburgh Steelers",
		"away_team": "New York Jets",
		"bookmakers": [
			{
				"key": "draftkings",
				"title": "DraftKings",
				"markets": [
					{"key": "h2h", "outcomes": [
						{"name": "New York Jets", "price": 120},
						{"name": "Pittsburgh Steelers", "price": -142}
					]},
					{"key": "spreads", "outcomes": [
						{"name": "New York Jets", "price": -110, "point": 2.5},
						{"name": "Pittsburgh Steelers", "price": -110, "point": -2.5}
					]}
				]
			}
		]
	}
]`

const sampleScores = `[
	{
		"id": "evt1",
		"sport_key": "americanfootball_nfl",
		"commence_time": "2025-09-07T17:00:00Z",
		"completed": true,
		"home_team": "Pittsburgh Steelers",
		"away_team": "New York Jets",
		"scores": [
			{"name": "Pittsburgh Steelers", "score": "34"},
			{"name": "New York Jets", "score": 32}
		]
	},
	{
		"id": "evt2",
		"sport_key": "americanfootball_nfl",
		"commence_time": "2025-09-07T20:25:00Z",
		"completed": false,
		"home_team": "Denver Broncos",
		"away_team": "Tennessee Titans",
		"scores": null
	}
]`

func newTestClient(url string) *HTTPClient {
	logger, _ := test.NewNullLogger()
	return &HTTPClient{
		baseURL:    url,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

func TestHTTPClient_GetOdds(t *testing.T) {
	tests := []struct {
		name           string
		serverResponse string
		serverStatus   int
		wantError      bool
		wantEvents     int
	}{
		{
			name:           "successful request",
			serverStatus:   http.StatusOK,
			serverResponse: sampleOdds,
			wantEvents:     1,
		},
		{
			name:           "invalid endpoint",
			serverStatus:   http.StatusBadRequest,
			serverResponse: `{"error": "Invalid endpoint"}`,
			wantError:      true,
		},
		{
			name:           "gateway missing key",
			serverStatus:   http.StatusInternalServerError,
			serverResponse: `{"error": "API key not configured"}`,
			wantError:      true,
		},
		{
			name:           "malformed body",
			serverStatus:   http.StatusOK,
			serverResponse: `{"not": "a list"}`,
			wantError:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/odds" {
					t.Errorf("Expected path /odds, got %s", r.URL.Path)
				}
				q := r.URL.Query()
				if q.Get("endpoint") != "odds" {
					t.Errorf("Expected endpoint=odds, got %s", q.Get("endpoint"))
				}
				if q.Get("regions") != "us" || q.Get("markets") != "spreads,h2h" || q.Get("oddsFormat") != "american" {
					t.Errorf("Expected pass-through params, got %s", r.URL.RawQuery)
				}
				w.WriteHeader(tt.serverStatus)
				w.Write([]byte(tt.serverResponse))
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			events, err := client.GetOdds(context.Background(), OddsParams{
				Regions:    "us",
				Markets:    "spreads,h2h",
				OddsFormat: "american",
			})

			if tt.wantError && err == nil {
				t.Error("Expected error but got none")
			}
			if !tt.wantError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if len(events) != tt.wantEvents {
				t.Errorf("Expected %d events, got %d", tt.wantEvents, len(events))
			}
		})
	}
}

func TestHTTPClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to fetch data"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetScores(context.Background(), 3)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "API request failed with status 500: Failed to fetch data" {
		t.Errorf("Unexpected message: %s", apiErr.Message)
	}
}

func TestHTTPClient_GetScores(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("endpoint") != "scores" {
			t.Errorf("Expected endpoint=scores, got %s", q.Get("endpoint"))
		}
		if q.Get("daysFrom") != "3" {
			t.Errorf("Expected daysFrom=3, got %s", q.Get("daysFrom"))
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(sampleScores))
	}))
	defer server.Close()

	scores, err := newTestClient(server.URL).GetScores(context.Background(), 3)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("Expected 2 score events, got %d", len(scores))
	}

	done := Completed(scores)
	if len(done) != 1 || done[0].ID != "evt1" {
		t.Fatalf("Expected only evt1 to be completed, got %+v", done)
	}

	home, ok := done[0].ScoreFor("Pittsburgh Steelers")
	if !ok || home != "34" {
		t.Errorf("Expected home score 34, got %q", home)
	}
	away, ok := done[0].ScoreFor("New York Jets")
	if !ok {
		t.Fatal("Expected away score")
	}
	if n, err := away.Int(); err != nil || n != 32 {
		t.Errorf("Expected numeric away score 32, got %d (%v)", n, err)
	}
	if len(scores[1].Scores) != 0 {
		t.Errorf("Expected null scores to decode empty, got %+v", scores[1].Scores)
	}
}

func TestHTTPClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestClient(server.URL).GetOdds(ctx, OddsParams{}); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestNewHTTPClient_Defaults(t *testing.T) {
	logger, _ := test.NewNullLogger()
	c := NewHTTPClient("http://gateway.local/", 0, logger).(*HTTPClient)

	if c.baseURL != "http://gateway.local" {
		t.Errorf("Expected trailing slash trimmed, got %s", c.baseURL)
	}
	if c.httpClient.Timeout != DefaultTimeout {
		t.Errorf("Expected default timeout, got %v", c.httpClient.Timeout)
	}
}
