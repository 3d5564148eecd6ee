// Package gateway is a small HTTP proxy in front of the odds provider. It keeps
// the provider API key on the server and adds CORS headers for browser clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sam-maryland/around-the-table/internal/config"
)

var allowedEndpoints = map[string]bool{
	"odds":   true,
	"scores": true,
}

// Proxy forwards odds and scores requests upstream
type Proxy struct {
	upstreamURL string
	sport       string
	apiKey      string
	httpClient  *http.Client
	logger      *logrus.Logger
}

// NewProxy creates a proxy for the given gateway settings. A nil httpClient
// gets a client with a 30 second timeout.
func NewProxy(settings config.GatewaySettings, httpClient *http.Client, logger *logrus.Logger) *Proxy {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Proxy{
		upstreamURL: strings.TrimRight(settings.UpstreamURL, "/"),
		sport:       settings.Sport,
		apiKey:      settings.APIKey,
		httpClient:  httpClient,
		logger:      logger,
	}
}

// NewRouter wires the proxy routes
func NewRouter(p *Proxy) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(p.logger), cors())

	for _, path := range []string{"/odds", "/api/odds"} {
		r.GET(path, p.HandleOdds)
		r.OPTIONS(path, func(c *gin.Context) { c.Status(http.StatusOK) })
	}

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	return r
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		c.Next()
	}
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Debug("Gateway request")
	}
}

// HandleOdds proxies GET /odds?endpoint=odds|scores&... to the provider
func (p *Proxy) HandleOdds(c *gin.Context) {
	if p.apiKey == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API key not configured"})
		return
	}

	query := c.Request.URL.Query()
	endpoint := query.Get("endpoint")
	if !allowedEndpoints[endpoint] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endpoint"})
		return
	}
	query.Del("endpoint")

	body, err := p.fetch(c.Request.Context(), endpoint, query)
	if err != nil {
		p.logger.WithError(err).WithField("endpoint", endpoint).Error("API proxy error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch data"})
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (p *Proxy) fetch(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	params.Set("apiKey", p.apiKey)
	target := fmt.Sprintf("%s/sports/%s/%s?%s", p.upstreamURL, p.sport, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("API request failed: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if !jsonLike(body) {
		return nil, errors.New("upstream returned a non-JSON body")
	}
	return body, nil
}

func jsonLike(b []byte) bool {
	s := strings.TrimSpace(string(b))
	return strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{")
}

// Server runs the gateway until Shutdown
type Server struct {
	srv    *http.Server
	logger *logrus.Logger
}

// NewServer creates a gateway HTTP server listening on settings.Addr. Gin's
// own output goes to the logger's writer; stdout may carry the MCP transport.
func NewServer(settings config.GatewaySettings, logger *logrus.Logger) *Server {
	if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logger.Out
	gin.DefaultErrorWriter = logger.Out

	router := NewRouter(NewProxy(settings, nil, logger))
	return &Server{
		srv: &http.Server{
			Addr:              settings.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Run serves until the server is shut down. A clean shutdown returns nil.
func (s *Server) Run() error {
	s.logger.WithField("addr", s.srv.Addr).Info("Odds gateway listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("gateway failed: %w", err)
	}
	return nil
}

// ListenAndServe serves until ctx ends and then shuts down, giving in-flight
// requests five seconds. Listen errors are returned as soon as they happen.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() { errc <- s.Run() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("gateway shutdown failed: %w", err)
		}
		return <-errc
	}
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
