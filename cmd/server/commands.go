package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sam-maryland/around-the-table/internal/config"
	"github.com/sam-maryland/around-the-table/internal/gateway"
	"github.com/sam-maryland/around-the-table/internal/handlers"
	"github.com/sam-maryland/around-the-table/internal/mcp"
	"github.com/sam-maryland/around-the-table/internal/odds"
	"github.com/sam-maryland/around-the-table/internal/results"
	"github.com/sam-maryland/around-the-table/internal/standings"
	"github.com/sam-maryland/around-the-table/internal/store"
)

var (
	withGateway bool
	showPayouts bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the league as MCP tools over stdio",
	RunE:  runServe,
}

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Run the odds gateway that proxies the odds provider",
	Long: `Runs the HTTP proxy in front of the odds provider. The provider key is read
from ODDS_API_KEY (or VITE_ODDS_API_KEY) and never leaves the server.`,
	RunE: runGateway,
}

var standingsCmd = &cobra.Command{
	Use:   "standings",
	Short: "Print the current standings",
	RunE:  runStandings,
}

var checkCmd = &cobra.Command{
	Use:   "check-results",
	Short: "Settle pending picks from completed games once and exit",
	RunE:  runCheck,
}

// app holds the wired league services
type app struct {
	settings *config.LeagueSettings
	store    *store.Store
	engine   *standings.Engine
	odds     *odds.Service
	checker  *results.Checker
	logger   *logrus.Logger
}

func newApp(settings *config.LeagueSettings, logger *logrus.Logger) (*app, error) {
	seasonStart, err := settings.SeasonStartDate()
	if err != nil {
		return nil, err
	}

	loc, err := settings.Location()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(settings.DataPath, settings.Namespace, settings.Roster, logger)
	if err != nil {
		return nil, err
	}
	st.SetMaxWeeks(settings.MaxWeeks)

	client := odds.NewHTTPClient(settings.Odds.GatewayURL, settings.Odds.Timeout.Duration, logger)
	svc := odds.NewService(client, st, odds.ServiceConfig{
		Params: odds.OddsParams{
			Regions:    settings.Odds.Regions,
			Markets:    settings.Odds.Markets,
			OddsFormat: settings.Odds.OddsFormat,
			DateFormat: settings.Odds.DateFormat,
		},
		SeasonStart: seasonStart,
		TTL:         settings.Odds.CacheTTL.Duration,
		CacheKey:    store.KeyOddsCache,
	}, logger)

	return &app{
		settings: settings,
		store:    st,
		engine: standings.NewEngine(standings.Rules{
			League:       settings.Name,
			Stake:        settings.Stake,
			SeasonLength: settings.SeasonLength,
		}),
		odds:    svc,
		checker: results.NewChecker(st, client, settings.Odds.ScoresDaysFrom, loc, logger),
		logger:  logger,
	}, nil
}

func (a *app) handlers() mcp.Handlers {
	season := a.settings.Season
	return mcp.Handlers{
		Standings: handlers.NewStandingsHandler(a.store, a.engine, season, a.logger),
		Picks:     handlers.NewPicksHandler(a.store, season, a.logger),
		Odds:      handlers.NewOddsHandler(a.odds, a.checker, season, a.logger),
	}
}

func (a *app) Close() error {
	return a.store.Close()
}

func runServe(cmd *cobra.Command, args []string) error {
	settings, logger, err := setup()
	if err != nil {
		return err
	}

	a, err := newApp(settings, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	mcpServer := mcp.NewLeagueMCPServer(a.handlers(), Version, logger)
	if mcpServer == nil {
		return fmt.Errorf("failed to create MCP server")
	}

	var services []func(context.Context) error
	if withGateway {
		services = append(services, gateway.NewServer(settings.Gateway, logger).ListenAndServe)
	}
	if settings.AutoCheck.Enabled {
		services = append(services, func(ctx context.Context) error {
			return a.checker.Run(ctx, settings.AutoCheck.Interval.Duration)
		})
	}

	logger.WithField("season", settings.Season).Info("Starting Around the Table MCP Server...")
	return runServices(cmd.Context(), logger, func() error {
		// the stdio transport ends when stdin closes or on SIGINT/SIGTERM
		if err := server.ServeStdio(mcpServer); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}, services...)
}

// runServices runs serve next to the background services. When serve returns
// the services are cancelled and awaited. serve blocks on stdin and cannot be
// cancelled, so a failing service ends the run without waiting for it.
func runServices(ctx context.Context, logger *logrus.Logger, serve func() error, services ...func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	for _, svc := range services {
		g.Go(func() error {
			if err := svc(gctx); err != nil {
				logger.WithError(err).Error("Background service failed, stopping server")
				return err
			}
			return nil
		})
	}

	served := make(chan error, 1)
	go func() { served <- serve() }()

	select {
	case err := <-served:
		cancel()
		if werr := g.Wait(); err == nil {
			err = werr
		}
		return err
	case <-gctx.Done():
		return g.Wait()
	}
}

func runGateway(cmd *cobra.Command, args []string) error {
	settings, logger, err := setup()
	if err != nil {
		return err
	}
	if settings.Gateway.APIKey == "" {
		logger.Warn("ODDS_API_KEY is not set, every odds request will fail")
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	return gateway.NewServer(settings.Gateway, logger).ListenAndServe(ctx)
}

func runStandings(cmd *cobra.Command, args []string) error {
	settings, logger, err := setup()
	if err != nil {
		return err
	}
	a, err := newApp(settings, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	state, err := a.store.Load(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if showPayouts {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, row := range a.engine.ComputePayouts(state.Players).Rows() {
			for i, cell := range row {
				if i > 0 {
					fmt.Fprint(w, "\t")
				}
				fmt.Fprint(w, cell)
			}
			fmt.Fprintln(w)
		}
		return w.Flush()
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Standings standings.StandingsView `json:"standings"`
		Payouts   [][]string              `json:"payouts"`
		Season    standings.SeasonStatus  `json:"season"`
	}{
		Standings: a.engine.ComputeStandings(state.Players),
		Payouts:   a.engine.ComputePayouts(state.Players).Rows(),
		Season:    a.engine.EvaluateSeason(state.Players),
	})
}

func runCheck(cmd *cobra.Command, args []string) error {
	settings, logger, err := setup()
	if err != nil {
		return err
	}
	a, err := newApp(settings, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.checker.Check(cmd.Context(), time.Now())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
