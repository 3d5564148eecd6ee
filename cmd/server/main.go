package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sam-maryland/around-the-table/internal/config"
)

// Version is reported to MCP clients
var Version = "1.0.0"

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "around-the-table",
	Short: "Around the Table NFL underdog pick league",
	Long: `Around the Table tracks a weekly NFL underdog pick league: picks, results,
standings, the who-owes-whom payout matrix and the season champion.

By default it serves the league as MCP tools over stdio.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "League settings file (default: configs/league_settings.{json,yaml})")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	serveCmd.Flags().BoolVar(&withGateway, "with-gateway", false, "Also run the odds gateway in this process")
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())

	standingsCmd.Flags().BoolVar(&showPayouts, "payouts", false, "Print the payout matrix instead of the table")

	rootCmd.AddCommand(serveCmd, gatewayCmd, standingsCmd, checkCmd)
}

// newLogger writes JSON logs to stderr so stdout stays free for the MCP transport
func newLogger(level string) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLevel(lvl)
	return logger, nil
}

// setup loads settings and builds the logger shared by every command
func setup() (*config.LeagueSettings, *logrus.Logger, error) {
	settings, err := config.LoadLeagueSettings(configPath)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		settings.LogLevel = logLevel
	}

	logger, err := newLogger(settings.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return settings, logger, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
