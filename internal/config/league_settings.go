package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so settings files can say "30m"
type Duration struct {
	time.Duration
}

// UnmarshalJSON accepts a duration string or a number of seconds
func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return d.set(raw)
}

// UnmarshalYAML accepts a duration string or a number of seconds
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw interface{}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	return d.set(raw)
}

// MarshalJSON writes the duration as a string
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) set(raw interface{}) error {
	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		d.Duration = parsed
	case float64:
		d.Duration = time.Duration(v * float64(time.Second))
	case int:
		d.Duration = time.Duration(v) * time.Second
	default:
		return fmt.Errorf("invalid duration %v", raw)
	}
	return nil
}

// LeagueSettings represents the configuration for the league and its services
type LeagueSettings struct {
	Name         string   `json:"name" yaml:"name"`
	Season       string   `json:"season" yaml:"season"`
	Namespace    string   `json:"namespace" yaml:"namespace"`
	Roster       []string `json:"roster" yaml:"roster"`
	Stake        int      `json:"stake" yaml:"stake"`
	SeasonLength int      `json:"season_length" yaml:"season_length"`
	MaxWeeks     int      `json:"max_weeks" yaml:"max_weeks"`
	SeasonStart  string   `json:"season_start" yaml:"season_start"`
	// Timezone is the IANA zone game dates are read in, e.g. America/New_York
	Timezone     string   `json:"timezone" yaml:"timezone"`
	DataPath     string   `json:"data_path" yaml:"data_path"`
	LogLevel     string   `json:"log_level" yaml:"log_level"`

	Odds      OddsSettings      `json:"odds" yaml:"odds"`
	Gateway   GatewaySettings   `json:"gateway" yaml:"gateway"`
	AutoCheck AutoCheckSettings `json:"auto_check" yaml:"auto_check"`
}

// OddsSettings configures the client that reads odds and scores through the gateway
type OddsSettings struct {
	GatewayURL     string   `json:"gateway_url" yaml:"gateway_url"`
	Regions        string   `json:"regions" yaml:"regions"`
	Markets        string   `json:"markets" yaml:"markets"`
	OddsFormat     string   `json:"odds_format" yaml:"odds_format"`
	DateFormat     string   `json:"date_format" yaml:"date_format"`
	ScoresDaysFrom int      `json:"scores_days_from" yaml:"scores_days_from"`
	CacheTTL       Duration `json:"cache_ttl" yaml:"cache_ttl"`
	Timeout        Duration `json:"timeout" yaml:"timeout"`
}

// GatewaySettings configures the HTTP proxy in front of the odds provider
type GatewaySettings struct {
	Addr        string `json:"addr" yaml:"addr"`
	UpstreamURL string `json:"upstream_url" yaml:"upstream_url"`
	Sport       string `json:"sport" yaml:"sport"`
	// APIKey is never read from the settings file; it comes from the environment
	APIKey string `json:"-" yaml:"-"`
}

// AutoCheckSettings configures periodic result checking
type AutoCheckSettings struct {
	Enabled  bool     `json:"enabled" yaml:"enabled"`
	Interval Duration `json:"interval" yaml:"interval"`
}

// DefaultSettings returns the settings used when no file is present
func DefaultSettings() *LeagueSettings {
	return &LeagueSettings{
		Name:         "Around the Table",
		Season:       "2025",
		Roster:       []string{"Corey", "Jerry", "Larry", "Ramiz", "Bruno"},
		Stake:        5,
		SeasonLength: 17,
		MaxWeeks:     18,
		SeasonStart:  "2025-09-04",
		Timezone:     "America/New_York",
		DataPath:     "data/league.db",
		LogLevel:     "info",
		Odds: OddsSettings{
			GatewayURL:     "http://localhost:8080",
			Regions:        "us",
			Markets:        "spreads,h2h",
			OddsFormat:     "american",
			DateFormat:     "iso",
			ScoresDaysFrom: 3,
			CacheTTL:       Duration{30 * time.Minute},
			Timeout:        Duration{10 * time.Second},
		},
		Gateway: GatewaySettings{
			Addr:        ":8080",
			UpstreamURL: "https://api.the-odds-api.com/v4",
			Sport:       "americanfootball_nfl",
		},
		AutoCheck: AutoCheckSettings{
			Enabled:  false,
			Interval: Duration{30 * time.Minute},
		},
	}
}

var settingsPaths = []string{
	"configs/league_settings.json",
	"configs/league_settings.yaml",
	"configs/league_settings.yml",
	"../configs/league_settings.json",
	"../configs/league_settings.yaml",
	"../../configs/league_settings.json",
	"../../configs/league_settings.yaml",
}

// LoadLeagueSettings loads league settings from path, or from the first
// settings file found relative to the working directory when path is empty.
// Values missing from the file keep their defaults; environment overrides
// are applied last.
func LoadLeagueSettings(path string) (*LeagueSettings, error) {
	settings := DefaultSettings()

	candidates := settingsPaths
	if path != "" {
		candidates = []string{path}
	}

	var foundPath string
	var data []byte
	for _, p := range candidates {
		b, err := os.ReadFile(p)
		if err == nil {
			foundPath = p
			data = b
			break
		}
		if path != "" {
			return nil, fmt.Errorf("failed to read league settings from %s: %w", p, err)
		}
	}

	if foundPath != "" {
		if err := decode(foundPath, data, settings); err != nil {
			return nil, fmt.Errorf("failed to parse league settings from %s: %w", foundPath, err)
		}
	}

	settings.applyEnv()
	settings.fillDefaults()

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func decode(path string, data []byte, out *LeagueSettings) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, out)
	default:
		return json.Unmarshal(data, out)
	}
}

func (s *LeagueSettings) applyEnv() {
	if key := os.Getenv("ODDS_API_KEY"); key != "" {
		s.Gateway.APIKey = key
	} else if key := os.Getenv("VITE_ODDS_API_KEY"); key != "" {
		s.Gateway.APIKey = key
	}
	if v := os.Getenv("ATT_DATA_PATH"); v != "" {
		s.DataPath = v
	}
	if v := os.Getenv("ATT_GATEWAY_URL"); v != "" {
		s.Odds.GatewayURL = v
	}
	if v := os.Getenv("ATT_LOG_LEVEL"); v != "" {
		s.LogLevel = v
	}
}

func (s *LeagueSettings) fillDefaults() {
	d := DefaultSettings()
	if s.Name == "" {
		s.Name = d.Name
	}
	if s.Timezone == "" {
		s.Timezone = d.Timezone
	}
	if s.Namespace == "" {
		s.Namespace = "att_" + s.Season
	}
	if s.MaxWeeks <= 0 {
		s.MaxWeeks = d.MaxWeeks
	}
	if s.Odds.CacheTTL.Duration <= 0 {
		s.Odds.CacheTTL = d.Odds.CacheTTL
	}
	if s.Odds.Timeout.Duration <= 0 {
		s.Odds.Timeout = d.Odds.Timeout
	}
	if s.AutoCheck.Interval.Duration <= 0 {
		s.AutoCheck.Interval = d.AutoCheck.Interval
	}
}

// Validate checks that the settings describe a playable league
func (s *LeagueSettings) Validate() error {
	if len(s.Roster) == 0 {
		return errors.New("roster must list at least one player")
	}
	seen := make(map[string]bool, len(s.Roster))
	for _, name := range s.Roster {
		if strings.TrimSpace(name) == "" {
			return errors.New("roster contains an empty name")
		}
		if seen[name] {
			return fmt.Errorf("roster lists %s more than once", name)
		}
		seen[name] = true
	}
	if s.Stake <= 0 {
		return fmt.Errorf("stake must be positive, got %d", s.Stake)
	}
	if s.SeasonLength <= 0 || s.SeasonLength > s.MaxWeeks {
		return fmt.Errorf("season_length must be between 1 and %d, got %d", s.MaxWeeks, s.SeasonLength)
	}
	if _, err := s.SeasonStartDate(); err != nil {
		return err
	}
	if _, err := s.Location(); err != nil {
		return err
	}
	return nil
}

// Location loads the league time zone
func (s *LeagueSettings) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// SeasonStartDate parses the configured first day of the season
func (s *LeagueSettings) SeasonStartDate() (time.Time, error) {
	t, err := time.Parse("2006-01-02", s.SeasonStart)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid season_start %q: %w", s.SeasonStart, err)
	}
	return t, nil
}
