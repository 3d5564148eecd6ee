package odds

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultCacheTTL is how long fetched odds are served before refetching
const DefaultCacheTTL = 30 * time.Minute

// CacheStore persists the odds snapshot between runs
type CacheStore interface {
	GetJSON(ctx context.Context, key string, out interface{}) error
	PutJSON(ctx context.Context, key string, v interface{}) error
}

// Snapshot is the set of processed games from one fetch
type Snapshot struct {
	Games       []Game    `json:"games"`
	LastUpdated time.Time `json:"last_updated"`
	// Stale is set when the snapshot is older than the TTL and a refresh failed
	Stale bool `json:"stale,omitempty"`
	// Cached is set when the snapshot was served without contacting the gateway
	Cached bool `json:"cached,omitempty"`
}

// Service serves processed games, caching them for the TTL
type Service struct {
	client      Client
	cache       CacheStore
	cacheKey    string
	params      OddsParams
	seasonStart time.Time
	ttl         time.Duration
	logger      *logrus.Logger
	now         func() time.Time

	mu       sync.Mutex
	snapshot *Snapshot
}

// ServiceConfig configures a Service
type ServiceConfig struct {
	Params      OddsParams
	SeasonStart time.Time
	TTL         time.Duration
	CacheKey    string
}

// NewService creates an odds service. cache may be nil to keep the snapshot in memory only.
func NewService(client Client, cache CacheStore, cfg ServiceConfig, logger *logrus.Logger) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultCacheTTL
	}
	if cfg.CacheKey == "" {
		cfg.CacheKey = "odds_cache"
	}
	return &Service{
		client:      client,
		cache:       cache,
		cacheKey:    cfg.CacheKey,
		params:      cfg.Params,
		seasonStart: cfg.SeasonStart,
		ttl:         cfg.TTL,
		logger:      logger,
		now:         time.Now,
	}
}

// SeasonStart returns the first day of the season used for week bucketing
func (s *Service) SeasonStart() time.Time {
	return s.seasonStart
}

// Games returns the current snapshot. A snapshot younger than the TTL is
// served from cache unless force is set. When the gateway fails the previous
// snapshot is returned, marked stale, together with the error.
func (s *Service) Games(ctx context.Context, force bool) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.loadSnapshot(ctx)
	now := s.now()

	if !force && prev != nil && now.Sub(prev.LastUpdated) < s.ttl {
		snap := *prev
		snap.Cached = true
		return snap, nil
	}

	events, err := s.client.GetOdds(ctx, s.params)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to refresh odds, keeping previous games")
		if prev == nil {
			return Snapshot{Games: []Game{}, Stale: true}, err
		}
		snap := *prev
		snap.Stale = true
		return snap, err
	}

	snap := Snapshot{
		Games:       ProcessEvents(events, s.seasonStart),
		LastUpdated: now,
	}
	s.snapshot = &snap

	if s.cache != nil {
		if err := s.cache.PutJSON(ctx, s.cacheKey, snap); err != nil {
			s.logger.WithError(err).Warn("Failed to persist odds cache")
		}
	}

	s.logger.WithField("games", len(snap.Games)).Info("Refreshed odds")
	return snap, nil
}

// loadSnapshot returns the in-memory snapshot, falling back to the persisted one
func (s *Service) loadSnapshot(ctx context.Context) *Snapshot {
	if s.snapshot != nil {
		return s.snapshot
	}
	if s.cache == nil {
		return nil
	}

	var snap Snapshot
	if err := s.cache.GetJSON(ctx, s.cacheKey, &snap); err != nil {
		s.logger.WithError(err).Debug("No usable odds cache")
		return nil
	}
	snap.Stale = false
	snap.Cached = false
	s.snapshot = &snap
	return s.snapshot
}

// UnderdogsForWeek returns the eligible underdogs for a week, or the current week when wk is 0
func (s *Service) UnderdogsForWeek(ctx context.Context, wk int) ([]Underdog, int, error) {
	snap, err := s.Games(ctx, false)
	if wk == 0 {
		wk = CurrentWeek(s.now(), s.seasonStart)
	}
	if err != nil && len(snap.Games) == 0 {
		return nil, wk, fmt.Errorf("no odds available: %w", err)
	}
	return Underdogs(snap.Games, wk), wk, err
}
