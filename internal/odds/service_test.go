package odds

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
)

type fakeClient struct {
	events []Event
	err    error
	calls  int
}

func (f *fakeClient) GetOdds(ctx context.Context, params OddsParams) ([]Event, error) {
	f.calls++
	return f.events, f.err
}

func (f *fakeClient) GetScores(ctx context.Context, daysFrom int) ([]ScoreEvent, error) {
	return nil, errors.New("not implemented")
}

type memCache struct {
	data map[string][]byte
}

func (m *memCache) GetJSON(ctx context.Context, key string, out interface{}) error {
	b, ok := m.data[key]
	if !ok {
		return errors.New("key not found")
	}
	return json.Unmarshal(b, out)
}

func (m *memCache) PutJSON(ctx context.Context, key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = b
	return nil
}

func newTestService(client Client, cache CacheStore, now *time.Time) *Service {
	logger, _ := test.NewNullLogger()
	s := NewService(client, cache, ServiceConfig{SeasonStart: seasonStart}, logger)
	s.now = func() time.Time { return *now }
	return s
}

func sampleEvents(t *testing.T) []Event {
	t.Helper()
	var events []Event
	if err := json.Unmarshal([]byte(sampleOdds), &events); err != nil {
		t.Fatalf("Failed to decode sample: %v", err)
	}
	return events
}

func TestService_CachesForTTL(t *testing.T) {
	now := time.Date(2025, 9, 5, 12, 0, 0, 0, time.UTC)
	client := &fakeClient{events: sampleEvents(t)}
	cache := &memCache{data: map[string][]byte{}}
	svc := newTestService(client, cache, &now)
	ctx := context.Background()

	snap, err := svc.Games(ctx, false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if snap.Cached || len(snap.Games) != 1 {
		t.Fatalf("Expected a fresh snapshot with 1 game, got %+v", snap)
	}

	now = now.Add(29 * time.Minute)
	snap, err = svc.Games(ctx, false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !snap.Cached || client.calls != 1 {
		t.Errorf("Expected cached snapshot within TTL, calls=%d", client.calls)
	}

	if _, err := svc.Games(ctx, true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if client.calls != 2 {
		t.Errorf("Expected force to refetch, calls=%d", client.calls)
	}

	now = now.Add(31 * time.Minute)
	if _, err := svc.Games(ctx, false); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if client.calls != 3 {
		t.Errorf("Expected expiry to refetch, calls=%d", client.calls)
	}
}

func TestService_LoadsPersistedCache(t *testing.T) {
	now := time.Date(2025, 9, 5, 12, 0, 0, 0, time.UTC)
	cache := &memCache{data: map[string][]byte{}}
	first := newTestService(&fakeClient{events: sampleEvents(t)}, cache, &now)
	if _, err := first.Games(context.Background(), false); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	now = now.Add(10 * time.Minute)
	client := &fakeClient{}
	second := newTestService(client, cache, &now)
	snap, err := second.Games(context.Background(), false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if client.calls != 0 || len(snap.Games) != 1 {
		t.Errorf("Expected persisted snapshot to be served, calls=%d games=%d", client.calls, len(snap.Games))
	}
}

func TestService_FailureKeepsPreviousGames(t *testing.T) {
	now := time.Date(2025, 9, 5, 12, 0, 0, 0, time.UTC)
	client := &fakeClient{events: sampleEvents(t)}
	svc := newTestService(client, nil, &now)
	ctx := context.Background()

	if _, err := svc.Games(ctx, false); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	client.err = &APIError{Message: "API request failed with status 500", StatusCode: 500}
	now = now.Add(time.Hour)
	snap, err := svc.Games(ctx, false)
	if err == nil {
		t.Fatal("Expected error from failed refresh")
	}
	if !snap.Stale || len(snap.Games) != 1 {
		t.Errorf("Expected stale previous games, got %+v", snap)
	}
}

func TestService_FailureWithoutCache(t *testing.T) {
	now := time.Date(2025, 9, 5, 12, 0, 0, 0, time.UTC)
	svc := newTestService(&fakeClient{err: errors.New("gateway down")}, nil, &now)

	_, wk, err := svc.UnderdogsForWeek(context.Background(), 0)
	if err == nil {
		t.Fatal("Expected error without any odds")
	}
	if wk != 1 {
		t.Errorf("Expected current week 1, got %d", wk)
	}
}

func TestService_UnderdogsForWeek(t *testing.T) {
	now := time.Date(2025, 9, 5, 12, 0, 0, 0, time.UTC)
	svc := newTestService(&fakeClient{events: sampleEvents(t)}, nil, &now)

	dogs, wk, err := svc.UnderdogsForWeek(context.Background(), 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if wk != 1 {
		t.Errorf("Expected week 1, got %d", wk)
	}
	if len(dogs) != 1 || dogs[0].Team != "New York Jets" {
		t.Errorf("Expected the Jets, got %+v", dogs)
	}
}
