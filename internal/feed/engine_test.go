package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/brandsignal/attribution-dashboard/internal/models"
	"github.com/brandsignal/attribution-dashboard/internal/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBackend is a mock implementation of the backend API client
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) FetchMentions(ctx context.Context, daysBack int, platform string) (*sources.MentionsResult, error) {
	args := m.Called(ctx, daysBack, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sources.MentionsResult), args.Error(1)
}

func (m *MockBackend) RefreshMentions(ctx context.Context, daysBack int, platform string) (*sources.MentionsResult, error) {
	args := m.Called(ctx, daysBack, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sources.MentionsResult), args.Error(1)
}

// fakeStore is an in-memory stand-in for the state store
type fakeStore struct {
	mu     sync.Mutex
	feed   models.LiveFeed
	active bool
}

func (s *fakeStore) Mentions() []models.Mention {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feed.Mentions
}

func (s *fakeStore) UpdateFeed(mutate func(*models.LiveFeed)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mutate(&s.feed)
	s.feed.LastUpdate = time.Now()
}

func (s *fakeStore) FeedActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *fakeStore) SetFeedActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *fakeStore) Snapshot() models.DashboardState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.DashboardState{LiveFeed: s.feed}
}

func apiMentions(t *testing.T, ids ...string) []models.APIMention {
	t.Helper()
	mentions := make([]models.APIMention, 0, len(ids))
	for _, id := range ids {
		payload := fmt.Sprintf(`{"id":%q,"platform":"twitter","content":"mention %s","sentiment":"neutral","author":"tester"}`, id, id)
		var m models.APIMention
		if err := json.Unmarshal([]byte(payload), &m); err != nil {
			t.Fatalf("building api mention: %v", err)
		}
		mentions = append(mentions, m)
	}
	return mentions
}

func newTestEngine(store *fakeStore, backend *MockBackend) *Engine {
	return NewEngine(store, backend, nil, "BrandX", 30, time.Minute)
}

func TestEngine_Initialize_LoadsCachedMentions(t *testing.T) {
	store := &fakeStore{}
	backend := &MockBackend{}
	backend.On("FetchMentions", mock.Anything, 30, "all").Return(
		&sources.MentionsResult{Mentions: apiMentions(t, "a", "b"), Source: "cache"}, nil)

	engine := newTestEngine(store, backend)
	engine.Initialize(context.Background())

	assert.Equal(t, StatusPopulated, engine.Status())
	assert.Len(t, store.Mentions(), 2)
	backend.AssertNotCalled(t, "RefreshMentions", mock.Anything, mock.Anything, mock.Anything)
}

func TestEngine_Initialize_KeepsIDLessMentionsDistinct(t *testing.T) {
	store := &fakeStore{}
	backend := &MockBackend{}
	raw := make([]models.APIMention, 0, 3)
	for i := 0; i < 3; i++ {
		payload := fmt.Sprintf(`{"platform":"reddit","content":"no id %d","author":"tester"}`, i)
		var m models.APIMention
		if err := json.Unmarshal([]byte(payload), &m); err != nil {
			t.Fatalf("building api mention: %v", err)
		}
		raw = append(raw, m)
	}
	backend.On("FetchMentions", mock.Anything, 30, "all").Return(
		&sources.MentionsResult{Mentions: raw, Source: "cache"}, nil)

	engine := newTestEngine(store, backend)
	engine.Initialize(context.Background())

	mentions := store.Mentions()
	assert.Len(t, mentions, 3)
	ids := make(map[string]bool)
	for _, m := range mentions {
		ids[m.ID] = true
	}
	assert.Len(t, ids, 3)
}

func TestEngine_Initialize_ForcesRefreshWhenCacheEmpty(t *testing.T) {
	store := &fakeStore{}
	backend := &MockBackend{}
	backend.On("FetchMentions", mock.Anything, 30, "all").Return(
		&sources.MentionsResult{Source: "empty"}, nil)
	backend.On("RefreshMentions", mock.Anything, 30, "all").Return(
		&sources.MentionsResult{Mentions: apiMentions(t, "fresh"), Source: "live_api"}, nil)

	engine := newTestEngine(store, backend)
	engine.Initialize(context.Background())

	assert.Equal(t, StatusPopulated, engine.Status())
	assert.Len(t, store.Mentions(), 1)
	backend.AssertExpectations(t)
}

func TestEngine_Initialize_SeedsSamplesWhenEverythingFails(t *testing.T) {
	store := &fakeStore{}
	backend := &MockBackend{}
	backend.On("FetchMentions", mock.Anything, 30, "all").Return(nil, errors.New("backend down"))

	engine := newTestEngine(store, backend)
	engine.Initialize(context.Background())

	assert.Equal(t, StatusPopulated, engine.Status())
	assert.Len(t, store.Mentions(), sampleFallbackCount)
	for _, m := range store.Mentions() {
		assert.Equal(t, models.SourceSample, m.Source)
	}
}

func TestEngine_Refresh_ReplacesCollectionOnSuccess(t *testing.T) {
	store := &fakeStore{}
	store.feed.Mentions = []models.Mention{mentionAt("stale", time.Now().Add(-time.Hour))}
	backend := &MockBackend{}
	backend.On("RefreshMentions", mock.Anything, 30, "all").Return(
		&sources.MentionsResult{Mentions: apiMentions(t, "new1", "new2"), Source: "live_api"}, nil)

	engine := newTestEngine(store, backend)
	engine.Refresh(context.Background())

	assert.Equal(t, StatusPopulated, engine.Status())
	mentions := store.Mentions()
	assert.Len(t, mentions, 2)
	for _, m := range mentions {
		assert.NotEqual(t, "stale", m.ID)
	}
}

func TestEngine_Refresh_AppendsSamplesOnFailure(t *testing.T) {
	store := &fakeStore{}
	existing := mentionAt("keeper", time.Now().Add(-time.Hour))
	store.feed.Mentions = []models.Mention{existing}
	backend := &MockBackend{}
	backend.On("RefreshMentions", mock.Anything, 30, "all").Return(nil, errors.New("network error"))

	engine := newTestEngine(store, backend)
	engine.Refresh(context.Background())

	assert.Equal(t, StatusFailed, engine.Status())
	mentions := store.Mentions()
	assert.Len(t, mentions, 1+refreshFallbackCount, "existing mentions survive a failed refresh")

	var kept bool
	for _, m := range mentions {
		if m.ID == "keeper" {
			kept = true
		}
	}
	assert.True(t, kept)
}

func TestEngine_Ingest_MergesAndDeduplicates(t *testing.T) {
	store := &fakeStore{}
	base := time.Now()
	store.feed.Mentions = []models.Mention{mentionAt("a", base)}

	engine := newTestEngine(store, &MockBackend{})
	engine.Ingest([]models.Mention{mentionAt("a", base), mentionAt("b", base.Add(time.Second))})

	assert.Len(t, store.Mentions(), 2)
	assert.Equal(t, StatusPopulated, engine.Status())
}

func TestEngine_Start_SingleInstance(t *testing.T) {
	store := &fakeStore{active: true}
	backend := &MockBackend{}
	engine := newTestEngine(store, backend)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine.Start(ctx)
	engine.Start(ctx)
	engine.Stop()
	engine.Stop()
}

func TestEngine_SetActive_TogglesFlagAndLoop(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(store, &MockBackend{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine.SetActive(ctx, true)
	assert.True(t, store.FeedActive())

	engine.SetActive(ctx, false)
	assert.False(t, store.FeedActive())
}

func TestEngine_Filtered_AppliesPersistedFilters(t *testing.T) {
	store := &fakeStore{}
	base := time.Now()
	twitter := mentionAt("t", base)
	reddit := mentionAt("r", base.Add(-time.Second))
	reddit.Platform = models.PlatformReddit
	store.feed.Mentions = []models.Mention{twitter, reddit}
	store.feed.Filters = models.FeedFilters{Platform: models.PlatformReddit}

	engine := newTestEngine(store, &MockBackend{})

	filtered := engine.Filtered()
	assert.Len(t, filtered, 1)
	assert.Equal(t, "r", filtered[0].ID)

	stats := engine.FilteredStats()
	assert.Equal(t, 1, stats.Total)
}
