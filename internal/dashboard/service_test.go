package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/brandsignal/attribution-dashboard/internal/models"
	"github.com/brandsignal/attribution-dashboard/internal/notifications"
	"github.com/brandsignal/attribution-dashboard/internal/state"
	"github.com/brandsignal/attribution-dashboard/internal/storage"
	"github.com/stretchr/testify/assert"
)

// memStore is an in-memory storage backend for tests
type memStore struct {
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Store(key string, data []byte) error {
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *memStore) Retrieve(key string) ([]byte, error) {
	d, ok := m.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return d, nil
}

func (m *memStore) List(prefix string) ([]string, error) {
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *memStore) Delete(key string) error {
	delete(m.data, key)
	return nil
}

// recordingNotifier captures notifications for assertions
type recordingNotifier struct {
	levels   []notifications.Level
	messages []string
}

func (r *recordingNotifier) Notify(level notifications.Level, message string) {
	r.levels = append(r.levels, level)
	r.messages = append(r.messages, message)
}

// fakeSource is a controllable data source
type fakeSource struct {
	name     string
	connKey  string
	fetchErr error
	testErr  error
	fetched  int32
}

func (f *fakeSource) Name() string          { return f.name }
func (f *fakeSource) ConnectionKey() string { return f.connKey }

func (f *fakeSource) TestConnection(ctx context.Context, apiKey string) error {
	return f.testErr
}

func (f *fakeSource) Fetch(ctx context.Context) error {
	atomic.AddInt32(&f.fetched, 1)
	return f.fetchErr
}

func (f *fakeSource) fetchCount() int {
	return int(atomic.LoadInt32(&f.fetched))
}

func newTestService(t *testing.T, srcs ...*fakeSource) (*Service, *state.Store, *recordingNotifier) {
	t.Helper()
	store := state.NewStore(newMemStore(), "test-state.json", nil)
	notifier := &recordingNotifier{}
	svc := &Service{
		store:    store,
		notifier: notifier,
	}
	for _, src := range srcs {
		svc.sources = append(svc.sources, src)
	}
	return svc, store, notifier
}

func TestService_RefreshAll_SkipsDisconnectedSources(t *testing.T) {
	connected := &fakeSource{name: "exa_search", connKey: models.ConnExaSearch}
	disconnected := &fakeSource{name: "scrape_creators", connKey: models.ConnScrapeCreators}

	svc, store, _ := newTestService(t, connected, disconnected)
	store.SetConnectionStatus(models.ConnExaSearch, models.StatusConnected)

	err := svc.RefreshAll(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, connected.fetchCount())
	assert.Equal(t, 0, disconnected.fetchCount())
}

func TestService_RefreshAll_OneFailureDoesNotBlockOthers(t *testing.T) {
	failing := &fakeSource{name: "exa_search", connKey: models.ConnExaSearch, fetchErr: errors.New("api down")}
	healthy := &fakeSource{name: "scrape_creators", connKey: models.ConnScrapeCreators}
	alsoHealthy := &fakeSource{name: "google_search_console", connKey: models.ConnGoogleSearchConsole}

	svc, store, notifier := newTestService(t, failing, healthy, alsoHealthy)
	for _, key := range []string{models.ConnExaSearch, models.ConnScrapeCreators, models.ConnGoogleSearchConsole} {
		store.SetConnectionStatus(key, models.StatusConnected)
	}

	err := svc.RefreshAll(context.Background())

	assert.Error(t, err)
	assert.Equal(t, 1, healthy.fetchCount(), "healthy sources still fetch")
	assert.Equal(t, 1, alsoHealthy.fetchCount())
	assert.Contains(t, notifier.levels, notifications.LevelWarning)
}

func TestService_RefreshAll_AllHealthy(t *testing.T) {
	a := &fakeSource{name: "exa_search", connKey: models.ConnExaSearch}
	b := &fakeSource{name: "scrape_creators", connKey: models.ConnScrapeCreators}

	svc, store, notifier := newTestService(t, a, b)
	store.SetConnectionStatus(models.ConnExaSearch, models.StatusConnected)
	store.SetConnectionStatus(models.ConnScrapeCreators, models.StatusConnected)

	err := svc.RefreshAll(context.Background())

	assert.NoError(t, err)
	assert.Contains(t, notifier.messages, "All connected sources refreshed")
}

func TestService_TestConnection(t *testing.T) {
	tests := []struct {
		name           string
		apiKey         string
		testErr        error
		expectErr      bool
		expectedStatus models.ConnectionStatus
	}{
		{
			name:           "Successful test connects",
			apiKey:         "valid-key",
			expectedStatus: models.StatusConnected,
		},
		{
			name:           "Failed test marks error",
			apiKey:         "bad-key",
			testErr:        errors.New("401 unauthorized"),
			expectErr:      true,
			expectedStatus: models.StatusError,
		},
		{
			name:           "Empty key rejected before any transition",
			apiKey:         "",
			expectErr:      true,
			expectedStatus: models.StatusDisconnected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{name: "exa_search", connKey: models.ConnExaSearch, testErr: tt.testErr}
			svc, store, _ := newTestService(t, src)

			err := svc.TestConnection(context.Background(), models.ConnExaSearch, tt.apiKey)

			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 1, src.fetchCount(), "initial fetch follows a successful test")
			}
			assert.Equal(t, tt.expectedStatus, store.ConnectionStatus(models.ConnExaSearch))
		})
	}
}

func TestService_TestConnection_UnknownKey(t *testing.T) {
	svc, _, _ := newTestService(t)
	err := svc.TestConnection(context.Background(), "noSuchSource", "key")
	assert.Error(t, err)
}

func TestService_Summary(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.SetBrand(models.BrandConfig{Name: "BrandX"})
	store.UpdateFeed(func(lf *models.LiveFeed) {
		lf.Mentions = []models.Mention{
			{ID: "a", Sentiment: models.SentimentPositive, Source: models.SourceExaSearch},
			{ID: "b", Sentiment: models.SentimentNegative, Source: models.SourceExaSearch},
			{ID: "c", Sentiment: models.SentimentNeutral, Source: models.SourceSample},
		}
	})

	summary := svc.Summary()

	assert.Equal(t, "BrandX", summary.Brand)
	assert.Equal(t, 3, summary.FeedStats.Total)
	assert.Equal(t, 1, summary.FeedStats.Positive)
	assert.Equal(t, 2, summary.Sources[models.SourceExaSearch])
	assert.Equal(t, 1, summary.Sources[models.SourceSample])
	assert.Equal(t, 3, summary.Campaigns, "default campaigns counted")
}
