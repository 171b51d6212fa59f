package sources

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/brandsignal/attribution-dashboard/internal/models"
	"github.com/stretchr/testify/assert"
)

// fakeSignals records signal writes and reports a fixed connection status
type fakeSignals struct {
	status  models.ConnectionStatus
	signals map[string]float64
}

func newFakeSignals(status models.ConnectionStatus) *fakeSignals {
	return &fakeSignals{status: status, signals: make(map[string]float64)}
}

func (f *fakeSignals) SetSignal(name string, value float64) error {
	f.signals[name] = value
	return nil
}

func (f *fakeSignals) ConnectionStatus(name string) models.ConnectionStatus {
	return f.status
}

// fakeIngestor collects ingested mentions
type fakeIngestor struct {
	ingested []models.Mention
}

func (f *fakeIngestor) Ingest(mentions []models.Mention) {
	f.ingested = append(f.ingested, mentions...)
}

func TestSearchConsoleSource_SkipsWhenNotConnected(t *testing.T) {
	signals := newFakeSignals(models.StatusDisconnected)
	source := NewSearchConsoleSource(nil, signals, nil, 30)

	err := source.Fetch(context.Background())

	assert.NoError(t, err)
	assert.Empty(t, signals.signals, "no signal writes without a connection")
}

func TestSearchConsoleSource_FetchOverwritesSignal(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/fetch-gsc-data", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "success", "data": {"branded_search_volume": 3100}}`))
	})
	defer server.Close()

	signals := newFakeSignals(models.StatusConnected)
	source := NewSearchConsoleSource(client, signals, nil, 30)

	assert.NoError(t, source.Fetch(context.Background()))
	assert.Equal(t, float64(3100), signals.signals["brandedSearchVolume"])

	// A repeat fetch overwrites rather than accumulates.
	assert.NoError(t, source.Fetch(context.Background()))
	assert.Equal(t, float64(3100), signals.signals["brandedSearchVolume"])
}

func TestSearchConsoleSource_MockFallbackOnFailure(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer server.Close()

	signals := newFakeSignals(models.StatusConnected)
	source := NewSearchConsoleSource(client, signals, nil, 30)

	assert.NoError(t, source.Fetch(context.Background()))

	value, ok := signals.signals["brandedSearchVolume"]
	assert.True(t, ok, "failed fetch substitutes a mock value")
	assert.GreaterOrEqual(t, value, float64(2000))
	assert.Less(t, value, float64(3000))
}

func TestSocialSource_FetchFeedsSignalAndFeed(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/fetch-social-mentions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "success",
			"data": [
				{"id": "s1", "platform": "twitter", "content": "mention one"},
				{"id": "s2", "platform": "reddit", "content": "mention two"}
			]
		}`))
	})
	defer server.Close()

	signals := newFakeSignals(models.StatusConnected)
	ingestor := &fakeIngestor{}
	source := NewSocialSource(client, signals, ingestor, nil, 30)

	assert.NoError(t, source.Fetch(context.Background()))

	assert.Equal(t, float64(2), signals.signals["communityEngagement"])
	assert.Len(t, ingestor.ingested, 2)
	for _, m := range ingestor.ingested {
		assert.Equal(t, models.SourceScrapeCreators, m.Source)
	}
}

func TestSocialSource_NoMockFallback(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer server.Close()

	signals := newFakeSignals(models.StatusConnected)
	ingestor := &fakeIngestor{}
	source := NewSocialSource(client, signals, ingestor, nil, 30)

	assert.Error(t, source.Fetch(context.Background()))
	assert.Empty(t, signals.signals)
	assert.Empty(t, ingestor.ingested)
}

func TestWebSearchSource_ForcesWebPlatform(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/fetch-web-mentions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "success",
			"data": [{"id": "w1", "platform": "twitter", "content": "an article", "domain": "news.example.com"}]
		}`))
	})
	defer server.Close()

	signals := newFakeSignals(models.StatusConnected)
	ingestor := &fakeIngestor{}
	source := NewWebSearchSource(client, signals, ingestor, nil, 30)

	assert.NoError(t, source.Fetch(context.Background()))

	assert.Len(t, ingestor.ingested, 1)
	assert.Equal(t, models.PlatformWeb, ingestor.ingested[0].Platform)
	assert.Equal(t, models.SourceExaSearch, ingestor.ingested[0].Source)
}

func TestSourceIdentity(t *testing.T) {
	tests := []struct {
		name    string
		source  Source
		connKey string
	}{
		{name: "google_search_console", source: NewSearchConsoleSource(nil, nil, nil, 30), connKey: models.ConnGoogleSearchConsole},
		{name: "google_analytics", source: NewAnalyticsSource(nil, nil, nil, 30), connKey: models.ConnGoogleAnalytics},
		{name: "google_analytics_ga4", source: NewGA4Source(nil, nil, nil, 30), connKey: models.ConnGoogleAnalyticsGA4},
		{name: "scrape_creators", source: NewSocialSource(nil, nil, nil, nil, 30), connKey: models.ConnScrapeCreators},
		{name: "exa_search", source: NewWebSearchSource(nil, nil, nil, nil, 30), connKey: models.ConnExaSearch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.source.Name())
			assert.Equal(t, tt.connKey, tt.source.ConnectionKey())
		})
	}
}

func TestGenerateSampleMentions(t *testing.T) {
	mentions := GenerateSampleMentions("BrandX", 25)

	assert.Len(t, mentions, 25)

	seen := make(map[string]bool)
	oldest := time.Now().Add(-7*24*time.Hour - time.Minute)
	for i, m := range mentions {
		assert.False(t, seen[m.ID], "sample ids must be unique")
		seen[m.ID] = true
		assert.Equal(t, models.SourceSample, m.Source)
		assert.NotContains(t, m.Content, "{brand}")
		assert.True(t, m.Timestamp.After(oldest))
		if i > 0 {
			assert.False(t, m.Timestamp.After(mentions[i-1].Timestamp),
				"samples are sorted newest first")
		}
	}
}

func TestGenerateSampleMentions_DefaultBrand(t *testing.T) {
	for _, m := range GenerateSampleMentions("", 10) {
		assert.Contains(t, m.Content, "YourBrand")
	}
}
