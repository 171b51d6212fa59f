package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/brandsignal/attribution-dashboard/internal/metrics"
	"github.com/brandsignal/attribution-dashboard/internal/models"
	"github.com/brandsignal/attribution-dashboard/internal/notifications"
	"github.com/brandsignal/attribution-dashboard/internal/sources"
	"github.com/sirupsen/logrus"
)

// Status of the live feed engine.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusPopulated Status = "populated"
	StatusEmpty     Status = "empty"
	StatusFailed    Status = "failed"
)

// sampleFallbackCount is how many synthetic mentions seed a feed that could
// not be loaded from anywhere.
const sampleFallbackCount = 25

// refreshFallbackCount is how many synthetic mentions are appended when a
// manual refresh fails, instead of wiping what's already there.
const refreshFallbackCount = 3

// StateStore is the slice of the state store the engine drives.
type StateStore interface {
	Mentions() []models.Mention
	UpdateFeed(mutate func(*models.LiveFeed))
	FeedActive() bool
	SetFeedActive(active bool)
	Snapshot() models.DashboardState
}

// Backend is the slice of the API client the engine calls.
type Backend interface {
	FetchMentions(ctx context.Context, daysBack int, platform string) (*sources.MentionsResult, error)
	RefreshMentions(ctx context.Context, daysBack int, platform string) (*sources.MentionsResult, error)
}

// Ensure the real client satisfies the contract
var _ Backend = (*sources.Client)(nil)

// Engine owns the unified mention collection: it keeps it deduplicated,
// time-ordered and fresh via a polling loop, and serves the filtered
// read-side projections.
type Engine struct {
	store    StateStore
	backend  Backend
	notifier notifications.Notifier
	brand    string
	daysBack int
	interval time.Duration

	mu      sync.Mutex
	status  Status
	stop    chan struct{}
	running bool
}

// NewEngine creates a live feed engine. Start begins polling.
func NewEngine(store StateStore, backend Backend, notifier notifications.Notifier, brand string, daysBack int, interval time.Duration) *Engine {
	if notifier == nil {
		notifier = notifications.Nop{}
	}
	return &Engine{
		store:    store,
		backend:  backend,
		notifier: notifier,
		brand:    brand,
		daysBack: daysBack,
		interval: interval,
		status:   StatusIdle,
	}
}

// Status reports the engine's current lifecycle state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

func (e *Engine) setStatus(s Status) {
	e.mu.Lock()
	e.status = s
	e.mu.Unlock()
}

// statusFor derives Populated/Empty from the collection size.
func (e *Engine) statusFor(count int) Status {
	if count == 0 {
		return StatusEmpty
	}
	return StatusPopulated
}

// Initialize loads the feed on startup: cached mentions first, a one-time
// forced refresh when the cache is empty, synthetic samples when everything
// fails. Every path ends with the collection written through the store, so
// render and stats always run.
func (e *Engine) Initialize(ctx context.Context) {
	e.setStatus(StatusLoading)
	e.notifier.Notify(notifications.LevelInfo, "Loading live feed data...")

	result, err := e.backend.FetchMentions(ctx, e.daysBack, "all")
	if err == nil && result.Source == "empty" {
		logrus.Info("No cached mentions, forcing a live refresh")
		e.notifier.Notify(notifications.LevelInfo, "Fetching fresh data from social media APIs...")
		result, err = e.backend.RefreshMentions(ctx, e.daysBack, "all")
	}

	if err != nil {
		logrus.Warnf("Live feed initialization failed, seeding sample data: %v", err)
		e.notifier.Notify(notifications.LevelWarning,
			"Unable to load live data, showing sample data. Check API configuration.")
		samples := sources.GenerateSampleMentions(e.brand, sampleFallbackCount)
		e.store.UpdateFeed(func(lf *models.LiveFeed) {
			lf.Mentions = Replace(samples)
		})
		e.setStatus(StatusPopulated)
		return
	}

	mentions := normalizeAll(result.Mentions, models.SourceAPI)
	e.store.UpdateFeed(func(lf *models.LiveFeed) {
		lf.Mentions = Replace(mentions)
	})
	e.setStatus(e.statusFor(len(mentions)))

	switch result.Source {
	case "live_api":
		e.notifier.Notify(notifications.LevelSuccess,
			fmt.Sprintf("Loaded %d fresh mentions from APIs", len(mentions)))
	case "cache":
		e.notifier.Notify(notifications.LevelInfo,
			fmt.Sprintf("Loaded %d cached mentions", len(mentions)))
	}
}

// Refresh forces a live fetch bypassing the backend cache. Success replaces
// the collection wholesale; failure appends a few freshly stamped samples so
// a transient outage degrades instead of wiping the feed.
func (e *Engine) Refresh(ctx context.Context) {
	e.setStatus(StatusLoading)
	e.notifier.Notify(notifications.LevelInfo, "Refreshing feed...")

	result, err := e.backend.RefreshMentions(ctx, e.daysBack, "all")
	if err != nil {
		logrus.Errorf("Feed refresh failed, appending sample data: %v", err)
		samples := sources.GenerateSampleMentions(e.brand, refreshFallbackCount)
		now := time.Now()
		for i := range samples {
			samples[i].Timestamp = now
		}
		e.store.UpdateFeed(func(lf *models.LiveFeed) {
			lf.Mentions = Insert(lf.Mentions, samples...)
		})
		e.setStatus(StatusFailed)
		e.notifier.Notify(notifications.LevelWarning,
			"API refresh failed, showing sample data. Check your API keys in settings.")
		return
	}

	mentions := normalizeAll(result.Mentions, models.SourceAPI)
	e.store.UpdateFeed(func(lf *models.LiveFeed) {
		lf.Mentions = Replace(mentions)
	})
	e.setStatus(e.statusFor(len(mentions)))
	e.notifier.Notify(notifications.LevelSuccess,
		fmt.Sprintf("Feed refreshed with %d fresh mentions from APIs", len(mentions)))
}

// Ingest merges mentions produced by a data source into the collection.
// Satisfies sources.MentionIngestor.
func (e *Engine) Ingest(mentions []models.Mention) {
	if len(mentions) == 0 {
		return
	}
	var accepted int
	e.store.UpdateFeed(func(lf *models.LiveFeed) {
		before := len(lf.Mentions)
		lf.Mentions = Insert(lf.Mentions, mentions...)
		accepted = len(lf.Mentions) - before
	})
	if accepted > 0 {
		metrics.MentionsIngested.Add(float64(accepted))
	}
	e.setStatus(e.statusFor(len(e.store.Mentions())))
}

// poll is the low-weight periodic refresh: it merges the backend's cached
// mentions rather than forcing an upstream pull, and stays quiet on failure.
func (e *Engine) poll(ctx context.Context) {
	if !e.store.FeedActive() {
		return
	}
	metrics.PollCycles.Inc()

	result, err := e.backend.FetchMentions(ctx, e.daysBack, "all")
	if err != nil {
		logrus.Debugf("Feed poll failed: %v", err)
		return
	}
	e.Ingest(normalizeAll(result.Mentions, models.SourceAPI))
}

// Start launches the polling loop. At most one loop is ever live; calling
// Start on a running engine is a no-op.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.stop = make(chan struct{})
	stop := e.stop
	e.mu.Unlock()

	go func() {
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()
		logrus.Infof("Live feed polling started (every %v)", e.interval)
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				e.poll(ctx)
			}
		}
	}()
}

// Stop halts the polling loop. Idempotent.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return
	}
	e.running = false
	close(e.stop)
	logrus.Info("Live feed polling stopped")
}

// SetActive toggles the feed flag, persists it, and ties the polling loop's
// lifecycle to it.
func (e *Engine) SetActive(ctx context.Context, active bool) {
	e.store.SetFeedActive(active)
	if active {
		e.Start(ctx)
		e.notifier.Notify(notifications.LevelSuccess, "Live feed resumed")
	} else {
		e.Stop()
		e.notifier.Notify(notifications.LevelInfo, "Live feed paused")
	}
}

// Filtered returns the current collection projected through the persisted
// filters.
func (e *Engine) Filtered() []models.Mention {
	snapshot := e.store.Snapshot()
	return Filter(snapshot.LiveFeed.Mentions, snapshot.LiveFeed.Filters)
}

// FilteredStats computes sentiment counts over the filtered set, not the
// truncated display set.
func (e *Engine) FilteredStats() models.FeedStats {
	return Stats(e.Filtered())
}

func normalizeAll(raw []models.APIMention, source string) []models.Mention {
	now := time.Now()
	mentions := make([]models.Mention, 0, len(raw))
	for _, m := range raw {
		mentions = append(mentions, m.Normalize(source, now))
	}
	return mentions
}
