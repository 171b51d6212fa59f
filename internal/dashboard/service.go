package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/brandsignal/attribution-dashboard/internal/config"
	"github.com/brandsignal/attribution-dashboard/internal/feed"
	"github.com/brandsignal/attribution-dashboard/internal/metrics"
	"github.com/brandsignal/attribution-dashboard/internal/models"
	"github.com/brandsignal/attribution-dashboard/internal/notifications"
	"github.com/brandsignal/attribution-dashboard/internal/sources"
	"github.com/brandsignal/attribution-dashboard/internal/state"
	"github.com/brandsignal/attribution-dashboard/internal/storage"
	"github.com/sirupsen/logrus"
)

// BackupVersion tags exported state envelopes.
const BackupVersion = "1.0"

// Service orchestrates the dashboard core: it owns the data sources, runs
// refresh-all fan-outs, and fronts the state store's actions with user
// notifications.
type Service struct {
	config   *config.Config
	store    *state.Store
	feed     *feed.Engine
	client   *sources.Client
	notifier notifications.Notifier
	reporter notifications.Reporter
	sources  []sources.Source

	backupStore storage.Interface
}

// UseBackupStorage mirrors every backup envelope to the given store, typically
// Azure blob storage. Mirroring is best effort.
func (s *Service) UseBackupStorage(st storage.Interface) {
	s.backupStore = st
}

// NewService creates the orchestration service and wires up the data sources.
func NewService(cfg *config.Config, store *state.Store, feedEngine *feed.Engine, client *sources.Client, notifier notifications.Notifier, reporter notifications.Reporter) *Service {
	s := &Service{
		config:   cfg,
		store:    store,
		feed:     feedEngine,
		client:   client,
		notifier: notifier,
		reporter: reporter,
	}
	s.initializeSources()
	return s
}

func (s *Service) initializeSources() {
	s.sources = []sources.Source{
		sources.NewSearchConsoleSource(s.client, s.store, s.notifier, s.config.DaysBack),
		sources.NewAnalyticsSource(s.client, s.store, s.notifier, s.config.DaysBack),
		sources.NewGA4Source(s.client, s.store, s.notifier, s.config.DaysBack),
		sources.NewSocialSource(s.client, s.store, s.feed, s.notifier, s.config.DaysBack),
		sources.NewWebSearchSource(s.client, s.store, s.feed, s.notifier, s.config.DaysBack),
	}
}

// Sources returns the configured data sources.
func (s *Service) Sources() []sources.Source {
	return s.sources
}

// RefreshAll fires every connected source's fetch concurrently and waits for
// all to settle. One source's failure never blocks another's update: each
// fetch applies its own results to state as it completes.
func (s *Service) RefreshAll(ctx context.Context) error {
	start := time.Now()
	logrus.Info("Starting refresh of all connected sources")

	var wg sync.WaitGroup
	errorsChan := make(chan error, len(s.sources))

	for _, source := range s.sources {
		wg.Add(1)
		go func(src sources.Source) {
			defer wg.Done()

			if s.store.ConnectionStatus(src.ConnectionKey()) != models.StatusConnected {
				logrus.Debugf("Skipping %s: not connected", src.Name())
				return
			}

			metrics.FetchTotal.WithLabelValues(src.Name()).Inc()
			if err := src.Fetch(ctx); err != nil {
				metrics.FetchFailures.WithLabelValues(src.Name()).Inc()
				logrus.Errorf("Error fetching from %s: %v", src.Name(), err)
				errorsChan <- fmt.Errorf("%s: %w", src.Name(), err)
			}
		}(source)
	}

	wg.Wait()
	close(errorsChan)

	errorCount := 0
	for range errorsChan {
		errorCount++
	}

	logrus.Infof("Refresh completed in %v (%d source errors)", time.Since(start), errorCount)

	if errorCount > 0 {
		s.notifier.Notify(notifications.LevelWarning,
			fmt.Sprintf("Refresh finished with %d source failures", errorCount))
		return fmt.Errorf("refresh completed with %d source errors", errorCount)
	}
	s.notifier.Notify(notifications.LevelSuccess, "All connected sources refreshed")
	return nil
}

// TestConnection runs a credential test for the source bound to connKey and
// transitions its status disconnected -> testing -> connected|error. On
// success the source's initial fetch runs immediately.
func (s *Service) TestConnection(ctx context.Context, connKey, apiKey string) error {
	if apiKey == "" {
		s.notifier.Notify(notifications.LevelError, "Please enter an API key")
		return fmt.Errorf("api key is required")
	}

	var src sources.Source
	for _, candidate := range s.sources {
		if candidate.ConnectionKey() == connKey {
			src = candidate
			break
		}
	}
	if src == nil {
		return fmt.Errorf("unknown connection %q", connKey)
	}

	s.store.SetConnection(connKey, apiKey, models.StatusTesting)

	if err := src.TestConnection(ctx, apiKey); err != nil {
		s.store.SetConnectionStatus(connKey, models.StatusError)
		s.notifier.Notify(notifications.LevelError,
			fmt.Sprintf("%s connection failed: %v", src.Name(), err))
		return err
	}

	s.store.SetConnectionStatus(connKey, models.StatusConnected)
	s.notifier.Notify(notifications.LevelSuccess, "Connected successfully")

	if err := src.Fetch(ctx); err != nil {
		logrus.Warnf("Initial fetch for %s failed: %v", src.Name(), err)
	}
	return nil
}

// LoadMetrics pulls the aggregated dashboard metrics and overwrites all five
// raw signals from the backend's view.
func (s *Service) LoadMetrics(ctx context.Context) error {
	data, err := s.client.DashboardMetrics(ctx, s.config.DaysBack)
	if err != nil {
		s.notifier.Notify(notifications.LevelWarning,
			fmt.Sprintf("Failed to load dashboard metrics: %v", err))
		return err
	}

	for name, value := range map[string]float64{
		"brandedSearchVolume": data.BrandedSearchVolume,
		"directTraffic":       data.DirectTraffic,
		"inboundMessages":     data.InboundMessages,
		"communityEngagement": data.CommunityEngagement,
		"firstPartyData":      data.FirstPartyData,
	} {
		if err := s.store.SetSignal(name, value); err != nil {
			return err
		}
	}
	logrus.Infof("Loaded dashboard metrics (source: %s)", data.DataSource)
	return nil
}

// UpdateBrand stores the brand locally and pushes the name to the backend.
// The backend push is best effort.
func (s *Service) UpdateBrand(ctx context.Context, brand models.BrandConfig) {
	s.store.SetBrand(brand)
	if err := s.client.SaveBrandConfig(ctx, brand.Name); err != nil {
		logrus.Warnf("Failed to push brand config to backend: %v", err)
	}
	s.notifier.Notify(notifications.LevelSuccess, "Brand configuration saved")
}

// AddCampaign records a campaign and notifies.
func (s *Service) AddCampaign(c models.Campaign) error {
	if err := s.store.AddCampaign(c); err != nil {
		s.notifier.Notify(notifications.LevelError, err.Error())
		return err
	}
	s.notifier.Notify(notifications.LevelSuccess, fmt.Sprintf("Campaign %q added", c.Name))
	return nil
}

// AddEcho records an echo and notifies.
func (s *Service) AddEcho(e models.Echo) error {
	if err := s.store.AddEcho(e); err != nil {
		s.notifier.Notify(notifications.LevelError, err.Error())
		return err
	}
	s.notifier.Notify(notifications.LevelSuccess, "Echo logged")
	return nil
}

// AddPrompt adds a prompt to the library and notifies.
func (s *Service) AddPrompt(p models.Prompt) error {
	if err := s.store.AddPrompt(p); err != nil {
		s.notifier.Notify(notifications.LevelError, err.Error())
		return err
	}
	s.notifier.Notify(notifications.LevelSuccess, fmt.Sprintf("Prompt %q added", p.Title))
	return nil
}

// Summary builds the attribution summary from current state.
func (s *Service) Summary() *models.AttributionSummary {
	snapshot := s.store.Snapshot()
	sourceCounts := make(map[string]int)
	for _, m := range snapshot.LiveFeed.Mentions {
		sourceCounts[m.Source]++
	}
	return &models.AttributionSummary{
		ExportDate: time.Now(),
		Version:    BackupVersion,
		Brand:      snapshot.Brand.Name,
		Signals:    snapshot.Signals,
		FeedStats:  feed.Stats(snapshot.LiveFeed.Mentions),
		Campaigns:  len(snapshot.Campaigns),
		Echoes:     len(snapshot.Echoes),
		Sources:    sourceCounts,
	}
}

// SendReport mails the attribution summary through the configured reporter.
func (s *Service) SendReport() error {
	if s.reporter == nil {
		return nil
	}
	if err := s.reporter.SendSummary(s.Summary()); err != nil {
		s.notifier.Notify(notifications.LevelWarning,
			fmt.Sprintf("Failed to send attribution report: %v", err))
		return err
	}
	return nil
}
