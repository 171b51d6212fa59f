package sources

import (
	"context"
	"fmt"

	"github.com/brandsignal/attribution-dashboard/internal/models"
	"github.com/brandsignal/attribution-dashboard/internal/notifications"
	"github.com/sirupsen/logrus"
)

// AnalyticsSource feeds the direct traffic signal from Universal Analytics
// data relayed by the backend.
type AnalyticsSource struct {
	client   *Client
	signals  SignalWriter
	notifier notifications.Notifier
	daysBack int
}

type gaData struct {
	DirectTraffic float64 `json:"direct_traffic"`
}

// NewAnalyticsSource creates a new Google Analytics source
func NewAnalyticsSource(client *Client, signals SignalWriter, notifier notifications.Notifier, daysBack int) *AnalyticsSource {
	return &AnalyticsSource{
		client:   client,
		signals:  signals,
		notifier: orNop(notifier),
		daysBack: daysBack,
	}
}

func (s *AnalyticsSource) Name() string {
	return "google_analytics"
}

func (s *AnalyticsSource) ConnectionKey() string {
	return models.ConnGoogleAnalytics
}

func (s *AnalyticsSource) TestConnection(ctx context.Context, apiKey string) error {
	return s.client.TestCredential(ctx, "/api/test-google-analytics", apiKey)
}

// Fetch overwrites directTraffic; mock fallback on failure.
func (s *AnalyticsSource) Fetch(ctx context.Context) error {
	if s.signals.ConnectionStatus(s.ConnectionKey()) != models.StatusConnected {
		logrus.Debug("Analytics source not connected, skipping fetch")
		return nil
	}

	var data gaData
	if err := s.client.FetchSignal(ctx, "/api/fetch-ga-data", s.daysBack, &data); err != nil {
		logrus.Errorf("Failed to fetch Analytics data: %v", err)
		s.notifier.Notify(notifications.LevelWarning,
			fmt.Sprintf("Failed to fetch analytics data: %v", err))
		return s.signals.SetSignal("directTraffic", mockDirectTraffic())
	}

	if err := s.signals.SetSignal("directTraffic", data.DirectTraffic); err != nil {
		return err
	}
	s.notifier.Notify(notifications.LevelSuccess, "Analytics data fetched")
	return nil
}
