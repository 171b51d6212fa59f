package sources

import (
	"context"
	"fmt"

	"github.com/brandsignal/attribution-dashboard/internal/models"
	"github.com/brandsignal/attribution-dashboard/internal/notifications"
	"github.com/sirupsen/logrus"
)

// GA4Source feeds direct traffic and branded search from a GA4 property.
// Unlike the legacy sources it updates two signals from one payload and has
// no mock fallback: a GA4 failure leaves the legacy sources' values standing.
type GA4Source struct {
	client   *Client
	signals  SignalWriter
	notifier notifications.Notifier
	daysBack int
}

type ga4Data struct {
	DirectTraffic       *float64 `json:"direct_traffic"`
	BrandedSearchVolume *float64 `json:"branded_search_volume"`
}

// NewGA4Source creates a new GA4 source
func NewGA4Source(client *Client, signals SignalWriter, notifier notifications.Notifier, daysBack int) *GA4Source {
	return &GA4Source{
		client:   client,
		signals:  signals,
		notifier: orNop(notifier),
		daysBack: daysBack,
	}
}

func (s *GA4Source) Name() string {
	return "google_analytics_ga4"
}

func (s *GA4Source) ConnectionKey() string {
	return models.ConnGoogleAnalyticsGA4
}

func (s *GA4Source) TestConnection(ctx context.Context, apiKey string) error {
	return s.client.TestCredential(ctx, "/api/test-ga4", apiKey)
}

func (s *GA4Source) Fetch(ctx context.Context) error {
	if s.signals.ConnectionStatus(s.ConnectionKey()) != models.StatusConnected {
		logrus.Debug("GA4 source not connected, skipping fetch")
		return nil
	}

	var data ga4Data
	if err := s.client.FetchSignal(ctx, "/api/fetch-ga4-data", s.daysBack, &data); err != nil {
		logrus.Errorf("Failed to fetch GA4 data: %v", err)
		s.notifier.Notify(notifications.LevelWarning,
			fmt.Sprintf("Failed to fetch GA4 data: %v", err))
		return err
	}

	if data.DirectTraffic != nil {
		if err := s.signals.SetSignal("directTraffic", *data.DirectTraffic); err != nil {
			return err
		}
	}
	if data.BrandedSearchVolume != nil {
		if err := s.signals.SetSignal("brandedSearchVolume", *data.BrandedSearchVolume); err != nil {
			return err
		}
	}
	s.notifier.Notify(notifications.LevelSuccess, "GA4 data fetched")
	return nil
}
