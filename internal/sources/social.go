package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/brandsignal/attribution-dashboard/internal/models"
	"github.com/brandsignal/attribution-dashboard/internal/notifications"
	"github.com/sirupsen/logrus"
)

// SocialSource pulls social media mentions via the Scrape Creators backend
// integration. It feeds the live feed and overwrites the community
// engagement signal with the fetched mention count.
type SocialSource struct {
	client   *Client
	signals  SignalWriter
	feed     MentionIngestor
	notifier notifications.Notifier
	daysBack int
}

// NewSocialSource creates a new social mentions source
func NewSocialSource(client *Client, signals SignalWriter, feed MentionIngestor, notifier notifications.Notifier, daysBack int) *SocialSource {
	return &SocialSource{
		client:   client,
		signals:  signals,
		feed:     feed,
		notifier: orNop(notifier),
		daysBack: daysBack,
	}
}

func (s *SocialSource) Name() string {
	return "scrape_creators"
}

func (s *SocialSource) ConnectionKey() string {
	return models.ConnScrapeCreators
}

func (s *SocialSource) TestConnection(ctx context.Context, apiKey string) error {
	return s.client.TestCredential(ctx, "/api/test-scrape-creators", apiKey)
}

func (s *SocialSource) Fetch(ctx context.Context) error {
	if s.signals.ConnectionStatus(s.ConnectionKey()) != models.StatusConnected {
		logrus.Debug("Social source not connected, skipping fetch")
		return nil
	}

	raw, err := s.client.FetchSourceMentions(ctx, "/api/fetch-social-mentions", s.daysBack)
	if err != nil {
		logrus.Errorf("Failed to fetch social mentions: %v", err)
		s.notifier.Notify(notifications.LevelWarning,
			fmt.Sprintf("Failed to fetch social data: %v", err))
		return err
	}

	if err := s.signals.SetSignal("communityEngagement", float64(len(raw))); err != nil {
		return err
	}

	now := time.Now()
	mentions := make([]models.Mention, 0, len(raw))
	for _, m := range raw {
		mentions = append(mentions, m.Normalize(models.SourceScrapeCreators, now))
	}
	s.feed.Ingest(mentions)

	s.notifier.Notify(notifications.LevelSuccess,
		fmt.Sprintf("Fetched %d social mentions", len(raw)))
	return nil
}
