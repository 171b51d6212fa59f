package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/brandsignal/attribution-dashboard/internal/models"
	"github.com/brandsignal/attribution-dashboard/internal/notifications"
	"github.com/sirupsen/logrus"
)

// WebSearchSource pulls brand mentions from the open web via the backend's
// Exa Search integration. Everything it produces is a "web" mention; the
// author falls back to the page's domain.
type WebSearchSource struct {
	client   *Client
	signals  SignalWriter
	feed     MentionIngestor
	notifier notifications.Notifier
	daysBack int
}

// NewWebSearchSource creates a new web mentions source
func NewWebSearchSource(client *Client, signals SignalWriter, feed MentionIngestor, notifier notifications.Notifier, daysBack int) *WebSearchSource {
	return &WebSearchSource{
		client:   client,
		signals:  signals,
		feed:     feed,
		notifier: orNop(notifier),
		daysBack: daysBack,
	}
}

func (s *WebSearchSource) Name() string {
	return "exa_search"
}

func (s *WebSearchSource) ConnectionKey() string {
	return models.ConnExaSearch
}

func (s *WebSearchSource) TestConnection(ctx context.Context, apiKey string) error {
	return s.client.TestCredential(ctx, "/api/test-exa-search", apiKey)
}

func (s *WebSearchSource) Fetch(ctx context.Context) error {
	if s.signals.ConnectionStatus(s.ConnectionKey()) != models.StatusConnected {
		logrus.Debug("Web search source not connected, skipping fetch")
		return nil
	}

	raw, err := s.client.FetchSourceMentions(ctx, "/api/fetch-web-mentions", s.daysBack)
	if err != nil {
		logrus.Errorf("Failed to fetch web mentions: %v", err)
		s.notifier.Notify(notifications.LevelWarning,
			fmt.Sprintf("Failed to fetch web mentions: %v", err))
		return err
	}

	now := time.Now()
	mentions := make([]models.Mention, 0, len(raw))
	for _, m := range raw {
		normalized := m.Normalize(models.SourceExaSearch, now)
		normalized.Platform = models.PlatformWeb
		if normalized.Author == "Anonymous" {
			if m.Domain != "" {
				normalized.Author = m.Domain
			} else {
				normalized.Author = "Web"
			}
		}
		mentions = append(mentions, normalized)
	}
	s.feed.Ingest(mentions)

	s.notifier.Notify(notifications.LevelSuccess,
		fmt.Sprintf("Fetched %d web mentions", len(raw)))
	return nil
}
