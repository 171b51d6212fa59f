package sources

import (
	"context"

	"github.com/brandsignal/attribution-dashboard/internal/models"
	"github.com/brandsignal/attribution-dashboard/internal/notifications"
)

// Source is one external data integration. A fetch is only attempted while
// the source's connection status is "connected"; Fetch applies its results
// to the dashboard state and is safe to repeat (signals overwrite, mentions
// dedupe on id).
type Source interface {
	Name() string
	ConnectionKey() string
	TestConnection(ctx context.Context, apiKey string) error
	Fetch(ctx context.Context) error
}

// SignalWriter is the slice of the state store a signal source needs.
type SignalWriter interface {
	SetSignal(name string, value float64) error
	ConnectionStatus(name string) models.ConnectionStatus
}

// MentionIngestor receives normalized mentions from a mention source.
type MentionIngestor interface {
	Ingest(mentions []models.Mention)
}

func orNop(n notifications.Notifier) notifications.Notifier {
	if n == nil {
		return notifications.Nop{}
	}
	return n
}
