package notifications

import "github.com/brandsignal/attribution-dashboard/internal/models"

// Level classifies a transient user-facing message.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notifier is the notification surface every component reports through.
// Implementations must never block business logic on delivery failures.
type Notifier interface {
	Notify(level Level, message string)
}

// Reporter sends the periodic attribution summary through a durable channel.
type Reporter interface {
	SendSummary(summary *models.AttributionSummary) error
}

// Nop discards all notifications. Used where no surface is wired.
type Nop struct{}

func (Nop) Notify(Level, string) {}
