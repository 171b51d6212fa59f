package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/brandsignal/attribution-dashboard/internal/config"
	"github.com/brandsignal/attribution-dashboard/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// webhookTimeout bounds webhook delivery independently of the backend
// request timeout; notifications ride mutation paths and must stay cheap.
const webhookTimeout = 5 * time.Second

// Service fans notifications out to the log and, when configured, a webhook.
// It also delivers the attribution summary email.
type Service struct {
	config  *config.Config
	webhook *resty.Client
}

// Ensure Service implements both contracts
var (
	_ Notifier = (*Service)(nil)
	_ Reporter = (*Service)(nil)
)

// webhookMessage is the JSON body posted to the notification webhook.
type webhookMessage struct {
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Brand     string    `json:"brand"`
	Timestamp time.Time `json:"timestamp"`
}

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config:  cfg,
		webhook: resty.New().SetTimeout(webhookTimeout),
	}
}

// Notify logs the message and posts it to the webhook when one is configured.
// Webhook failures are logged and swallowed; a broken webhook must never
// break the operation that produced the notification.
func (s *Service) Notify(level Level, message string) {
	switch level {
	case LevelWarning:
		logrus.Warn(message)
	case LevelError:
		logrus.Error(message)
	default:
		logrus.Info(message)
	}

	if s.config.WebhookURL == "" {
		return
	}

	msg := webhookMessage{
		Level:     string(level),
		Message:   message,
		Brand:     s.config.BrandName,
		Timestamp: time.Now(),
	}

	// Delivery happens off the caller's goroutine so a slow webhook cannot
	// stall the mutation that produced the notification.
	go func() {
		resp, err := s.webhook.R().
			SetHeader("Content-Type", "application/json").
			SetBody(msg).
			Post(s.config.WebhookURL)

		if err != nil {
			logrus.Errorf("Failed to post notification webhook: %v", err)
			return
		}
		if resp.StatusCode() >= 300 {
			logrus.Errorf("Notification webhook returned status %d", resp.StatusCode())
		}
	}()
}

// SendSummary emails the attribution summary when a report recipient is
// configured.
func (s *Service) SendSummary(summary *models.AttributionSummary) error {
	if s.config.ReportEmail == "" {
		logrus.Debug("No report email configured, skipping summary delivery")
		return nil
	}

	subject := fmt.Sprintf("%s Attribution Report - score %.1f",
		summary.Brand, summary.Signals.AttributionScore)

	htmlBody, err := s.buildSummaryHTML(summary)
	if err != nil {
		return fmt.Errorf("failed to build summary HTML: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.ReportEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", s.buildSummaryText(summary))
	m.AddAlternative("text/html", htmlBody)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send summary email: %w", err)
	}

	logrus.Info("Sent attribution summary email")
	return nil
}

var summaryTemplate = template.Must(template.New("summary").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Attribution Report</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #2d6cdf; color: white; padding: 20px; border-radius: 5px; }
        .section { background-color: #f5f5f5; padding: 15px; margin: 20px 0; border-radius: 5px; }
        .score { font-size: 2em; font-weight: bold; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.Brand}} Attribution Report</h1>
        <p>Generated {{.ExportDate.Format "January 2, 2006 at 3:04 PM UTC"}}</p>
    </div>

    <div class="section">
        <h2>Attribution Score</h2>
        <p class="score">{{printf "%.1f" .Signals.AttributionScore}} / 10</p>
    </div>

    <div class="section">
        <h2>Signals</h2>
        <p><strong>Branded Search Volume:</strong> {{printf "%.0f" .Signals.BrandedSearchVolume}}</p>
        <p><strong>Direct Traffic:</strong> {{printf "%.0f" .Signals.DirectTraffic}}</p>
        <p><strong>Inbound Messages:</strong> {{printf "%.0f" .Signals.InboundMessages}}</p>
        <p><strong>Community Engagement:</strong> {{printf "%.0f" .Signals.CommunityEngagement}}</p>
        <p><strong>First-Party Data:</strong> {{printf "%.0f" .Signals.FirstPartyData}}</p>
    </div>

    <div class="section">
        <h2>Live Feed</h2>
        <p><strong>Total Mentions:</strong> {{.FeedStats.Total}}</p>
        <p><strong>Positive:</strong> {{.FeedStats.Positive}} |
           <strong>Neutral:</strong> {{.FeedStats.Neutral}} |
           <strong>Negative:</strong> {{.FeedStats.Negative}}</p>
        <p><strong>Campaigns:</strong> {{.Campaigns}} | <strong>Echoes:</strong> {{.Echoes}}</p>
    </div>

    <hr>
    <p><small>This report was generated automatically by the attribution dashboard.</small></p>
</body>
</html>
`))

func (s *Service) buildSummaryHTML(summary *models.AttributionSummary) (string, error) {
	var buf bytes.Buffer
	if err := summaryTemplate.Execute(&buf, summary); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *Service) buildSummaryText(summary *models.AttributionSummary) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s Attribution Report\n", summary.Brand)
	fmt.Fprintf(&buf, "Generated: %s\n\n", summary.ExportDate.Format("2006-01-02 15:04:05 UTC"))

	fmt.Fprintf(&buf, "ATTRIBUTION SCORE: %.1f / 10\n\n", summary.Signals.AttributionScore)

	fmt.Fprintf(&buf, "SIGNALS\n")
	fmt.Fprintf(&buf, "=======\n")
	fmt.Fprintf(&buf, "Branded Search Volume: %.0f\n", summary.Signals.BrandedSearchVolume)
	fmt.Fprintf(&buf, "Direct Traffic: %.0f\n", summary.Signals.DirectTraffic)
	fmt.Fprintf(&buf, "Inbound Messages: %.0f\n", summary.Signals.InboundMessages)
	fmt.Fprintf(&buf, "Community Engagement: %.0f\n", summary.Signals.CommunityEngagement)
	fmt.Fprintf(&buf, "First-Party Data: %.0f\n\n", summary.Signals.FirstPartyData)

	fmt.Fprintf(&buf, "LIVE FEED\n")
	fmt.Fprintf(&buf, "=========\n")
	fmt.Fprintf(&buf, "Total Mentions: %d (positive %d / neutral %d / negative %d)\n",
		summary.FeedStats.Total, summary.FeedStats.Positive,
		summary.FeedStats.Neutral, summary.FeedStats.Negative)
	fmt.Fprintf(&buf, "Campaigns: %d | Echoes: %d\n", summary.Campaigns, summary.Echoes)

	return buf.String()
}
