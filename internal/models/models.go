package models

import "time"

// Platform values a mention can carry. Anything else is normalized to "unknown".
const (
	PlatformTwitter  = "twitter"
	PlatformReddit   = "reddit"
	PlatformDiscord  = "discord"
	PlatformLinkedIn = "linkedin"
	PlatformWeb      = "web"
	PlatformTikTok   = "tiktok"
	PlatformYouTube  = "youtube"
	PlatformUnknown  = "unknown"
)

// Sentiment values.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Mention origin tags.
const (
	SourceAPI            = "api"
	SourceScrapeCreators = "scrape_creators"
	SourceExaSearch      = "exa_search"
	SourceCSVImport      = "csv_import"
	SourceSample         = "sample"
)

// Mention is a single piece of brand attribution evidence.
type Mention struct {
	ID               string            `json:"id"`
	Platform         string            `json:"platform"`
	Content          string            `json:"content"`
	Sentiment        string            `json:"sentiment"`
	SentimentDetails *SentimentDetails `json:"sentiment_details,omitempty"`
	Engagement       int               `json:"engagement"`
	Author           string            `json:"author"`
	Timestamp        time.Time         `json:"timestamp"`
	URL              string            `json:"url"`
	Source           string            `json:"source"`
}

// SentimentDetails carries optional confidence/reasoning from the sentiment
// backend. Opaque to the feed engine; renderers decide what to show.
type SentimentDetails struct {
	Confidence float64  `json:"confidence,omitempty"`
	Method     string   `json:"method,omitempty"`
	Reasoning  string   `json:"reasoning,omitempty"`
	Emotions   []string `json:"emotional_categories,omitempty"`
	Intensity  string   `json:"intensity,omitempty"`
}

// SignalSet holds the five raw attribution inputs and the derived score.
// AttributionScore is written only by scoring.Calculate.
type SignalSet struct {
	BrandedSearchVolume float64 `json:"brandedSearchVolume"`
	DirectTraffic       float64 `json:"directTraffic"`
	InboundMessages     float64 `json:"inboundMessages"`
	CommunityEngagement float64 `json:"communityEngagement"`
	FirstPartyData      float64 `json:"firstPartyData"`
	AttributionScore    float64 `json:"attributionScore"`
}

// Campaign is a manually logged marketing initiative.
type Campaign struct {
	Name               string `json:"name"`
	BrandedSearchDelta string `json:"brandedSearchDelta"`
	Mentions           int    `json:"mentions"`
	Signups            int    `json:"signups"`
	CommunityBuzz      string `json:"communityBuzz"`
	Notes              string `json:"notes"`
}

// Echo is a manually logged qualitative attribution event.
type Echo struct {
	ID        int64  `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Content   string `json:"content"`
	Source    string `json:"source"`
}

// Prompt is a reusable attribution-question template.
type Prompt struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

// MentionsPoint is one day of the mentions-per-day chart series.
type MentionsPoint struct {
	Day      string `json:"day"`
	Mentions int    `json:"mentions"`
	Date     string `json:"date"`
}

// ConnectionStatus for an external source.
type ConnectionStatus string

const (
	StatusDisconnected ConnectionStatus = "disconnected"
	StatusTesting      ConnectionStatus = "testing"
	StatusConnected    ConnectionStatus = "connected"
	StatusError        ConnectionStatus = "error"
)

// Connection keys.
const (
	ConnGoogleSearchConsole = "googleSearchConsole"
	ConnGoogleAnalytics     = "googleAnalytics"
	ConnGoogleAnalyticsGA4  = "googleAnalyticsGA4"
	ConnScrapeCreators      = "scrapeCreators"
	ConnExaSearch           = "exaSearch"
	ConnEmailMarketing      = "emailMarketing"
	ConnCRMCalendar         = "crmCalendar"
)

// FeedFilters is the read-side projection over the mention collection.
// Empty string means "any".
type FeedFilters struct {
	Platform  string `json:"platform"`
	Sentiment string `json:"sentiment"`
	Keyword   string `json:"keyword"`
}

// LiveFeed is the unified mention collection plus its activity flag.
type LiveFeed struct {
	Mentions   []Mention   `json:"mentions"`
	IsActive   bool        `json:"isActive"`
	LastUpdate time.Time   `json:"lastUpdate"`
	Filters    FeedFilters `json:"filters"`
}

// BrandConfig identifies the tracked brand.
type BrandConfig struct {
	Name     string   `json:"name"`
	Website  string   `json:"website"`
	Keywords []string `json:"keywords"`
}

// SetupWizard tracks onboarding progress.
type SetupWizard struct {
	CurrentStep    int    `json:"currentStep"`
	SelectedMethod string `json:"selectedMethod"`
	Completed      bool   `json:"completed"`
}

// Settings holds user-managed integration extras.
type Settings struct {
	Webhooks   []string `json:"webhooks"`
	CSVSources []string `json:"csvSources"`
}

// DashboardState is the aggregate root. Exactly one instance exists per
// running dashboard; it is owned by state.Store and serialized wholesale.
type DashboardState struct {
	Signals      SignalSet                   `json:"signals"`
	Brand        BrandConfig                 `json:"brandConfig"`
	APIKeys      map[string]string           `json:"apiKeys"`
	APIStatus    map[string]ConnectionStatus `json:"apiStatus"`
	LiveFeed     LiveFeed                    `json:"liveFeed"`
	SetupWizard  SetupWizard                 `json:"setupWizard"`
	Campaigns    []Campaign                  `json:"campaigns"`
	Echoes       []Echo                      `json:"echoes"`
	Prompts      []Prompt                    `json:"prompts"`
	MentionsData map[string][]MentionsPoint  `json:"mentionsData"`
	Settings     Settings                    `json:"settings"`
}

// FeedStats are computed over a filtered mention set.
type FeedStats struct {
	Total    int `json:"total"`
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// Backup is the full-state JSON export envelope.
type Backup struct {
	BackupDate time.Time      `json:"backupDate"`
	Version    string         `json:"version"`
	State      DashboardState `json:"state"`
}

// AttributionSummary is the lightweight JSON export of current signal health.
type AttributionSummary struct {
	ExportDate time.Time      `json:"exportDate"`
	Version    string         `json:"version"`
	Brand      string         `json:"brand"`
	Signals    SignalSet      `json:"signals"`
	FeedStats  FeedStats      `json:"feedStats"`
	Campaigns  int            `json:"campaigns"`
	Echoes     int            `json:"echoes"`
	Sources    map[string]int `json:"sources"`
}
