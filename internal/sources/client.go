package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brandsignal/attribution-dashboard/internal/models"
	"github.com/go-resty/resty/v2"
)

// Client wraps the dashboard backend API. Every endpoint answers the same
// envelope: {status, message, data, source}.
type Client struct {
	base   string
	client *resty.Client
}

type envelope struct {
	Status   string          `json:"status"`
	Message  string          `json:"message"`
	Data     json.RawMessage `json:"data"`
	Source   string          `json:"source"`
	Metadata json.RawMessage `json:"metadata"`
}

// MetricsData is the payload of GET /api/dashboard-metrics.
type MetricsData struct {
	BrandedSearchVolume float64 `json:"branded_search_volume"`
	DirectTraffic       float64 `json:"direct_traffic"`
	CommunityEngagement float64 `json:"community_engagement"`
	InboundMessages     float64 `json:"inbound_messages"`
	FirstPartyData      float64 `json:"first_party_data"`
	AttributionScore    float64 `json:"attribution_score"`
	DataSource          string  `json:"data_source"`
}

// EnvStatus is the payload of GET /api/env-status.
type EnvStatus struct {
	BrandName                string `json:"brand_name"`
	ScrapeCreatorsConfigured bool   `json:"scrape_creators_configured"`
	ExaSearchConfigured      bool   `json:"exa_search_configured"`
}

// MentionsResult carries fetched mentions plus the backend's source tag
// ("cache", "live_api" or "empty").
type MentionsResult struct {
	Mentions []models.APIMention
	Source   string
}

// NewClient creates a backend client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		base:   baseURL,
		client: resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
	}
}

func (c *Client) get(ctx context.Context, path string, params map[string]string) (*envelope, error) {
	var env envelope
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&env).
		Get(path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("backend returned status %d for %s", resp.StatusCode(), path)
	}
	if env.Status != "success" {
		return nil, fmt.Errorf("backend error for %s: %s", path, env.Message)
	}
	return &env, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}) (*envelope, error) {
	var env envelope
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&env).
		Post(path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("backend returned status %d for %s", resp.StatusCode(), path)
	}
	if env.Status != "success" {
		return nil, fmt.Errorf("backend error for %s: %s", path, env.Message)
	}
	return &env, nil
}

// FetchMentions reads the backend's cached mention set.
func (c *Client) FetchMentions(ctx context.Context, daysBack int, platform string) (*MentionsResult, error) {
	env, err := c.get(ctx, "/api/fetch-mentions", map[string]string{
		"days_back": fmt.Sprint(daysBack),
		"platform":  platform,
	})
	if err != nil {
		return nil, err
	}
	return decodeMentions(env)
}

// RefreshMentions forces the backend to pull fresh data from its upstream
// APIs, bypassing its cache.
func (c *Client) RefreshMentions(ctx context.Context, daysBack int, platform string) (*MentionsResult, error) {
	env, err := c.post(ctx, "/api/refresh-mentions", map[string]interface{}{
		"days_back": daysBack,
		"platform":  platform,
	})
	if err != nil {
		return nil, err
	}
	return decodeMentions(env)
}

func decodeMentions(env *envelope) (*MentionsResult, error) {
	var mentions []models.APIMention
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &mentions); err != nil {
			return nil, fmt.Errorf("failed to decode mentions: %w", err)
		}
	}
	return &MentionsResult{Mentions: mentions, Source: env.Source}, nil
}

// DashboardMetrics reads the aggregated signal metrics.
func (c *Client) DashboardMetrics(ctx context.Context, daysBack int) (*MetricsData, error) {
	env, err := c.get(ctx, "/api/dashboard-metrics", map[string]string{
		"days_back": fmt.Sprint(daysBack),
	})
	if err != nil {
		return nil, err
	}
	var data MetricsData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to decode dashboard metrics: %w", err)
	}
	return &data, nil
}

// TestCredential posts an API key to one of the backend's test endpoints.
func (c *Client) TestCredential(ctx context.Context, endpoint, apiKey string) error {
	_, err := c.post(ctx, endpoint, map[string]string{"api_key": apiKey})
	return err
}

// FetchSignal calls a per-source data endpoint and decodes its payload.
func (c *Client) FetchSignal(ctx context.Context, endpoint string, daysBack int, dst interface{}) error {
	env, err := c.get(ctx, endpoint, map[string]string{
		"days_back": fmt.Sprint(daysBack),
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", endpoint, err)
	}
	return nil
}

// FetchSourceMentions calls a per-source mention endpoint.
func (c *Client) FetchSourceMentions(ctx context.Context, endpoint string, daysBack int) ([]models.APIMention, error) {
	env, err := c.get(ctx, endpoint, map[string]string{
		"days_back": fmt.Sprint(daysBack),
	})
	if err != nil {
		return nil, err
	}
	var mentions []models.APIMention
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &mentions); err != nil {
			return nil, fmt.Errorf("failed to decode %s mentions: %w", endpoint, err)
		}
	}
	return mentions, nil
}

// SaveBrandConfig pushes the brand name to the backend.
func (c *Client) SaveBrandConfig(ctx context.Context, brandName string) error {
	_, err := c.post(ctx, "/api/brand-config", map[string]string{"brand_name": brandName})
	return err
}

// FetchEnvStatus reads which upstream integrations the backend has keys for.
func (c *Client) FetchEnvStatus(ctx context.Context) (*EnvStatus, error) {
	var status EnvStatus
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&status).
		Get("/api/env-status")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("backend returned status %d for /api/env-status", resp.StatusCode())
	}
	return &status, nil
}

// TestSentiment runs a text sample through the backend sentiment analyzer.
func (c *Client) TestSentiment(ctx context.Context, text string) (json.RawMessage, error) {
	env, err := c.post(ctx, "/api/test-sentiment", map[string]string{"text": text})
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// TestWebhook asks the backend to fire a test payload at a webhook URL.
func (c *Client) TestWebhook(ctx context.Context, webhookURL string, testData map[string]interface{}) error {
	_, err := c.post(ctx, "/api/test-webhook", map[string]interface{}{
		"webhook_url": webhookURL,
		"test_data":   testData,
	})
	return err
}
