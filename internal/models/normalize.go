package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// APIMention is the raw wire form of a mention as backend sources report it.
// IDs arrive as strings or numbers, timestamps as RFC3339, bare dates, epoch
// seconds, or not at all. Normalize turns it into a well-formed Mention.
type APIMention struct {
	ID               flexString        `json:"id"`
	Platform         string            `json:"platform"`
	Content          string            `json:"content"`
	Text             string            `json:"text"`
	Title            string            `json:"title"`
	Domain           string            `json:"domain"`
	Sentiment        string            `json:"sentiment"`
	SentimentDetails *SentimentDetails `json:"sentiment_details"`
	Engagement       int               `json:"engagement"`
	Author           string            `json:"author"`
	Timestamp        flexTime          `json:"timestamp"`
	CreatedAt        flexTime          `json:"created_at"`
	URL              string            `json:"url"`
}

type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("mention id is neither string nor number: %w", err)
	}
	*f = flexString(n.String())
	return nil
}

type flexTime struct {
	time.Time
}

func (f *flexTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		f.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			f.Time = t
			return nil
		}
	}
	if epoch, err := strconv.ParseFloat(s, 64); err == nil {
		sec := int64(epoch)
		f.Time = time.Unix(sec, int64((epoch-float64(sec))*float64(time.Second)))
		return nil
	}
	// An unparseable timestamp degrades to the zero value so one bad
	// mention cannot sink the whole batch; Normalize substitutes now.
	f.Time = time.Time{}
	return nil
}

var syntheticIDSeq atomic.Int64

var knownPlatforms = map[string]bool{
	PlatformTwitter: true, PlatformReddit: true, PlatformDiscord: true,
	PlatformLinkedIn: true, PlatformWeb: true, PlatformTikTok: true,
	PlatformYouTube: true,
}

// Normalize fills defaults and returns a Mention tagged with the given source.
// now is injected so callers (and tests) control the fallback timestamp.
func (a APIMention) Normalize(source string, now time.Time) Mention {
	m := Mention{
		ID:               string(a.ID),
		Platform:         strings.ToLower(a.Platform),
		Content:          a.Content,
		Sentiment:        strings.ToLower(a.Sentiment),
		SentimentDetails: a.SentimentDetails,
		Engagement:       a.Engagement,
		Author:           a.Author,
		Timestamp:        a.Timestamp.Time,
		URL:              a.URL,
		Source:           source,
	}
	if m.Content == "" {
		m.Content = a.Text
	}
	if m.Content == "" {
		m.Content = a.Title
	}
	if m.Content == "" {
		m.Content = "No content available"
	}
	if !knownPlatforms[m.Platform] {
		m.Platform = PlatformUnknown
	}
	switch m.Sentiment {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
	default:
		m.Sentiment = SentimentNeutral
	}
	if m.Engagement < 0 {
		m.Engagement = 0
	}
	if m.Author == "" {
		m.Author = "Anonymous"
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = a.CreatedAt.Time
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = now
	}
	if m.URL == "" {
		m.URL = "#"
	}
	if m.ID == "" {
		// Counter suffix keeps synthesized IDs distinct when a batch shares
		// one normalization timestamp.
		m.ID = fmt.Sprintf("%s_%d_%d", source, now.UnixNano(), syntheticIDSeq.Add(1))
	}
	return m
}

// CSVMention is one row of an uploaded mentions CSV, matching the template
// columns Date,Platform,Content,Sentiment,Engagement,Author,URL.
type CSVMention struct {
	Date       string
	Platform   string
	Content    string
	Sentiment  string
	Engagement string
	Author     string
	URL        string
}

// Normalize applies the same defaulting rules as APIMention.Normalize and
// tags the mention as a CSV import.
func (c CSVMention) Normalize(now time.Time) Mention {
	engagement, _ := strconv.Atoi(strings.TrimSpace(c.Engagement))
	a := APIMention{
		Platform:   c.Platform,
		Content:    c.Content,
		Sentiment:  c.Sentiment,
		Engagement: engagement,
		Author:     c.Author,
		URL:        c.URL,
	}
	m := a.Normalize(SourceCSVImport, now)
	if t := parseCSVDate(c.Date); !t.IsZero() {
		m.Timestamp = t
	}
	return m
}

func parseCSVDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
