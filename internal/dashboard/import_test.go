package dashboard

import (
	"testing"
	"time"

	"github.com/brandsignal/attribution-dashboard/internal/feed"
	"github.com/brandsignal/attribution-dashboard/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestImportCSV_SearchSumsClicks(t *testing.T) {
	svc, store, notifier := newTestService(t)

	csv := "Date,Query,Impressions,Clicks,CTR,Position\n" +
		"2026-06-01,brand name,1250,125,10.0%,2.5\n" +
		"2026-06-02,brand pricing,875,87,9.9%,3.2\n"

	imported, err := svc.ImportCSV(ImportSearch, "search_console.csv", []byte(csv))

	assert.NoError(t, err)
	assert.Equal(t, 2, imported)
	assert.Equal(t, float64(212), store.Signals().BrandedSearchVolume)
	assert.Equal(t, []string{"search_console.csv"}, store.Snapshot().Settings.CSVSources)
	assert.Contains(t, notifier.messages, "Successfully imported 2 search records")
}

func TestImportCSV_TrafficCountsDirectSessionsOnly(t *testing.T) {
	svc, store, _ := newTestService(t)

	csv := "Date,Source,Sessions,Users,PageViews,BounceRate\n" +
		"2026-06-01,Direct,450,380,1250,25.5%\n" +
		"2026-06-02,Organic Search,900,700,2100,40.0%\n" +
		"2026-06-03,direct,398,340,1123,28.1%\n"

	imported, err := svc.ImportCSV(ImportTraffic, "analytics.csv", []byte(csv))

	assert.NoError(t, err)
	assert.Equal(t, 3, imported)
	assert.Equal(t, float64(848), store.Signals().DirectTraffic)
}

func TestImportCSV_MentionsFeedSignalAndCollection(t *testing.T) {
	svc, store, _ := newTestService(t)
	svc.feed = feed.NewEngine(store, nil, nil, "BrandX", 30, time.Minute)

	csv := "Date,Platform,Content,Sentiment,Engagement,Author,URL\n" +
		`2026-06-01,Twitter,"Love the new features, really!",positive,15,@user123,https://twitter.com/user123/status/123` + "\n" +
		"2026-06-02,Reddit,Anyone tried this tool?,neutral,8,user456,https://reddit.com/r/tools/comments/abc\n"

	imported, err := svc.ImportCSV(ImportMentions, "mentions.csv", []byte(csv))

	assert.NoError(t, err)
	assert.Equal(t, 2, imported)
	assert.Equal(t, float64(2), store.Signals().InboundMessages)

	mentions := store.Mentions()
	assert.Len(t, mentions, 2)
	ids := make(map[string]bool)
	for _, m := range mentions {
		assert.Equal(t, models.SourceCSVImport, m.Source)
		ids[m.ID] = true
	}
	assert.Len(t, ids, 2)
	assert.Equal(t, models.PlatformReddit, mentions[0].Platform)
	assert.Equal(t, "Love the new features, really!", mentions[1].Content)
	assert.Equal(t,
		time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), mentions[1].Timestamp)
}

func TestImportCSV_EmailsSumInteractions(t *testing.T) {
	svc, store, _ := newTestService(t)

	csv := "Date,Subject,Type,Opens,Clicks,Replies,Source\n" +
		"2026-06-01,Newsletter,newsletter,1250,125,12,campaign\n" +
		"2026-06-02,Re: inquiry,inbound,1,0,1,inquiry\n"

	imported, err := svc.ImportCSV(ImportEmails, "emails.csv", []byte(csv))

	assert.NoError(t, err)
	assert.Equal(t, 2, imported)
	assert.Equal(t, float64(1389), store.Signals().CommunityEngagement)
}

func TestImportCSV_SkipsRowsWithWrongWidth(t *testing.T) {
	svc, store, _ := newTestService(t)

	csv := "Date,Query,Impressions,Clicks,CTR,Position\n" +
		"2026-06-01,brand name,1250,125,10.0%,2.5\n" +
		"bad row with,too few columns\n"

	imported, err := svc.ImportCSV(ImportSearch, "search.csv", []byte(csv))

	assert.NoError(t, err)
	assert.Equal(t, 1, imported)
	assert.Equal(t, float64(125), store.Signals().BrandedSearchVolume)
}

func TestImportCSV_RejectsHeaderOnlyFile(t *testing.T) {
	svc, store, notifier := newTestService(t)

	_, err := svc.ImportCSV(ImportSearch, "empty.csv", []byte("Date,Query,Impressions,Clicks,CTR,Position\n"))

	assert.Error(t, err)
	assert.Equal(t, float64(0), store.Signals().BrandedSearchVolume)
	assert.Empty(t, store.Snapshot().Settings.CSVSources)
	assert.Contains(t, notifier.messages[len(notifier.messages)-1], "Error processing CSV")
}

func TestImportCSV_RejectsUnknownType(t *testing.T) {
	svc, _, notifier := newTestService(t)

	_, err := svc.ImportCSV("podcast", "data.csv", []byte("A,B\n1,2\n"))

	assert.Error(t, err)
	assert.Contains(t, notifier.messages, "Unknown template type")
}
