package state

import (
	"math/rand"
	"time"

	"github.com/brandsignal/attribution-dashboard/internal/models"
)

// defaultPrompts is the built-in attribution prompt library.
var defaultPrompts = []models.Prompt{
	{
		Category: "Survey Questions",
		Title:    "Discovery Attribution Survey",
		Content:  "We'd love to understand your journey better! How did you first discover {brand_name}? Was it through: a) Google search, b) Social media (which platform?), c) Friend/colleague recommendation, d) Podcast/YouTube mention, e) Industry publication, f) Other (please specify). Understanding this helps us reach more people like you!",
	},
	{
		Category: "Survey Questions",
		Title:    "Post-Purchase Attribution",
		Content:  "Thank you for your purchase! To help us understand what influenced your decision, could you share: 1) Where you first heard about us, 2) What specific content/review/recommendation convinced you to buy, 3) How long you researched before purchasing? Your insights help us serve future customers better.",
	},
	{
		Category: "Survey Questions",
		Title:    "Referral Source Deep Dive",
		Content:  "You mentioned you heard about us through a recommendation - that's wonderful! Could you help us with a few more details: 1) Who referred you (name/company if comfortable sharing), 2) In what context did they mention us (casual conversation, presentation, etc.), 3) What specifically did they say that caught your attention?",
	},
	{
		Category: "Survey Questions",
		Title:    "Channel Effectiveness Survey",
		Content:  "We're curious about your research process! Before choosing {brand_name}, did you: a) Read our blog posts, b) Watch our videos/demos, c) Read reviews on third-party sites, d) Join our community/social media, e) Attend a webinar/event, f) Speak with our sales team? Which of these was most helpful in your decision?",
	},
	{
		Category: "Survey Questions",
		Title:    "Content Attribution Tracker",
		Content:  "We create lots of content to help potential customers! Was there a specific piece of content that helped you decide to work with us? For example: a particular blog post, video, case study, whitepaper, or social media post. If so, could you share which one and how it influenced your decision?",
	},
	{
		Category: "Email Signatures",
		Title:    "Professional Attribution Request",
		Content:  "P.S. We're always trying to understand how our clients discover us. Would you mind sharing how you first heard about {brand_name}? It takes just a moment and helps us focus our efforts on what works best.",
	},
	{
		Category: "Email Signatures",
		Title:    "Casual Attribution Tracking",
		Content:  "P.S. Quick question - how did you first find out about us? Was it through Google, a referral, social media, or somewhere else? Just curious how people discover {brand_name} these days!",
	},
	{
		Category: "Email Signatures",
		Title:    "Newsletter Attribution",
		Content:  "P.S. Since you're subscribed to our newsletter, we'd love to know: what originally brought you to {brand_name}? Was it a specific search, recommendation, or piece of content? Your answer helps us create better resources for future subscribers.",
	},
	{
		Category: "Email Signatures",
		Title:    "Follow-up Attribution Question",
		Content:  "P.S. I hope this email finds you well! Out of curiosity, how did you originally discover {brand_name}? Understanding our customers' journeys helps us improve how we connect with people who could benefit from our solution.",
	},
	{
		Category: "Follow-up Messages",
		Title:    "Post-Demo Attribution",
		Content:  "Thanks for taking the time to see our demo! Before we continue, I'd love to understand your journey better. What originally brought you to {brand_name}? Was it a specific search, a colleague's recommendation, content you read, or something else? This helps us tailor our follow-up to what resonates most with you.",
	},
	{
		Category: "Follow-up Messages",
		Title:    "Trial-to-Paid Attribution",
		Content:  "Congratulations on completing your trial! As you consider next steps, we'd appreciate understanding what initially led you to try {brand_name}. Was it through search, a referral, specific content, or another channel? This insight helps us support similar customers in their evaluation process.",
	},
	{
		Category: "Follow-up Messages",
		Title:    "Support Ticket Attribution",
		Content:  "While I have you, I'm curious about your journey with {brand_name}. How did you originally discover us? Was it through a Google search, colleague recommendation, industry publication, or another way? Understanding this helps our team identify what's working well in how we reach new customers.",
	},
	{
		Category: "Follow-up Messages",
		Title:    "Customer Success Check-in",
		Content:  "I hope you're seeing great results with {brand_name}! As part of our customer success program, we're tracking what brings people to us initially. Could you remind me how you first heard about {brand_name}? This helps us ensure we're reaching other potential customers who could benefit like you have.",
	},
	{
		Category: "Social Media Posts",
		Title:    "LinkedIn Attribution Post",
		Content:  "Curious question for my network: When you're evaluating a new {product_category} solution, what sources do you trust most? Industry publications? Peer recommendations? Review sites? YouTube demos? Trying to understand how professionals in our space make decisions. Drop a comment with your go-to research method!",
	},
	{
		Category: "Social Media Posts",
		Title:    "Twitter Attribution Poll",
		Content:  "Quick poll: How do you typically discover new {product_category} tools?\nA) Google search\nB) Friend/colleague rec\nC) Social media\nD) Industry content\n\nAlways fascinated by the customer journey! #SaaS #CustomerJourney #Attribution",
	},
	{
		Category: "Social Media Posts",
		Title:    "Facebook Community Attribution",
		Content:  "Hey {community_name} community! We're seeing amazing growth and I'm curious about something. For those who've tried {brand_name}, how did you first hear about us? Was it through this group, a Google search, or somewhere else? Understanding this helps us contribute more meaningfully to communities like this one.",
	},
	{
		Category: "Landing Pages",
		Title:    "Homepage Attribution Capture",
		Content:  "Before you explore our solution, we'd love to know: How did you hear about {brand_name}? This quick question helps us understand what's working and ensures we can help others discover us too. Your journey matters to us!",
	},
	{
		Category: "Landing Pages",
		Title:    "Download Attribution Gate",
		Content:  "One quick question before you download our {resource_name}: How did you find {brand_name}? Was it through search, a referral, social media, or another source? This helps us create more valuable content for people like you.",
	},
	{
		Category: "Landing Pages",
		Title:    "Demo Request Attribution",
		Content:  "Excited to show you {brand_name} in action! To help us prepare the most relevant demo, could you share how you discovered us? This context helps our team understand your perspective and tailor the demo to what brought you here.",
	},
	{
		Category: "Feedback Forms",
		Title:    "Exit Survey Attribution",
		Content:  "Thank you for your feedback! One final question: How did you originally discover {brand_name}? Understanding this helps us improve how we reach and serve customers. Your complete customer journey helps us better support future users.",
	},
	{
		Category: "Feedback Forms",
		Title:    "Product Feedback Attribution",
		Content:  "Your product feedback is invaluable! As part of understanding our user base better, could you share how you first learned about {brand_name}? This context helps us correlate feedback with customer acquisition channels.",
	},
	{
		Category: "Feedback Forms",
		Title:    "NPS Attribution Enhancement",
		Content:  "Thank you for rating your experience! To help us understand what brings our most satisfied customers to us, could you share how you originally discovered {brand_name}? This helps us focus our efforts on channels that attract customers who love our solution.",
	},
}

// GenerateSevenDayData builds a plausible mentions-per-day series for the
// 7-day chart timeframe.
func GenerateSevenDayData() []models.MentionsPoint {
	data := make([]models.MentionsPoint, 0, 7)
	base := 45
	for i := 6; i >= 0; i-- {
		date := time.Now().AddDate(0, 0, -i)
		variance := rand.Intn(30) - 15
		boost := 0
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			boost = rand.Intn(8)
		}
		mentions := base + variance + boost
		if mentions < 5 {
			mentions = 5
		}
		data = append(data, models.MentionsPoint{
			Day:      date.Format("Mon"),
			Mentions: mentions,
			Date:     date.Format("2006-01-02"),
		})
	}
	return data
}

// GenerateThirtyDayData builds the 30-day series. The most recent week gets a
// small boost so the chart trends the way a growing brand's would.
func GenerateThirtyDayData() []models.MentionsPoint {
	data := make([]models.MentionsPoint, 0, 30)
	base := 65
	for i := 29; i >= 0; i-- {
		date := time.Now().AddDate(0, 0, -i)
		variance := rand.Intn(40) - 20
		boost := 0
		if i < 7 {
			boost = rand.Intn(15)
		}
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			boost += rand.Intn(10)
		}
		mentions := base + variance + boost
		if mentions < 10 {
			mentions = 10
		}
		data = append(data, models.MentionsPoint{
			Day:      date.Format("Jan 2"),
			Mentions: mentions,
			Date:     date.Format("2006-01-02"),
		})
	}
	return data
}

// Defaults returns a fresh default DashboardState.
func Defaults() models.DashboardState {
	return models.DashboardState{
		Signals: models.SignalSet{
			BrandedSearchVolume: 2847,
			DirectTraffic:       1234,
			InboundMessages:     89,
			CommunityEngagement: 156,
			FirstPartyData:      67,
			AttributionScore:    8.7,
		},
		Brand: models.BrandConfig{},
		APIKeys: map[string]string{
			models.ConnGoogleSearchConsole: "",
			models.ConnGoogleAnalytics:     "",
			models.ConnGoogleAnalyticsGA4:  "",
			models.ConnScrapeCreators:      "",
			models.ConnExaSearch:           "",
			models.ConnEmailMarketing:      "",
			models.ConnCRMCalendar:         "",
		},
		APIStatus: map[string]models.ConnectionStatus{
			models.ConnGoogleSearchConsole: models.StatusDisconnected,
			models.ConnGoogleAnalytics:     models.StatusDisconnected,
			models.ConnGoogleAnalyticsGA4:  models.StatusDisconnected,
			models.ConnScrapeCreators:      models.StatusDisconnected,
			models.ConnExaSearch:           models.StatusDisconnected,
			models.ConnEmailMarketing:      models.StatusDisconnected,
			models.ConnCRMCalendar:         models.StatusDisconnected,
		},
		LiveFeed: models.LiveFeed{
			Mentions:   []models.Mention{},
			IsActive:   true,
			LastUpdate: time.Now(),
		},
		Campaigns: []models.Campaign{
			{
				Name:               "Q1 Content Push",
				BrandedSearchDelta: "+23%",
				Mentions:           156,
				Signups:            89,
				CommunityBuzz:      "High",
				Notes:              "Strong performance on LinkedIn",
			},
			{
				Name:               "Podcast Tour",
				BrandedSearchDelta: "+45%",
				Mentions:           278,
				Signups:            134,
				CommunityBuzz:      "Very High",
				Notes:              "Major spike after podcast appearance",
			},
			{
				Name:               "Email Sequence",
				BrandedSearchDelta: "+12%",
				Mentions:           67,
				Signups:            45,
				CommunityBuzz:      "Medium",
				Notes:              "Steady growth, good retention",
			},
		},
		Echoes: []models.Echo{
			{
				ID:        time.Now().UnixMilli() + 1,
				Timestamp: time.Now().Format("2006-01-02 15:04"),
				Type:      "Unsolicited Mention",
				Content:   "Customer mentioned us in Industry Slack channel",
				Source:    "Slack",
			},
			{
				ID:        time.Now().UnixMilli() + 2,
				Timestamp: time.Now().Add(-3 * time.Hour).Format("2006-01-02 15:04"),
				Type:      "Campaign Response",
				Content:   "Direct response to newsletter CTA",
				Source:    "Email",
			},
			{
				ID:        time.Now().UnixMilli() + 3,
				Timestamp: time.Now().Add(-22 * time.Hour).Format("2006-01-02 15:04"),
				Type:      "New Activity",
				Content:   "Featured in competitor's case study",
				Source:    "Blog",
			},
		},
		Prompts: append([]models.Prompt(nil), defaultPrompts...),
		MentionsData: map[string][]models.MentionsPoint{
			"7d":  GenerateSevenDayData(),
			"30d": GenerateThirtyDayData(),
		},
		Settings: models.Settings{
			Webhooks:   []string{},
			CSVSources: []string{},
		},
	}
}
