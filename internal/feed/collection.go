package feed

import (
	"sort"
	"strings"

	"github.com/brandsignal/attribution-dashboard/internal/models"
)

// MaxMentions caps the live feed collection; the oldest entries are evicted
// first once the cap is reached.
const MaxMentions = 100

// Insert merges incoming mentions into the collection. A mention whose id
// already exists is dropped, not merged. The result is sorted descending by
// timestamp and capped at MaxMentions.
func Insert(collection []models.Mention, incoming ...models.Mention) []models.Mention {
	seen := make(map[string]bool, len(collection))
	for _, m := range collection {
		seen[m.ID] = true
	}

	merged := append([]models.Mention(nil), collection...)
	for _, m := range incoming {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		merged = append(merged, m)
	}

	return sortAndCap(merged)
}

// Replace swaps the collection wholesale for the incoming set.
func Replace(incoming []models.Mention) []models.Mention {
	seen := make(map[string]bool, len(incoming))
	var unique []models.Mention
	for _, m := range incoming {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		unique = append(unique, m)
	}
	return sortAndCap(unique)
}

func sortAndCap(mentions []models.Mention) []models.Mention {
	sort.SliceStable(mentions, func(i, j int) bool {
		return mentions[i].Timestamp.After(mentions[j].Timestamp)
	})
	if len(mentions) > MaxMentions {
		mentions = mentions[:MaxMentions]
	}
	if mentions == nil {
		mentions = []models.Mention{}
	}
	return mentions
}

// Filter projects the collection through the given filters without mutating
// it. Relative order is preserved.
func Filter(collection []models.Mention, f models.FeedFilters) []models.Mention {
	keyword := strings.ToLower(f.Keyword)
	var out []models.Mention
	for _, m := range collection {
		if f.Platform != "" && m.Platform != f.Platform {
			continue
		}
		if f.Sentiment != "" && m.Sentiment != f.Sentiment {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(m.Content), keyword) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Stats counts sentiment over a (typically filtered) mention set.
func Stats(mentions []models.Mention) models.FeedStats {
	stats := models.FeedStats{Total: len(mentions)}
	for _, m := range mentions {
		switch m.Sentiment {
		case models.SentimentPositive:
			stats.Positive++
		case models.SentimentNegative:
			stats.Negative++
		default:
			stats.Neutral++
		}
	}
	return stats
}
