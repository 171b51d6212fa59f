// Package scoring computes the composite attribution score from the raw
// signal set. It is the only writer of SignalSet.AttributionScore.
package scoring

import (
	"math"

	"github.com/brandsignal/attribution-dashboard/internal/models"
)

// Weights of each raw signal in the composite score.
const (
	WeightBrandedSearch       = 0.25
	WeightDirectTraffic       = 0.20
	WeightInboundMessages     = 0.20
	WeightCommunityEngagement = 0.20
	WeightFirstPartyData      = 0.15
)

// Ceilings used to normalize each signal to [0,1]. Values at or above the
// ceiling count as 1. The firstPartyData ceiling is 100.
const (
	CeilingBrandedSearch       = 5000.0
	CeilingDirectTraffic       = 2000.0
	CeilingInboundMessages     = 200.0
	CeilingCommunityEngagement = 300.0
	CeilingFirstPartyData      = 100.0
)

// Calculate returns the weighted composite score on a 0-10 scale, rounded to
// one decimal place. Pure: the input is not modified.
func Calculate(s models.SignalSet) float64 {
	score := 0.0
	score += normalize(s.BrandedSearchVolume, CeilingBrandedSearch) * WeightBrandedSearch
	score += normalize(s.DirectTraffic, CeilingDirectTraffic) * WeightDirectTraffic
	score += normalize(s.InboundMessages, CeilingInboundMessages) * WeightInboundMessages
	score += normalize(s.CommunityEngagement, CeilingCommunityEngagement) * WeightCommunityEngagement
	score += normalize(s.FirstPartyData, CeilingFirstPartyData) * WeightFirstPartyData
	return math.Round(score*10*10) / 10
}

func normalize(value, ceiling float64) float64 {
	if value <= 0 {
		return 0
	}
	return math.Min(value/ceiling, 1)
}
