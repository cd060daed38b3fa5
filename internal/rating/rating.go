// Package rating computes rating averages and trend classification.
package rating

import (
	"math"
	"time"

	"github.com/opencorrections/warden/internal/domain"
)

// Trend thresholds: the recent-vs-older average must move by more than
// trendBand to register as improving or declining.
const (
	trendBand = 0.3

	// trendScale converts a raw trend diff (on the 1-5 rating scale) into
	// the percentage figure reported to clients.
	trendScale = 20
)

// Overall recomputes the overall rating as the mean of the four category
// scores, rounded to 2 decimal places. Stored overall values are never
// trusted during validation; callers recompute through this function.
func Overall(cooperation, discipline, respect, workEthic int) float64 {
	sum := float64(cooperation + discipline + respect + workEthic)
	return round2(sum / 4)
}

// ComputeSummary converts a newest-first sequence of rating records into
// averages, extremes, and a trend classification. An empty window yields a
// zero-valued summary with a neutral trend.
func ComputeSummary(prisonerID string, ratings []*domain.RatingRecord) *domain.RatingSummary {
	summary := &domain.RatingSummary{
		PrisonerID:  prisonerID,
		Trend:       domain.TrendNeutral,
		RatingCount: len(ratings),
		ComputedAt:  time.Now().UTC(),
	}
	if len(ratings) == 0 {
		return summary
	}

	var coop, disc, resp, work, overall float64
	highest := ratings[0].OverallRating
	lowest := ratings[0].OverallRating
	for _, r := range ratings {
		coop += float64(r.Cooperation)
		disc += float64(r.Discipline)
		resp += float64(r.Respect)
		work += float64(r.WorkEthic)
		overall += r.OverallRating
		if r.OverallRating > highest {
			highest = r.OverallRating
		}
		if r.OverallRating < lowest {
			lowest = r.OverallRating
		}
	}

	n := float64(len(ratings))
	summary.CategoryAverages = domain.CategoryAverages{
		Cooperation: round2(coop / n),
		Discipline:  round2(disc / n),
		Respect:     round2(resp / n),
		WorkEthic:   round2(work / n),
	}
	summary.AverageOverall = round2(overall / n)
	summary.Highest = highest
	summary.Lowest = lowest

	// Trend: compare the newest third against the oldest third. For a
	// single rating the thirds are the same record and the diff is 0; for
	// n=2 they are the two records, so even a tiny window can register a
	// trend. Accepted behavior, kept deliberately.
	third := int(math.Ceil(n / 3))
	recentAvg := meanOverall(ratings[:third])
	olderAvg := meanOverall(ratings[len(ratings)-third:])
	trendDiff := recentAvg - olderAvg

	switch {
	case trendDiff > trendBand:
		summary.Trend = domain.TrendImproving
	case trendDiff < -trendBand:
		summary.Trend = domain.TrendDeclining
	default:
		summary.Trend = domain.TrendNeutral
	}
	summary.TrendPercentage = round1(trendDiff * trendScale)

	return summary
}

func meanOverall(ratings []*domain.RatingRecord) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range ratings {
		sum += r.OverallRating
	}
	return sum / float64(len(ratings))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
